// Package viewer animates a local match in the terminal.
package viewer

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/diamonds/game"
	"github.com/brensch/diamonds/selfplay"
)

type TickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Model steps a match on every tick and draws the board.
//
// Keys: space pauses, n steps once while paused, q quits.
type Model struct {
	match    *selfplay.Match
	interval time.Duration
	paused   bool
	done     bool
}

func New(match *selfplay.Match, interval time.Duration) Model {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return Model{match: match, interval: interval}
}

// Done reports whether the match has finished.
func (m Model) Done() bool { return m.done }

func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m Model) step() Model {
	if !m.done {
		m.done = !m.match.Step()
	}
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "n":
			if m.paused {
				m = m.step()
			}
		}
	case TickMsg:
		if !m.paused {
			m = m.step()
		}
		return m, tickCmd(m.interval)
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	b := m.match.Board()
	sb.WriteString(fmt.Sprintf("Game %s  turn %d\n\n", m.match.ID, b.Turn))
	sb.WriteString(Render(b))
	sb.WriteString("\n")

	moves := make(map[string]selfplay.Move, len(b.Bots))
	for _, mv := range m.match.LastMoves() {
		moves[mv.BotID] = mv
	}
	for i, bot := range b.Bots {
		line := fmt.Sprintf("%c %-8s score %3d  carrying %d  ticks %3d", botGlyph(i), bot.Name, bot.Score, bot.Diamonds, bot.TicksLeft)
		if mv, ok := moves[bot.ID]; ok {
			d := mv.Decision
			line += fmt.Sprintf("  %-5s -> %v (%s)", d.Move.String(), d.Target, d.Winner.Category)
			if d.PortalOverride {
				line += " via teleporter"
			}
		}
		sb.WriteString(line + "\n")
	}

	switch {
	case m.done:
		res := m.match.Result()
		if res.Draw() {
			sb.WriteString("\nGame over: draw.\n")
		} else {
			sb.WriteString(fmt.Sprintf("\nGame over: bot %s wins.\n", res.Winner))
		}
	case m.paused:
		sb.WriteString("\nPaused. space resumes, n steps.\n")
	}
	sb.WriteString("Press q to quit.\n")
	return sb.String()
}

func botGlyph(i int) rune  { return rune('1' + i) }
func baseGlyph(i int) rune { return rune('A' + i) }

// Render draws the board, one character per tile. Bots are digits, their
// bases letters; b and r are blue and red diamonds, T a teleporter and S
// the bonus switch.
func Render(b *game.Board) string {
	grid := make([][]rune, b.Height)
	for y := range grid {
		grid[y] = make([]rune, b.Width)
		for x := range grid[y] {
			grid[y][x] = '.'
		}
	}
	put := func(p game.Position, r rune) {
		if b.InBounds(p) {
			grid[p.Y][p.X] = r
		}
	}

	for _, it := range b.Items {
		r := 'b'
		if it.Points == game.RedPoints {
			r = 'r'
		}
		put(it.Position, r)
	}
	for _, o := range b.Objects {
		r := 'T'
		if o.Kind == game.KindBonusSwitch {
			r = 'S'
		}
		put(o.Position, r)
	}
	for i, bot := range b.Bots {
		put(bot.Base, baseGlyph(i))
	}
	for i, bot := range b.Bots {
		put(bot.Position, botGlyph(i))
	}

	var sb strings.Builder
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			sb.WriteRune(grid[y][x])
			if x < b.Width-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
