package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/diamonds/selfplay"
)

// GameUpdate is sent to the progress view after each finished game.
type GameUpdate struct {
	Result selfplay.Result
	Rows   int
}

// doneMsg signals that the run has finished.
type doneMsg struct{ err error }

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForUpdate(updates <-chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return u
	}
}

type model struct {
	target      int
	gamesPlayed int
	totalRows   int
	draws       int
	wins        map[string]int
	startTime   time.Time
	now         time.Time
	recentGames []string
	updates     <-chan GameUpdate
	done        bool
	err         error
}

func initialModel(target int, updates <-chan GameUpdate) model {
	now := time.Now()
	return model{
		target:    target,
		wins:      map[string]int{},
		startTime: now,
		now:       now,
		updates:   updates,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.now = time.Time(msg)
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case GameUpdate:
		m.gamesPlayed++
		m.totalRows += msg.Rows
		if msg.Result.Draw() {
			m.draws++
		} else {
			m.wins[msg.Result.Winner]++
		}
		line := fmt.Sprintf("%s: winner %s, turns %d, scores %v", shortID(msg.Result.GameID), winnerLabel(msg.Result), msg.Result.Turns, msg.Result.Scores)
		m.recentGames = append([]string{line}, m.recentGames...)
		if len(m.recentGames) > 10 {
			m.recentGames = m.recentGames[:10]
		}
		return m, waitForUpdate(m.updates)
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	duration := m.now.Sub(m.startTime)
	gamesPerSec := 0.0
	if duration.Seconds() >= 1 {
		gamesPerSec = float64(m.gamesPlayed) / duration.Seconds()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Games Played:   %d/%d\n", m.gamesPlayed, m.target)
	fmt.Fprintf(&sb, "Decisions:      %d\n", m.totalRows)
	fmt.Fprintf(&sb, "Duration:       %s\n", duration.Round(time.Second))
	fmt.Fprintf(&sb, "Games/Sec:      %.2f\n", gamesPerSec)
	fmt.Fprintf(&sb, "Draws:          %d\n", m.draws)
	for id := 1; id <= selfplay.MaxBots; id++ {
		key := fmt.Sprint(id)
		if n, ok := m.wins[key]; ok {
			fmt.Fprintf(&sb, "Wins bot %s:     %d\n", key, n)
		}
	}

	sb.WriteString("\nRecent Games:\n")
	for _, g := range m.recentGames {
		sb.WriteString(g + "\n")
	}

	if m.done {
		if m.err != nil {
			fmt.Fprintf(&sb, "\nStopped: %v\n", m.err)
		} else {
			sb.WriteString("\nDone.\n")
		}
		return sb.String()
	}
	sb.WriteString("\nPress q to quit.\n")
	return sb.String()
}

func winnerLabel(r selfplay.Result) string {
	if r.Draw() {
		return "draw"
	}
	return r.Winner
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
