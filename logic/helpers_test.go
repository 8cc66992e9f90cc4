package logic

import (
	"strings"
	"testing"

	"github.com/brensch/diamonds/game"
)

func pos(x, y int) game.Position { return game.Position{X: x, Y: y} }

func blue(x, y int) game.Item { return game.Item{Position: pos(x, y), Points: game.BluePoints} }
func red(x, y int) game.Item  { return game.Item{Position: pos(x, y), Points: game.RedPoints} }

func teleporter(id string, x, y int) game.MapObject {
	return game.MapObject{ID: id, Kind: game.KindTeleporter, Position: pos(x, y)}
}

func bonusSwitch(x, y int) game.MapObject {
	return game.MapObject{ID: "switch", Kind: game.KindBonusSwitch, Position: pos(x, y)}
}

// me returns an acting bot with plenty of time.
func me(at, base game.Position, diamonds int) game.Bot {
	return game.Bot{ID: "me", Position: at, Base: base, Diamonds: diamonds, TicksLeft: 1000}
}

func boardWith(bot game.Bot, items []game.Item, objects []game.MapObject, rivals ...game.Bot) *game.Board {
	return &game.Board{
		ID:      "test",
		Width:   15,
		Height:  15,
		Items:   items,
		Objects: objects,
		Bots:    append([]game.Bot{bot}, rivals...),
	}
}

// dumpBoard renders a board: b/r diamonds, T teleporters, S switch,
// lowercase bases and uppercase bots (A is the first bot).
func dumpBoard(b *game.Board) string {
	grid := make([][]byte, b.Height)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", b.Width))
	}
	put := func(p game.Position, c byte) {
		if b.InBounds(p) {
			grid[p.Y][p.X] = c
		}
	}
	for _, it := range b.Items {
		if it.Points == game.RedPoints {
			put(it.Position, 'r')
		} else {
			put(it.Position, 'b')
		}
	}
	for _, o := range b.Objects {
		if o.Kind == game.KindTeleporter {
			put(o.Position, 'T')
		} else {
			put(o.Position, 'S')
		}
	}
	for i, bot := range b.Bots {
		put(bot.Base, byte('a'+i))
		put(bot.Position, byte('A'+i))
	}
	var sb strings.Builder
	for _, row := range grid {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func logDecision(t *testing.T, name string, b *game.Board, d Decision) {
	t.Helper()
	var cs strings.Builder
	for _, c := range d.Candidates {
		cs.WriteString(" " + c.Category.String() + "@" + c.Target.String())
	}
	t.Logf("=== %s ===\n%sCandidates:%s\nWinner=%s Target=%s Move=%s Portal=%v",
		name, dumpBoard(b), cs.String(), d.Winner.Category, d.Target, d.Move, d.PortalOverride)
}
