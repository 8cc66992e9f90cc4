// Package rules advances a diamonds board for local matches.
//
// It mirrors the public match server closely enough for the decision engine
// to be exercised end to end: single-tile moves, teleporter pairs, tackles,
// capacity-limited pickups, the bonus switch and banking at base.
package rules

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/brensch/diamonds/game"
)

// Capacity is how many diamonds a bot can carry.
const Capacity = 5

var (
	ErrUnknownBot  = errors.New("unknown bot")
	ErrOutOfBounds = errors.New("move leaves the board")
	ErrNotAStep    = errors.New("move is not a unit step")
	ErrOutOfTime   = errors.New("bot is out of time")
)

// Options tune the board reactions.
type Options struct {
	Spawn game.SpawnSettings
	// Rng drives spawning. Nil falls back to deterministic spawning.
	Rng *rand.Rand
}

// Move applies one step for botID and returns the next board.
// The input board is not modified.
func Move(board *game.Board, botID string, d game.Direction, opts Options) (*game.Board, error) {
	if abs(d.DX)+abs(d.DY) > 1 {
		return nil, fmt.Errorf("%w: %v", ErrNotAStep, d)
	}

	next := board.Clone()
	idx := botIndex(next, botID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBot, botID)
	}
	you := &next.Bots[idx]
	if you.TicksLeft <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrOutOfTime, botID)
	}

	dest := d.Apply(you.Position)
	if !next.InBounds(dest) {
		return nil, fmt.Errorf("%w: %s to %v", ErrOutOfBounds, botID, dest)
	}
	if d == game.Stay {
		return next, nil
	}

	// Teleporters relocate the bot to the other end of the pair.
	if exit, ok := teleportExit(next, dest); ok {
		dest = exit
	}
	you.Position = dest

	tackle(next, idx)
	pickUp(next, you)

	if sw, i, ok := switchAt(next, dest); ok {
		pressSwitch(next, sw, i, opts)
	}

	if you.Position == you.Base {
		you.Score += you.Diamonds
		you.Diamonds = 0
	}

	return next, nil
}

// AdvanceRound ends a round: every bot loses a tick, the turn counter moves
// on and diamonds are topped up.
func AdvanceRound(board *game.Board, opts Options) *game.Board {
	next := board.Clone()
	next.Turn++
	for i := range next.Bots {
		if next.Bots[i].TicksLeft > 0 {
			next.Bots[i].TicksLeft--
		}
	}
	game.ApplySpawnSettings(next, opts.Rng, opts.Spawn)
	return next
}

// IsGameOver reports whether no bot has any time left.
func IsGameOver(board *game.Board) bool {
	for _, b := range board.Bots {
		if b.TicksLeft > 0 {
			return false
		}
	}
	return true
}

// Leader returns the id of the bot with the highest score, or "" on a tie.
func Leader(board *game.Board) string {
	leader := ""
	best := -1
	tied := false
	for _, b := range board.Bots {
		switch {
		case b.Score > best:
			best = b.Score
			leader = b.ID
			tied = false
		case b.Score == best:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return leader
}

func botIndex(board *game.Board, id string) int {
	for i := range board.Bots {
		if board.Bots[i].ID == id {
			return i
		}
	}
	return -1
}

// teleportExit returns the partner of the teleporter on p, if any.
func teleportExit(board *game.Board, p game.Position) (game.Position, bool) {
	portals := board.ObjectsOfKind(game.KindTeleporter)
	if len(portals) < 2 {
		return game.Position{}, false
	}
	switch p {
	case portals[0].Position:
		return portals[1].Position, true
	case portals[1].Position:
		return portals[0].Position, true
	}
	return game.Position{}, false
}

// tackle sends every rival on the mover's tile home and takes its cargo, up
// to capacity. Diamonds that do not fit are lost.
func tackle(board *game.Board, mover int) {
	you := &board.Bots[mover]
	for i := range board.Bots {
		if i == mover {
			continue
		}
		other := &board.Bots[i]
		if other.Position != you.Position {
			continue
		}
		you.Diamonds = min(Capacity, you.Diamonds+other.Diamonds)
		other.Diamonds = 0
		other.Position = other.Base
	}
}

// pickUp collects the item under the bot when it fits in the bag.
func pickUp(board *game.Board, you *game.Bot) {
	for i, it := range board.Items {
		if it.Position != you.Position {
			continue
		}
		if you.Diamonds+it.Points > Capacity {
			return
		}
		you.Diamonds += it.Points
		board.Items = append(board.Items[:i], board.Items[i+1:]...)
		return
	}
}

func switchAt(board *game.Board, p game.Position) (game.MapObject, int, bool) {
	for i, o := range board.Objects {
		if o.Kind == game.KindBonusSwitch && o.Position == p {
			return o, i, true
		}
	}
	return game.MapObject{}, -1, false
}

// pressSwitch regenerates every diamond and moves the switch elsewhere.
func pressSwitch(board *game.Board, sw game.MapObject, idx int, opts Options) {
	board.Items = board.Items[:0]
	// Take the switch off the board while respawning so nothing lands under it.
	board.Objects = append(board.Objects[:idx], board.Objects[idx+1:]...)
	game.ApplySpawnSettings(board, opts.Rng, opts.Spawn)
	if p, ok := game.RandomFreeTile(board, opts.Rng); ok {
		sw.Position = p
	}
	board.Objects = append(board.Objects, sw)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
