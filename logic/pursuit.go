package logic

import (
	"github.com/brensch/diamonds/game"
)

const (
	// pursuitGateDistance is how far from base the bot may be and still hunt.
	pursuitGateDistance = 4
	// maxPursuitTicks bounds consecutive ticks of chasing.
	maxPursuitTicks = 5
	// rivalReach is the per-axis offset within which a rival is chased.
	rivalReach = 3
	// rivalMinDiamonds is the smallest cargo worth tackling for.
	rivalMinDiamonds = 3
)

// qualifyingRivals returns, in board order, the rivals worth tackling: away
// from their base on both axes and carrying at least rivalMinDiamonds and
// more than the bot.
func qualifyingRivals(bot game.Bot, board *game.Board) []game.Bot {
	var out []game.Bot
	for _, r := range board.Bots {
		if r.ID == bot.ID {
			continue
		}
		if r.Base.X == r.Position.X || r.Base.Y == r.Position.Y {
			continue
		}
		if r.Diamonds > bot.Diamonds && r.Diamonds >= rivalMinDiamonds {
			out = append(out, r)
		}
	}
	return out
}

// pursue runs the pursuit state machine for one tick and reports whether the
// bot should chase. Only the first qualifying rival is considered. When the
// gate fails all pursuit and portal state is reset.
func (e *Engine) pursue(bot game.Bot, board *game.Board) bool {
	if homeDistance(bot) > pursuitGateDistance || e.state.PursuitCount > maxPursuitTicks {
		e.state.clearTarget()
		e.state.PursuitCount = 0
		e.state.UsingPortal = false
		return false
	}

	rivals := qualifyingRivals(bot, board)
	if len(rivals) == 0 {
		return false
	}

	r := rivals[0]
	dx := r.Position.X - bot.Position.X
	dy := r.Position.Y - bot.Position.Y
	switch {
	case dx == 0 && dy == 0:
		// Sharing a tile means the tackle already happened: bank it.
		e.state.setTarget(bot.Base)
		return false
	case abs(dx) <= rivalReach && abs(dy) <= rivalReach:
		e.state.setTarget(r.Position)
		return true
	default:
		e.state.clearTarget()
		return false
	}
}
