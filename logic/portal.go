package logic

import (
	"github.com/brensch/diamonds/game"
)

// portalHome redirects a base-bound bot onto the nearest teleporter when
// walking to it and then from its partner to the base beats walking home.
// It latches UsingPortal and reports whether the target was overridden.
func (e *Engine) portalHome(bot game.Bot, board *game.Board) bool {
	portals := portalsByDistance(bot.Position, board)
	if len(portals) < 2 {
		return false
	}
	entry, exit := portals[0], portals[1]

	entryToBase := Manhattan(bot.Base, entry.Position)
	exitToBase := Manhattan(bot.Base, exit.Position)
	if entryToBase == exitToBase {
		return false
	}

	if Manhattan(bot.Position, entry.Position)+exitToBase >= homeDistance(bot) {
		return false
	}
	e.state.UsingPortal = true
	e.state.setTarget(entry.Position)
	return true
}
