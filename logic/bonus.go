package logic

import (
	"github.com/brensch/diamonds/game"
)

// locateSwitch returns the bonus switch; a board holds at most one.
func locateSwitch(board *game.Board) (game.MapObject, bool) {
	for _, o := range board.Objects {
		if o.Kind == game.KindBonusSwitch {
			return o, true
		}
	}
	return game.MapObject{}, false
}

// preferSwitch admits the bonus switch into the cascade when it is strictly
// closer than the nearest blue diamond. It returns the switch and its distance.
func preferSwitch(bot game.Bot, board *game.Board) (game.MapObject, int, bool) {
	_, blueDist, ok := nearestOfClass(bot, board, isBlue)
	if !ok {
		return game.MapObject{}, 0, false
	}
	sw, ok := locateSwitch(board)
	if !ok {
		return game.MapObject{}, 0, false
	}
	d := Manhattan(bot.Position, sw.Position)
	if d >= blueDist {
		return game.MapObject{}, 0, false
	}
	return sw, d, true
}
