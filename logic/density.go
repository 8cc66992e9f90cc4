package logic

import (
	"math"
	"sort"

	"github.com/brensch/diamonds/game"
)

// Density is the value per step of collecting points that are steps away.
// Standing on the item (steps == 0) is worth +Inf.
func Density(points, steps int) float64 {
	if steps == 0 {
		return math.Inf(1)
	}
	return float64(points) / float64(steps)
}

// portalsByDistance returns the teleporters sorted by distance from pos.
// Equidistant teleporters keep board order.
func portalsByDistance(pos game.Position, board *game.Board) []game.MapObject {
	portals := board.ObjectsOfKind(game.KindTeleporter)
	sort.SliceStable(portals, func(i, j int) bool {
		return Manhattan(pos, portals[i].Position) < Manhattan(pos, portals[j].Position)
	})
	return portals
}

// portalPair is a teleporter entry (nearest to the bot) and its exit.
type portalPair struct {
	Entry game.MapObject
	Exit  game.MapObject
}

func nearestPortalPair(pos game.Position, board *game.Board) (portalPair, bool) {
	portals := portalsByDistance(pos, board)
	if len(portals) < 2 {
		return portalPair{}, false
	}
	return portalPair{Entry: portals[0], Exit: portals[1]}, true
}

// densityTarget is the winner of the density scan. When ViaPortal is set,
// Target is the entry teleporter and Density is the relayed value.
type densityTarget struct {
	Target    game.Position
	Density   float64
	ViaPortal bool
	Found     bool
}

// bestDensityTarget scans every item for the highest points-per-step, first
// directly from the bot and then relayed through the nearest teleporter pair.
// A strictly higher density is needed to replace the current best.
func bestDensityTarget(bot game.Bot, board *game.Board) densityTarget {
	best := densityTarget{Target: bot.Base}
	if len(board.Items) == 0 {
		return best
	}

	for _, it := range board.Items {
		d := Density(it.Points, Manhattan(bot.Position, it.Position))
		if d > best.Density {
			best = densityTarget{Target: it.Position, Density: d, Found: true}
		}
	}

	pair, ok := nearestPortalPair(bot.Position, board)
	if !ok {
		return best
	}
	toEntry := Manhattan(bot.Position, pair.Entry.Position)
	for _, it := range board.Items {
		d := Density(it.Points, toEntry+Manhattan(it.Position, pair.Exit.Position))
		if d > best.Density {
			best = densityTarget{Target: pair.Entry.Position, Density: d, ViaPortal: true, Found: true}
		}
	}
	return best
}
