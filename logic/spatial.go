package logic

import (
	"github.com/brensch/diamonds/game"
)

const (
	// nearHomeRadius is the half-width of the square around the base that
	// counts as "home" for the bot itself and for items worth detouring to.
	nearHomeRadius = 3
	// baseItemRadius is the half-width of the square that triggers the
	// near-base item heuristics.
	baseItemRadius = 2
	// greedyReach is how far the high-inventory branch walks for a gem.
	greedyReach = 3
	// inventoryCapacity is the number of diamonds a bot can carry.
	inventoryCapacity = 5
)

// Manhattan returns the grid distance between two tiles.
func Manhattan(a, b game.Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// withinSquare reports whether p lies in the inclusive axis-aligned square of
// half-width radius centered at center.
func withinSquare(center, p game.Position, radius int) bool {
	return abs(p.X-center.X) <= radius && abs(p.Y-center.Y) <= radius
}

// ItemsNear returns the items inside the square of half-width radius around
// center, in board order.
func ItemsNear(center game.Position, items []game.Item, radius int) []game.Item {
	var out []game.Item
	for _, it := range items {
		if withinSquare(center, it.Position, radius) {
			out = append(out, it)
		}
	}
	return out
}

// NearestItem returns the item closest to pos among those accepted by keep.
// A nil keep accepts every item. Ties go to the item seen first.
func NearestItem(pos game.Position, items []game.Item, keep func(game.Item) bool) (game.Item, bool) {
	var best game.Item
	bestDist := -1
	for _, it := range items {
		if keep != nil && !keep(it) {
			continue
		}
		d := Manhattan(pos, it.Position)
		if bestDist < 0 || d < bestDist {
			best = it
			bestDist = d
		}
	}
	return best, bestDist >= 0
}

func isBlue(it game.Item) bool { return it.Points == game.BluePoints }
func isRed(it game.Item) bool  { return it.Points == game.RedPoints }

// nearestOfClass is NearestItem measured from the bot, with the distance.
func nearestOfClass(bot game.Bot, board *game.Board, keep func(game.Item) bool) (game.Item, int, bool) {
	it, ok := NearestItem(bot.Position, board.Items, keep)
	if !ok {
		return game.Item{}, 0, false
	}
	return it, Manhattan(bot.Position, it.Position), true
}

func homeDistance(bot game.Bot) int {
	return Manhattan(bot.Position, bot.Base)
}

func isNearHome(bot game.Bot) bool {
	return withinSquare(bot.Base, bot.Position, nearHomeRadius)
}

func hasItemsNearBase(bot game.Bot, board *game.Board) bool {
	for _, it := range board.Items {
		if withinSquare(bot.Base, it.Position, baseItemRadius) {
			return true
		}
	}
	return false
}

// itemsAroundBase returns the items within nearHomeRadius of the base.
func itemsAroundBase(bot game.Bot, board *game.Board) []game.Item {
	return ItemsNear(bot.Base, board.Items, nearHomeRadius)
}
