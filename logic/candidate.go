package logic

import (
	"github.com/brensch/diamonds/game"
)

// Category names the heuristic that produced a Candidate.
type Category int

const (
	CategoryBaseTime Category = iota
	CategoryBaseInventory
	CategoryNearBase
	CategoryRedGem
	CategoryBlueGem
	CategoryBaseFallback
	CategoryEnemy
	CategoryRedSwitch
	CategoryDensity
	CategoryDensityTele
)

var categoryNames = [...]string{
	CategoryBaseTime:      "base_time",
	CategoryBaseInventory: "base_inventory",
	CategoryNearBase:      "near_base",
	CategoryRedGem:        "red_gem",
	CategoryBlueGem:       "blue_gem",
	CategoryBaseFallback:  "base_fallback",
	CategoryEnemy:         "enemy",
	CategoryRedSwitch:     "red_switch",
	CategoryDensity:       "density",
	CategoryDensityTele:   "density_tele",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// IsBase reports whether the category is a return-to-base order. These
// outrank every other category whatever the scores.
func (c Category) IsBase() bool {
	switch c {
	case CategoryBaseTime, CategoryBaseInventory, CategoryBaseFallback:
		return true
	}
	return false
}

// BaseScore is the nominal score of base-return candidates.
const BaseScore = 999

// Candidate is one proposed target for this tick.
type Candidate struct {
	Target   game.Position
	Score    float64
	Category Category
}

// beats orders candidates by (is-base, score).
func (c Candidate) beats(other Candidate) bool {
	if c.Category.IsBase() != other.Category.IsBase() {
		return c.Category.IsBase()
	}
	return c.Score > other.Score
}

// pick returns the best candidate. Collection order is the tie-break: the
// first of several equal candidates wins. cands must not be empty.
func pick(cands []Candidate) Candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.beats(best) {
			best = c
		}
	}
	return best
}

func baseCandidate(bot game.Bot, cat Category) Candidate {
	return Candidate{Target: bot.Base, Score: BaseScore, Category: cat}
}

// weighted scores a target worth weight points that is steps away.
func weighted(target game.Position, weight float64, steps int, cat Category) Candidate {
	score := Density(1, steps)
	if steps != 0 {
		score = weight / float64(steps)
	}
	return Candidate{Target: target, Score: score, Category: cat}
}
