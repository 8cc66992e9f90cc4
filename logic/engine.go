// Package logic implements the per-bot decision engine.
//
// Each tick the engine reads a board snapshot, runs a fixed cascade of greedy
// heuristics (return-to-base gates, near-base items, rival pursuit, the bonus
// switch, nearest gems, value density with teleporter relays), picks one
// target by (is-base, score) and projects it to a single unit step.
//
// An Engine carries a small amount of state between ticks (pursuit counter,
// teleporter latch) and must be used by exactly one bot.
package logic

import (
	"log/slog"
	"strconv"

	"github.com/brensch/diamonds/game"
)

// State is the engine memory carried from one tick to the next.
type State struct {
	Target       game.Position
	HasTarget    bool
	PursuitCount int
	// UsingPortal latches once the bot commits to a teleporter route home.
	// Only a failed pursuit gate clears it.
	UsingPortal bool
}

func (s *State) setTarget(p game.Position) {
	s.Target = p
	s.HasTarget = true
}

func (s *State) clearTarget() {
	s.Target = game.Position{}
	s.HasTarget = false
}

type Engine struct {
	state  State
	logger *slog.Logger
}

type Option func(*Engine)

// WithLogger makes the engine log every decision at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithState seeds the engine, e.g. when resuming a bot.
func WithState(s State) Option {
	return func(e *Engine) { e.state = s }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a copy of the engine memory.
func (e *Engine) State() State { return e.state }

// Reset forgets everything, as if the engine was just created.
func (e *Engine) Reset() { e.state = State{} }

// Decision is the outcome of one tick.
type Decision struct {
	Move game.Direction
	// Target is the tile the move heads for. It differs from Winner.Target
	// when the teleporter shortcut redirected a trip home.
	Target         game.Position
	Winner         Candidate
	Candidates     []Candidate
	PortalOverride bool
	State          State
}

// Direction is the move as a named direction.
func (d Decision) Direction() game.Direction { return d.Move }

// Decide chooses the next step for bot. The board is only read.
func (e *Engine) Decide(bot game.Bot, board *game.Board) Decision {
	cands := e.collect(bot, board)
	if len(cands) == 0 {
		cands = append(cands, baseCandidate(bot, CategoryBaseFallback))
	}

	winner := pick(cands)
	e.state.setTarget(winner.Target)

	override := false
	if winner.Target == bot.Base && !e.state.UsingPortal {
		override = e.portalHome(bot, board)
	}

	d := Decision{
		Move:           StepToward(bot.Position, e.state.Target),
		Target:         e.state.Target,
		Winner:         winner,
		Candidates:     cands,
		PortalOverride: override,
		State:          e.state,
	}

	if e.logger != nil {
		e.logger.Debug("decision",
			"board", board.ID,
			"turn", board.Turn,
			"bot", bot.ID,
			"position", bot.Position.String(),
			"target", d.Target.String(),
			"category", winner.Category.String(),
			"score", strconv.FormatFloat(winner.Score, 'g', 4, 64),
			"candidates", len(cands),
			"portal", override,
			"move", d.Move.String(),
		)
	}
	return d
}

// collect runs the cascade and returns candidates in evaluation order.
func (e *Engine) collect(bot game.Bot, board *game.Board) []Candidate {
	home := homeDistance(bot)

	// Mandatory returns short-circuit everything else.
	if home >= bot.TicksLeft {
		return []Candidate{baseCandidate(bot, CategoryBaseTime)}
	}
	if (home == 2 && bot.Diamonds > 2) || (home == 1 && bot.Diamonds > 0) || bot.Diamonds == inventoryCapacity {
		return []Candidate{baseCandidate(bot, CategoryBaseInventory)}
	}

	if bot.Diamonds >= 3 {
		return []Candidate{highInventory(bot, board)}
	}
	return e.lowInventory(bot, board)
}

// highInventory is exclusive: only the first sub-branch that applies yields
// a candidate.
func highInventory(bot game.Bot, board *game.Board) Candidate {
	if hasItemsNearBase(bot, board) {
		it, _ := NearestItem(bot.Position, itemsAroundBase(bot, board), nil)
		return weighted(it.Position, 1, Manhattan(bot.Position, it.Position), CategoryNearBase)
	}
	red, redDist, hasRed := nearestOfClass(bot, board, isRed)
	blue, blueDist, hasBlue := nearestOfClass(bot, board, isBlue)
	if !hasRed && !hasBlue {
		return baseCandidate(bot, CategoryBaseFallback)
	}
	if hasRed && bot.Diamonds == 3 && redDist <= greedyReach {
		return weighted(red.Position, 2, redDist, CategoryRedGem)
	}
	if hasBlue && blueDist <= greedyReach {
		return weighted(blue.Position, 1, blueDist, CategoryBlueGem)
	}
	return baseCandidate(bot, CategoryBaseFallback)
}

// lowInventory admits every applicable heuristic.
func (e *Engine) lowInventory(bot game.Bot, board *game.Board) []Candidate {
	var cands []Candidate

	if hasItemsNearBase(bot, board) {
		around := itemsAroundBase(bot, board)
		if isNearHome(bot) || len(around) >= 3 {
			it, _ := NearestItem(bot.Position, around, nil)
			cands = append(cands, weighted(it.Position, 1, Manhattan(bot.Position, it.Position), CategoryNearBase))
		}
	}

	if e.pursue(bot, board) {
		e.state.PursuitCount++
		cands = append(cands, Candidate{Target: e.state.Target, Score: 2, Category: CategoryEnemy})
	}

	if sw, d, ok := preferSwitch(bot, board); ok {
		cands = append(cands, weighted(sw.Position, 1.5, d, CategoryRedSwitch))
	}

	if red, d, ok := nearestOfClass(bot, board, isRed); ok {
		cands = append(cands, weighted(red.Position, 2, d, CategoryRedGem))
	}
	if blue, d, ok := nearestOfClass(bot, board, isBlue); ok {
		cands = append(cands, weighted(blue.Position, 1, d, CategoryBlueGem))
	}

	if c, ok := densityCandidate(bot, board); ok {
		cands = append(cands, c)
	}
	return cands
}

// densityCandidate scores the density target. A target sitting on an item is
// scored by that item's direct density; a teleporter entry by the relayed one.
func densityCandidate(bot game.Bot, board *game.Board) (Candidate, bool) {
	dt := bestDensityTarget(bot, board)
	if !dt.Found {
		return Candidate{}, false
	}
	for _, it := range board.Items {
		if it.Position == dt.Target {
			return Candidate{
				Target:   dt.Target,
				Score:    Density(it.Points, Manhattan(bot.Position, it.Position)),
				Category: CategoryDensity,
			}, true
		}
	}
	if dt.ViaPortal {
		return Candidate{Target: dt.Target, Score: dt.Density, Category: CategoryDensityTele}, true
	}
	return Candidate{}, false
}
