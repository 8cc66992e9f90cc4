// Package selfplay runs local diamonds matches between decision engines.
package selfplay

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/diamonds/game"
	"github.com/brensch/diamonds/logic"
	"github.com/brensch/diamonds/rules"
	"github.com/brensch/diamonds/store"
)

// Result is the outcome of a finished match.
type Result struct {
	GameID string
	// Winner is the id of the bot with the highest score, empty on a draw.
	Winner string
	Scores map[string]int
	Turns  int
}

// Draw reports whether no single bot finished ahead.
func (r Result) Draw() bool { return r.Winner == "" }

// Move is one bot's decision within a turn.
type Move struct {
	BotID    string
	From     game.Position
	Decision logic.Decision
}

// Match is a steppable local game. It is not safe for concurrent use.
type Match struct {
	ID string

	cfg     Config
	opts    rules.Options
	logger  *slog.Logger
	board   *game.Board
	engines []*logic.Engine
	rows    []store.DecisionRow
	last    []Move
}

type MatchOption func(*Match)

// WithLogger logs match progress and engine decisions at debug level.
func WithLogger(l *slog.Logger) MatchOption {
	return func(m *Match) { m.logger = l }
}

// WithGameID overrides the generated match id.
func WithGameID(id string) MatchOption {
	return func(m *Match) { m.ID = id }
}

// NewMatch lays out a fresh board: bases in the corners, the teleporter pair
// and bonus switch on random free tiles, then the initial diamonds.
func NewMatch(cfg Config, opts ...MatchOption) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m := &Match{
		ID:  uuid.NewString(),
		cfg: cfg,
		opts: rules.Options{
			Spawn: cfg.spawn(),
			Rng:   rand.New(rand.NewSource(seed)),
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}

	m.board = m.layout()
	m.engines = make([]*logic.Engine, len(m.board.Bots))
	for i, bot := range m.board.Bots {
		m.engines[i] = logic.NewEngine(logic.WithLogger(m.logger.With("game", m.ID, "bot", bot.Name)))
	}
	return m, nil
}

func (m *Match) layout() *game.Board {
	w, h := m.cfg.Width, m.cfg.Height
	corners := [MaxBots]game.Position{
		{X: 0, Y: 0},
		{X: w - 1, Y: h - 1},
		{X: w - 1, Y: 0},
		{X: 0, Y: h - 1},
	}

	b := &game.Board{ID: m.ID, Width: w, Height: h}
	for i := 0; i < m.cfg.Bots; i++ {
		b.Bots = append(b.Bots, game.Bot{
			ID:        strconv.Itoa(i + 1),
			Name:      fmt.Sprintf("bot%d", i+1),
			Position:  corners[i],
			Base:      corners[i],
			TicksLeft: m.cfg.Ticks,
		})
	}

	place := func(id string, kind game.ObjectKind) {
		if p, ok := game.RandomFreeTile(b, m.opts.Rng); ok {
			b.Objects = append(b.Objects, game.MapObject{ID: id, Kind: kind, Position: p})
		}
	}
	if m.cfg.Teleporters {
		place("teleporter-a", game.KindTeleporter)
		place("teleporter-b", game.KindTeleporter)
	}
	if m.cfg.BonusSwitch {
		place("switch", game.KindBonusSwitch)
	}

	game.ApplySpawnSettings(b, m.opts.Rng, m.opts.Spawn)
	return b
}

// Board returns the current board. Callers must not modify it.
func (m *Match) Board() *game.Board { return m.board }

// Over reports whether every bot has run out of ticks.
func (m *Match) Over() bool { return rules.IsGameOver(m.board) }

// LastMoves returns the decisions of the most recent Step, in bot order.
func (m *Match) LastMoves() []Move { return m.last }

// Rows returns one decision row per bot per turn played so far.
func (m *Match) Rows() []store.DecisionRow { return m.rows }

// Step plays one round: each bot with time left decides and moves in bot
// order, then the round advances. It returns false once the match is over.
func (m *Match) Step() bool {
	if m.Over() {
		return false
	}

	m.last = make([]Move, 0, len(m.board.Bots))
	for i := range m.board.Bots {
		bot := m.board.Bots[i]
		if bot.TicksLeft <= 0 {
			continue
		}

		d := m.engines[i].Decide(bot, m.board)
		m.last = append(m.last, Move{BotID: bot.ID, From: bot.Position, Decision: d})

		row, err := store.NewDecisionRow(m.ID, store.SourceSelfPlay, bot, m.board, d)
		if err != nil {
			m.logger.Warn("encode decision", "game", m.ID, "bot", bot.ID, "err", err)
		} else {
			m.rows = append(m.rows, row)
		}

		next, err := rules.Move(m.board, bot.ID, d.Move, m.opts)
		if err != nil {
			// Treated as staying put.
			m.logger.Warn("rejected move", "game", m.ID, "bot", bot.ID, "move", d.Move.String(), "err", err)
			continue
		}
		m.board = next
	}

	m.board = rules.AdvanceRound(m.board, m.opts)
	return !m.Over()
}

// Result summarises the match so far.
func (m *Match) Result() Result {
	scores := make(map[string]int, len(m.board.Bots))
	for _, b := range m.board.Bots {
		scores[b.ID] = b.Score
	}
	return Result{
		GameID: m.ID,
		Winner: rules.Leader(m.board),
		Scores: scores,
		Turns:  m.board.Turn,
	}
}
