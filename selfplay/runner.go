package selfplay

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/brensch/diamonds/store"
)

// PlayGame plays one match to the end. It stops early with ctx's error.
func PlayGame(ctx context.Context, cfg Config, opts ...MatchOption) (Result, []store.DecisionRow, error) {
	m, err := NewMatch(cfg, opts...)
	if err != nil {
		return Result{}, nil, err
	}
	for m.Step() {
		if err := ctx.Err(); err != nil {
			return m.Result(), nil, err
		}
	}
	return m.Result(), m.Rows(), nil
}

// GameFunc receives each finished game. Calls are serialized.
type GameFunc func(Result, []store.DecisionRow) error

// RunGames plays games matches on up to workers goroutines. When cfg.Seed is
// set, game i uses cfg.Seed+i so a run is reproducible. The first error from
// a game or from onGame cancels the rest and is returned.
func RunGames(ctx context.Context, cfg Config, games, workers int, onGame GameFunc, opts ...MatchOption) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	for i := 0; i < games; i++ {
		if ctx.Err() != nil {
			break
		}
		gameCfg := cfg
		if cfg.Seed != 0 {
			gameCfg.Seed = cfg.Seed + int64(i)
		}
		g.Go(func() error {
			res, rows, err := PlayGame(ctx, gameCfg, opts...)
			if err != nil {
				return err
			}
			if onGame == nil {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			return onGame(res, rows)
		})
	}
	return g.Wait()
}

// LogResult is a GameFunc body for binaries that only report outcomes.
func LogResult(logger *slog.Logger, res Result) {
	logger.Info("game finished",
		"game", res.GameID,
		"winner", res.Winner,
		"draw", res.Draw(),
		"turns", res.Turns,
		"scores", res.Scores,
	)
}
