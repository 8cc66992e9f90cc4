// Command shadow watches live boards and archives what the decision engine
// would have done for one named bot on every frame.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brensch/diamonds/api"
	"github.com/brensch/diamonds/discovery"
	"github.com/brensch/diamonds/game"
	"github.com/brensch/diamonds/internal/env"
	"github.com/brensch/diamonds/logging"
	"github.com/brensch/diamonds/logic"
	"github.com/brensch/diamonds/store"
	"github.com/brensch/diamonds/stream"
)

// archive collects shadow rows and rotates its batch every flushGames boards.
type archive struct {
	dir        string
	flushGames int
	logger     *slog.Logger

	mu sync.Mutex
	w  *store.BatchWriter
}

func newArchive(dir string, flushGames int, logger *slog.Logger) (*archive, error) {
	w, err := store.NewBatchWriter(dir)
	if err != nil {
		return nil, err
	}
	return &archive{dir: dir, flushGames: flushGames, logger: logger, w: w}, nil
}

// write stores one followed board's rows as a single game.
func (a *archive) write(rows []store.DecisionRow) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.w.WriteRows(rows); err != nil {
		return err
	}
	a.w.NoteGameWritten()
	if a.flushGames > 0 && a.w.Games() >= a.flushGames {
		return a.rotateLocked(false)
	}
	return nil
}

func (a *archive) rotate(last bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rotateLocked(last)
}

func (a *archive) rotateLocked(last bool) error {
	path, rows, games, err := a.w.Finalize()
	if err != nil {
		return err
	}
	if rows > 0 {
		a.logger.Info("parquet flush ok", "path", path, "games", games, "rows", rows)
	}
	if last {
		return nil
	}
	next, err := store.NewBatchWriter(a.dir)
	if err != nil {
		return err
	}
	a.w = next
	return nil
}

// findBot returns the first bot whose name matches, ignoring case.
func findBot(b *game.Board, name string) (game.Bot, bool) {
	for _, bot := range b.Bots {
		if strings.EqualFold(bot.Name, name) {
			return bot, true
		}
	}
	return game.Bot{}, false
}

// frameFilter drops frames that repeat the previous tick. Feeds that omit
// the turn number are compared on the raw frame instead.
type frameFilter struct {
	lastTurn int
	lastRaw  []byte
}

func (f *frameFilter) fresh(fr stream.Frame) bool {
	if fr.Board.Turn > 0 {
		if fr.Board.Turn == f.lastTurn {
			return false
		}
	} else if f.lastRaw != nil && bytes.Equal(fr.Raw, f.lastRaw) {
		return false
	}
	f.lastTurn = fr.Board.Turn
	f.lastRaw = append(f.lastRaw[:0], fr.Raw...)
	return true
}

// shadowBoard follows one board and returns the decisions made for botName.
func shadowBoard(ctx context.Context, cfg stream.Config, boardID int, botName string, logger *slog.Logger) ([]store.DecisionRow, error) {
	gameID := fmt.Sprintf("board-%d-%s", boardID, uuid.NewString())
	engine := logic.NewEngine(logic.WithLogger(logger.With("board", boardID)))

	var rows []store.DecisionRow
	var seen frameFilter
	_, err := stream.Follow(ctx, cfg, boardID, func(f stream.Frame) error {
		if !seen.fresh(f) {
			return nil
		}

		bot, ok := findBot(f.Board, botName)
		if !ok {
			return nil
		}
		if bot.TicksLeft <= 0 {
			return stream.ErrStop
		}
		d := engine.Decide(bot, f.Board)
		row, err := store.NewDecisionRow(gameID, store.SourceShadow, bot, f.Board, d)
		if err != nil {
			logger.Warn("encode decision", "board", boardID, "err", err)
			return nil
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	lobbies := fs.String("lobbies", env.OrDefault("LOBBY_URLS", "http://localhost:8082/"), "Comma-separated lobby pages listing boards")
	engineURL := fs.String("engine-url", env.OrDefault("ENGINE_URL", stream.DefaultConfig().EngineURL), "Websocket URL template taking the board id")
	botName := fs.String("bot", env.OrDefault("BOT_NAME", "diamondbot"), "Name of the bot to shadow on each board")
	outDir := fs.String("out-dir", env.OrDefault("OUT_DIR", "data/shadow"), "Directory to write batch .parquet files")
	logPath := fs.String("log-path", env.OrDefault("WRITTEN_LOG", "data/shadow/followed_boards.log"), "Append-only log of boards already followed")
	poll := fs.Duration("poll", env.DurationOrDefault("POLL_EVERY", 30*time.Second), "Lobby polling interval")
	requestDelay := fs.Duration("delay", env.DurationOrDefault("DELAY", 500*time.Millisecond), "Delay between lobby requests")
	maxFollow := fs.Int("max-follow", env.IntOrDefault("MAX_FOLLOW", 8), "Maximum boards followed at once")
	flushGames := fs.Int("flush-games", env.IntOrDefault("FLUSH_GAMES", 100), "Flush when this many boards are buffered")
	tick := fs.Duration("tick", env.DurationOrDefault("TICK_DURATION", 0), "Duration of one move; 0 uses the board's minimum delay")
	logLevel := fs.String("log-level", env.OrDefault("LOG_LEVEL", "info"), "debug, info, warn or error")
	logFormat := fs.String("log-format", env.OrDefault("LOG_FORMAT", "pretty"), "pretty or compact")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}
	if *maxFollow < 1 {
		*maxFollow = 1
	}

	logger := logging.New(*logFormat, logging.ParseLevel(*logLevel))

	followed, err := store.OpenGameLog(*logPath)
	if err != nil {
		log.Fatalf("Failed to open followed log: %v", err)
	}
	defer followed.Close()

	arch, err := newArchive(*outDir, *flushGames, logger)
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}

	discCfg := discovery.DefaultConfig()
	discCfg.LobbyURLs = nil
	for _, u := range strings.Split(*lobbies, ",") {
		if u = strings.TrimSpace(u); u != "" {
			discCfg.LobbyURLs = append(discCfg.LobbyURLs, u)
		}
	}
	discCfg.RequestDelay = *requestDelay

	streamCfg := stream.DefaultConfig()
	streamCfg.EngineURL = *engineURL
	streamCfg.API = api.Options{TickDuration: *tick}
	streamCfg.Logger = logger

	logger.Info("starting shadow",
		"lobbies", discCfg.LobbyURLs,
		"bot", *botName,
		"out_dir", *outDir,
		"already_followed", followed.Count(),
		"max_follow", *maxFollow,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	boards := make(chan int, 64)

	g.Go(func() error {
		defer close(boards)
		err := discovery.NewWorker(discCfg, nil, logger).Poll(ctx, *poll, boards)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		sem := make(chan struct{}, *maxFollow)
		var wg sync.WaitGroup
		defer wg.Wait()
		for id := range boards {
			key := fmt.Sprintf("board-%d", id)
			if followed.Has(key) {
				continue
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return nil
			}
			wg.Add(1)
			go func(id int, key string) {
				defer wg.Done()
				defer func() { <-sem }()

				rows, err := shadowBoard(ctx, streamCfg, id, *botName, logger)
				if err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("follow board", "board", id, "err", err)
				}
				if len(rows) == 0 {
					return
				}
				if err := arch.write(rows); err != nil {
					logger.Error("archive board", "board", id, "err", err)
					return
				}
				if err := followed.Add(key); err != nil {
					logger.Error("mark board followed", "board", id, "err", err)
				}
				logger.Info("board archived", "board", id, "decisions", len(rows))
			}(id, key)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("shadow stopped", "err", err)
	}
	if err := arch.rotate(true); err != nil {
		log.Fatalf("Final flush failed: %v", err)
	}
	log.Printf("Shutdown complete (boards followed=%d)", followed.Count())
}
