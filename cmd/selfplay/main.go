// Command selfplay plays local matches between decision engines and archives
// every decision as parquet batches.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/diamonds/internal/env"
	"github.com/brensch/diamonds/logging"
	"github.com/brensch/diamonds/selfplay"
	"github.com/brensch/diamonds/store"
)

// flusher buffers finished games and writes them out every gamesPerFlush games.
type flusher struct {
	outDir        string
	gamesPerFlush int
	logger        *slog.Logger

	pendingRows  []store.DecisionRow
	pendingGames int
	written      int
}

func (f *flusher) add(rows []store.DecisionRow) error {
	if len(rows) == 0 {
		return nil
	}
	f.pendingRows = append(f.pendingRows, rows...)
	f.pendingGames++
	if f.pendingGames < f.gamesPerFlush {
		return nil
	}
	return f.flush()
}

func (f *flusher) flush() error {
	if f.pendingGames == 0 || len(f.pendingRows) == 0 {
		return nil
	}
	outPath, err := store.WriteBatchParquetAtomic(f.outDir, f.pendingRows)
	if err != nil {
		return fmt.Errorf("parquet flush (games=%d rows=%d): %w", f.pendingGames, len(f.pendingRows), err)
	}
	f.logger.Info("parquet flush ok", "path", outPath, "games", f.pendingGames, "rows", len(f.pendingRows))
	f.written += f.pendingGames
	f.pendingRows = f.pendingRows[:0]
	f.pendingGames = 0
	return nil
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configPath := fs.String("config", env.OrDefault("SELFPLAY_CONFIG", ""), "YAML match config; empty uses defaults")
	games := fs.Int("games", env.IntOrDefault("GAMES", 100), "Number of games to play")
	workers := fs.Int("workers", env.IntOrDefault("WORKERS", 8), "Number of games played concurrently")
	outDir := fs.String("out-dir", env.OrDefault("OUT_DIR", "data/selfplay"), "Output directory for parquet batches")
	gamesPerFlush := fs.Int("games-per-flush", env.IntOrDefault("GAMES_PER_FLUSH", 50), "Number of games to buffer per parquet flush")
	useTUI := fs.Bool("tui", env.BoolOrDefault("TUI", false), "Show a live progress view instead of log lines")
	logLevel := fs.String("log-level", env.OrDefault("LOG_LEVEL", "info"), "debug, info, warn or error")
	logFormat := fs.String("log-format", env.OrDefault("LOG_FORMAT", "pretty"), "pretty or compact")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}
	if *gamesPerFlush <= 0 {
		*gamesPerFlush = 50
	}

	cfg := selfplay.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = selfplay.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	logger := logging.New(*logFormat, logging.ParseLevel(*logLevel))
	if *useTUI {
		// Log lines would tear the progress view.
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	f := &flusher{outDir: *outDir, gamesPerFlush: *gamesPerFlush, logger: logger}
	updates := make(chan GameUpdate, *workers)

	onGame := func(res selfplay.Result, rows []store.DecisionRow) error {
		if !*useTUI {
			selfplay.LogResult(logger, res)
		}
		select {
		case updates <- GameUpdate{Result: res, Rows: len(rows)}:
		default:
		}
		return f.add(rows)
	}

	logger.Info("starting self-play", "games", *games, "workers", *workers, "width", cfg.Width, "height", cfg.Height, "bots", cfg.Bots)

	runErr := make(chan error, 1)
	go func() {
		runErr <- selfplay.RunGames(ctx, cfg, *games, *workers, onGame)
	}()

	var err error
	if *useTUI {
		p := tea.NewProgram(initialModel(*games, updates))
		go func() {
			e := <-runErr
			runErr <- e
			p.Send(doneMsg{err: e})
		}()
		if _, perr := p.Run(); perr != nil {
			log.Printf("progress view: %v", perr)
		}
		// Quitting the view early stops the run.
		cancel()
		err = <-runErr
	} else {
		err = <-runErr
	}

	// RunGames has returned so onGame is no longer called.
	if ferr := f.flush(); ferr != nil {
		log.Fatalf("Final flush failed: %v", ferr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Self-play failed: %v", err)
	}
	log.Printf("Shutdown complete: %d games archived in %s", f.written, *outDir)
}
