// Command diamondbot serves the decision engine over the bot HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/brensch/diamonds/api"
	"github.com/brensch/diamonds/internal/env"
	"github.com/brensch/diamonds/logging"
	"github.com/brensch/diamonds/server"
	"github.com/brensch/diamonds/store"
)

// rotatingSink writes decisions into a batch that is finalized and replaced
// every flush interval.
type rotatingSink struct {
	dir string
	mu  sync.Mutex
	w   *store.BatchWriter
}

func newRotatingSink(dir string) (*rotatingSink, error) {
	w, err := store.NewBatchWriter(dir)
	if err != nil {
		return nil, err
	}
	return &rotatingSink{dir: dir, w: w}, nil
}

func (s *rotatingSink) Record(row store.DecisionRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Record(row)
}

// rotate finalizes the current batch and, unless last, opens a new one.
func (s *rotatingSink) rotate(last bool) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, rows, _, err := s.w.Finalize()
	if err != nil || last {
		return path, rows, err
	}
	next, err := store.NewBatchWriter(s.dir)
	if err != nil {
		return path, rows, err
	}
	s.w = next
	return path, rows, nil
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", env.OrDefault("LISTEN", ":8080"), "HTTP listen address")
	name := fs.String("name", env.OrDefault("BOT_NAME", "diamondbot"), "Bot name reported at /")
	author := fs.String("author", env.OrDefault("BOT_AUTHOR", "brensch"), "Author reported at /")
	tick := fs.Duration("tick", env.DurationOrDefault("TICK_DURATION", 0), "Duration of one move; 0 uses the board's minimum delay")
	recordDir := fs.String("record-dir", env.OrDefault("RECORD_DIR", ""), "If set, archive every decision as parquet batches here")
	flushEvery := fs.Duration("flush-every", env.DurationOrDefault("FLUSH_EVERY", 10*time.Minute), "Rotate the decision batch at this interval")
	idleTTL := fs.Duration("idle-ttl", env.DurationOrDefault("IDLE_TTL", server.DefaultIdleTTL), "Forget a game's engine after this long without a request")
	logLevel := fs.String("log-level", env.OrDefault("LOG_LEVEL", "info"), "debug, info, warn or error")
	logFormat := fs.String("log-format", env.OrDefault("LOG_FORMAT", "pretty"), "pretty or compact")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	logger := logging.New(*logFormat, logging.ParseLevel(*logLevel))

	cfg := server.Config{
		Name:    *name,
		Author:  *author,
		Version: "1.0.0",
		API:     api.Options{TickDuration: *tick},
		Logger:  logger,
		IdleTTL: *idleTTL,
	}

	var sink *rotatingSink
	if *recordDir != "" {
		var err error
		sink, err = newRotatingSink(*recordDir)
		if err != nil {
			log.Fatalf("Failed to open decision archive: %v", err)
		}
		cfg.Sink = sink
	}

	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.New(cfg).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sink != nil && *flushEvery > 0 {
		go func() {
			ticker := time.NewTicker(*flushEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					path, rows, err := sink.rotate(false)
					if err != nil {
						logger.Error("rotate decision batch", "err", err)
						continue
					}
					if rows > 0 {
						logger.Info("decision batch written", "path", path, "rows", rows)
					}
				}
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("diamondbot %q listening on http://%s", *name, *listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}

	if sink != nil {
		path, rows, err := sink.rotate(true)
		if err != nil {
			log.Fatalf("Final decision flush failed: %v", err)
		}
		log.Printf("Shutdown complete: %d decisions in %s", rows, path)
	}
}
