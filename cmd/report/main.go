// Command report serves aggregate queries over archived decision batches.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/brensch/diamonds/internal/env"
	"github.com/brensch/diamonds/logging"
	"github.com/brensch/diamonds/report"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", env.OrDefault("LISTEN", "127.0.0.1:8090"), "HTTP listen address")
	dataDirs := fs.String("data-dirs", env.OrDefault("DATA_DIRS", "data/selfplay,data/shadow,data/server"), "Comma-separated list of directories containing decision parquet batches")
	staticDir := fs.String("static-dir", env.OrDefault("STATIC_DIR", ""), "Optional directory to serve as SPA static")
	logLevel := fs.String("log-level", env.OrDefault("LOG_LEVEL", "info"), "debug, info, warn or error")
	logFormat := fs.String("log-format", env.OrDefault("LOG_FORMAT", "pretty"), "pretty or compact")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	logger := logging.New(*logFormat, logging.ParseLevel(*logLevel))
	roots := report.ParseRoots(*dataDirs)
	log.Printf("Report data roots: %s", strings.Join(roots, ","))

	rs := report.NewServer(roots, logger)
	defer rs.Close()

	mux := http.NewServeMux()
	rs.RegisterRoutes(mux)
	if strings.TrimSpace(*staticDir) != "" {
		mux.Handle("/", spaHandler{staticPath: *staticDir, indexPath: filepath.Join(*staticDir, "index.html")})
	}

	srv := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Report API listening on http://%s", *listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Exact asset if it exists, otherwise index.html for client-side routing.
	path := filepath.Clean(r.URL.Path)
	if path == "/" {
		http.ServeFile(w, r, h.indexPath)
		return
	}
	candidate := filepath.Join(h.staticPath, strings.TrimPrefix(path, "/"))
	if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
		http.ServeFile(w, r, candidate)
		return
	}
	http.ServeFile(w, r, h.indexPath)
}
