// Package discovery finds live board ids on a match server's lobby pages.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Config holds discovery worker configuration
type Config struct {
	LobbyURLs    []string      // Lobby pages listing boards
	RequestDelay time.Duration // Delay between HTTP requests to be polite
	UserAgent    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		LobbyURLs:    []string{"http://localhost:8082/"},
		RequestDelay: 500 * time.Millisecond,
		UserAgent:    "diamondbot/1.0 (shadow)",
	}
}

// Worker discovers board ids and remembers which ones it has already handed out.
type Worker struct {
	config  Config
	client  *http.Client
	logger  *slog.Logger
	known   map[int]bool
	knownMu sync.Mutex
	boardRe *regexp.Regexp
}

// NewWorker creates a new discovery worker. known may be nil.
func NewWorker(config Config, known map[int]bool, logger *slog.Logger) *Worker {
	if known == nil {
		known = make(map[int]bool)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		known:   known,
		boardRe: regexp.MustCompile(`/boards/(\d+)`),
	}
}

// Discover scrapes every lobby once and sends board ids not seen before.
// It returns how many new ids were sent.
func (w *Worker) Discover(ctx context.Context, out chan<- int) (int, error) {
	total := 0
	for i, lobby := range w.config.LobbyURLs {
		if i > 0 && w.config.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(w.config.RequestDelay):
			}
		}

		ids, err := w.Boards(ctx, lobby)
		if err != nil {
			w.logger.Warn("scrape lobby", "url", lobby, "err", err)
			continue
		}

		fresh := 0
		for _, id := range ids {
			if !w.markKnown(id) {
				continue
			}
			select {
			case out <- id:
				fresh++
			case <-ctx.Done():
				return total + fresh, ctx.Err()
			}
		}
		w.logger.Info("scraped lobby", "url", lobby, "boards", len(ids), "new", fresh)
		total += fresh
	}
	return total, nil
}

// Poll runs Discover every interval until ctx is done.
func (w *Worker) Poll(ctx context.Context, interval time.Duration, out chan<- int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := w.Discover(ctx, out); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Boards returns the board ids linked from one lobby page, in ascending order.
// Links are recognised by a /boards/<id> path; elements carrying a
// data-board-id attribute count too.
func (w *Worker) Boards(ctx context.Context, lobbyURL string) ([]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lobbyURL, nil)
	if err != nil {
		return nil, err
	}
	if w.config.UserAgent != "" {
		req.Header.Set("User-Agent", w.config.UserAgent)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse lobby: %w", err)
	}

	seen := make(map[int]bool)
	doc.Find("a[href*='/boards/']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if m := w.boardRe.FindStringSubmatch(href); len(m) >= 2 {
			if id, err := strconv.Atoi(m[1]); err == nil {
				seen[id] = true
			}
		}
	})
	doc.Find("[data-board-id]").Each(func(_ int, s *goquery.Selection) {
		if id, err := strconv.Atoi(s.AttrOr("data-board-id", "")); err == nil {
			seen[id] = true
		}
	})

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// markKnown records id and reports whether it was new.
func (w *Worker) markKnown(id int) bool {
	w.knownMu.Lock()
	defer w.knownMu.Unlock()
	if w.known[id] {
		return false
	}
	w.known[id] = true
	return true
}
