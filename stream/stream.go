// Package stream follows a live board's websocket event feed.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/diamonds/api"
	"github.com/brensch/diamonds/game"
)

// Config holds follower configuration
type Config struct {
	// EngineURL is a websocket URL template taking the board id.
	EngineURL      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	API            api.Options
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		EngineURL:      "ws://localhost:8082/api/boards/%d/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// Frame is one board snapshot from the feed.
type Frame struct {
	BoardID int
	Board   *game.Board
	Raw     json.RawMessage
}

// ErrStop can be returned from a frame callback to end Follow without error.
var ErrStop = errors.New("stop following")

// Follow connects to boardID's event stream and calls fn for each frame, in
// order, until the game ends, the server closes the connection, ctx is done
// or fn returns an error. It returns how many frames were delivered.
//
// A read timeout after at least one frame counts as the end of the game.
func Follow(ctx context.Context, cfg Config, boardID int, fn func(Frame) error) (int, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	url := fmt.Sprintf(cfg.EngineURL, boardID)

	dialer := websocket.Dialer{HandshakeTimeout: cfg.ConnectTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return 0, fmt.Errorf("connect %s: %w", url, err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	frames := 0
	for {
		if cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return frames, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || frames > 0 {
				return frames, nil
			}
			return frames, fmt.Errorf("read: %w", err)
		}

		var event api.Event
		if err := json.Unmarshal(message, &event); err != nil {
			logger.Warn("parse event", "board", boardID, "err", err)
			continue
		}

		switch event.Type {
		case api.EventFrame:
			var wire api.Board
			if err := json.Unmarshal(event.Data, &wire); err != nil {
				logger.Warn("parse frame", "board", boardID, "err", err)
				continue
			}
			frames++
			if err := fn(Frame{BoardID: boardID, Board: wire.ToGame(cfg.API), Raw: event.Data}); err != nil {
				if errors.Is(err, ErrStop) {
					return frames, nil
				}
				return frames, err
			}

		case api.EventGameEnd:
			return frames, nil
		}
	}
}
