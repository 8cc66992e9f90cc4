package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/diamonds/api"
)

// feed serves a fixed list of raw messages on every connection, then either
// closes or blocks until the client goes away.
func feed(t *testing.T, messages []string, hold bool) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		if hold {
			// Wait for the client to hang up.
			_, _, _ = conn.ReadMessage()
			return
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func frameEvent(t *testing.T, turn int) string {
	t.Helper()
	base := api.Position{X: 0, Y: 0}
	board := api.Board{
		ID: 5, Width: 6, Height: 6, Turn: turn, MinimumDelayBetweenMoves: 100,
		GameObjects: []api.GameObject{
			{ID: 1, Type: api.TypeBot, Position: api.Position{X: turn, Y: 0}, Properties: api.Properties{
				Name: "a", MillisecondsLeft: 1000, Base: &base,
			}},
		},
	}
	data, err := json.Marshal(board)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ev, err := json.Marshal(api.Event{Type: api.EventFrame, Data: data})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(ev)
}

func testConfig(srv *httptest.Server) Config {
	cfg := DefaultConfig()
	cfg.EngineURL = "ws" + strings.TrimPrefix(srv.URL, "http") + "/boards/%d/events"
	cfg.ReadTimeout = 2 * time.Second
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

func TestFollow_DeliversFramesUntilGameEnd(t *testing.T) {
	srv := feed(t, []string{
		frameEvent(t, 0),
		"not json",
		frameEvent(t, 1),
		`{"type":"game_end"}`,
		frameEvent(t, 2),
	}, true)

	var turns []int
	n, err := Follow(context.Background(), testConfig(srv), 5, func(f Frame) error {
		bot, ok := f.Board.FindBot("1")
		if !ok {
			t.Fatalf("bot missing in frame %s", f.Raw)
		}
		if bot.TicksLeft != 10 {
			t.Fatalf("TicksLeft=%d want 10", bot.TicksLeft)
		}
		turns = append(turns, f.Board.Turn)
		return nil
	})
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if n != 2 || len(turns) != 2 || turns[0] != 0 || turns[1] != 1 {
		t.Fatalf("n=%d turns=%v", n, turns)
	}
}

func TestFollow_CloseEndsCleanly(t *testing.T) {
	srv := feed(t, []string{frameEvent(t, 0)}, false)
	n, err := Follow(context.Background(), testConfig(srv), 5, func(Frame) error { return nil })
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestFollow_CallbackErrors(t *testing.T) {
	srv := feed(t, []string{frameEvent(t, 0), frameEvent(t, 1)}, true)

	n, err := Follow(context.Background(), testConfig(srv), 5, func(Frame) error { return ErrStop })
	if err != nil || n != 1 {
		t.Fatalf("ErrStop: n=%d err=%v", n, err)
	}

	boom := errors.New("boom")
	_, err = Follow(context.Background(), testConfig(srv), 5, func(Frame) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
}

func TestFollow_ContextCancel(t *testing.T) {
	srv := feed(t, []string{frameEvent(t, 0)}, true)
	ctx, cancel := context.WithCancel(context.Background())

	n, err := Follow(ctx, testConfig(srv), 5, func(Frame) error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}
