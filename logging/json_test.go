package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
)

func TestJSONHandler_CompactWithGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewJSONHandler(&buf, &Options{Compact: true}))
	logger.With("bot", "me").WithGroup("decision").Info("tick",
		"score", math.Inf(1),
		"turn", 3,
		"err", errors.New("boom"),
	)

	line := strings.TrimSpace(buf.String())
	if strings.Count(line, "\n") != 0 {
		t.Fatalf("compact output spans lines: %q", line)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", line, err)
	}
	if got["msg"] != "tick" || got["level"] != "INFO" || got["bot"] != "me" {
		t.Fatalf("payload=%v", got)
	}
	group, ok := got["decision"].(map[string]any)
	if !ok {
		t.Fatalf("decision group missing: %v", got)
	}
	if group["score"] != "+Inf" || group["turn"] != float64(3) || group["err"] != "boom" {
		t.Fatalf("group=%v", group)
	}
}

func TestJSONHandler_AttrsKeepTheirGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewJSONHandler(&buf, &Options{Compact: true}))
	logger.With("board", 7).
		WithGroup("bot").With("id", "1").
		WithGroup("decision").Info("tick", "move", "NORTH")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	t.Logf("payload=%v", got)
	if got["board"] != float64(7) {
		t.Fatalf("board moved out of the top level: %v", got)
	}
	bot, ok := got["bot"].(map[string]any)
	if !ok || bot["id"] != "1" {
		t.Fatalf("bot group=%v", got["bot"])
	}
	if _, ok := bot["board"]; ok {
		t.Fatalf("board leaked into bot group: %v", bot)
	}
	decision, ok := bot["decision"].(map[string]any)
	if !ok || decision["move"] != "NORTH" || len(decision) != 1 {
		t.Fatalf("decision group=%v", bot["decision"])
	}
}

func TestJSONHandler_PrettyAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewJSONHandler(&buf, &Options{HandlerOptions: slog.HandlerOptions{Level: slog.LevelWarn}}))
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn: %q", buf.String())
	}
	logger.Warn("kept", "n", 1)
	if !strings.Contains(buf.String(), "\n  \"msg\": \"kept\"") {
		t.Fatalf("expected indented output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != slog.LevelDebug || ParseLevel("WARN") != slog.LevelWarn {
		t.Fatalf("unexpected levels")
	}
	if ParseLevel("chatty") != slog.LevelInfo {
		t.Fatalf("unknown level should be info")
	}
}
