package selfplay

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/brensch/diamonds/game"
	"github.com/brensch/diamonds/store"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("width: 9\nheight: 7\nbots: 3\nteleporters: false\nseed: 42\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Width != 9 || cfg.Height != 7 || cfg.Bots != 3 || cfg.Teleporters || cfg.Seed != 42 {
		t.Fatalf("cfg=%+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Ticks != DefaultConfig().Ticks || !cfg.BonusSwitch {
		t.Fatalf("defaults lost: %+v", cfg)
	}

	if cfg, err := ParseConfig(nil); err != nil || cfg != DefaultConfig() {
		t.Fatalf("empty config: %+v %v", cfg, err)
	}
	if _, err := ParseConfig([]byte("widht: 9\n")); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := ParseConfig([]byte("bots: 5\n")); err == nil || !strings.Contains(err.Error(), "bots") {
		t.Fatalf("expected bots error, got %v", err)
	}
	if _, err := ParseConfig([]byte("red_chance: 120\n")); err == nil {
		t.Fatalf("expected red_chance error")
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 10, 10
	cfg.Ticks = 60
	cfg.Seed = 7
	return cfg
}

func TestNewMatch_Layout(t *testing.T) {
	cfg := testConfig()
	cfg.Bots = 4
	m, err := NewMatch(cfg, WithGameID("layout"))
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	b := m.Board()
	if b.ID != "layout" || len(b.Bots) != 4 {
		t.Fatalf("board=%+v", b)
	}
	want := []game.Position{{X: 0, Y: 0}, {X: 9, Y: 9}, {X: 9, Y: 0}, {X: 0, Y: 9}}
	for i, bot := range b.Bots {
		if bot.Base != want[i] || bot.Position != want[i] || bot.TicksLeft != cfg.Ticks {
			t.Fatalf("bot %d = %+v", i, bot)
		}
	}
	if len(b.ObjectsOfKind(game.KindTeleporter)) != 2 || len(b.ObjectsOfKind(game.KindBonusSwitch)) != 1 {
		t.Fatalf("objects=%+v", b.Objects)
	}
	if len(b.Items) != cfg.MinimumDiamonds {
		t.Fatalf("items=%d want %d", len(b.Items), cfg.MinimumDiamonds)
	}

	cfg.Teleporters, cfg.BonusSwitch = false, false
	m, err = NewMatch(cfg)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if len(m.Board().Objects) != 0 {
		t.Fatalf("objects=%+v", m.Board().Objects)
	}
}

func TestPlayGame_RunsToCompletion(t *testing.T) {
	cfg := testConfig()
	res, rows, err := PlayGame(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PlayGame: %v", err)
	}
	if res.Turns != cfg.Ticks {
		t.Fatalf("turns=%d want %d", res.Turns, cfg.Ticks)
	}
	if len(rows) != cfg.Ticks*cfg.Bots {
		t.Fatalf("rows=%d want %d", len(rows), cfg.Ticks*cfg.Bots)
	}
	for _, r := range rows {
		if r.X < 0 || r.Y < 0 || r.X >= int32(cfg.Width) || r.Y >= int32(cfg.Height) {
			t.Fatalf("bot off board: %+v", r)
		}
		if r.Diamonds > 5 || r.Source != store.SourceSelfPlay || r.GameID != res.GameID {
			t.Fatalf("bad row %+v", r)
		}
	}

	total := 0
	for _, s := range res.Scores {
		total += s
	}
	t.Logf("scores=%v winner=%q", res.Scores, res.Winner)
	if total == 0 {
		t.Fatalf("nobody banked anything in %d ticks", cfg.Ticks)
	}

	again, _, err := PlayGame(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PlayGame: %v", err)
	}
	for id, s := range res.Scores {
		if again.Scores[id] != s {
			t.Fatalf("same seed gave different scores: %v vs %v", res.Scores, again.Scores)
		}
	}
}

func TestMatch_StepReportsMoves(t *testing.T) {
	m, err := NewMatch(testConfig())
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	if !m.Step() {
		t.Fatalf("match ended after one step")
	}
	moves := m.LastMoves()
	if len(moves) != 2 || moves[0].BotID != "1" || moves[1].BotID != "2" {
		t.Fatalf("moves=%+v", moves)
	}
	if m.Board().Turn != 1 || m.Board().Bots[0].TicksLeft != testConfig().Ticks-1 {
		t.Fatalf("round did not advance: %+v", m.Board())
	}
}

func TestPlayGame_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := PlayGame(ctx, testConfig()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func TestRunGames(t *testing.T) {
	var games atomic.Int32
	seen := map[string]bool{}
	err := RunGames(context.Background(), testConfig(), 5, 2, func(res Result, rows []store.DecisionRow) error {
		games.Add(1)
		if seen[res.GameID] {
			t.Errorf("duplicate game id %s", res.GameID)
		}
		seen[res.GameID] = true
		if len(rows) == 0 {
			t.Errorf("game %s has no rows", res.GameID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunGames: %v", err)
	}
	if games.Load() != 5 {
		t.Fatalf("games=%d want 5", games.Load())
	}

	boom := errors.New("boom")
	err = RunGames(context.Background(), testConfig(), 4, 1, func(Result, []store.DecisionRow) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
}
