package logic

import (
	"math"
	"testing"

	"github.com/brensch/diamonds/game"
)

func TestBestDensityTarget_NoItems(t *testing.T) {
	bot := me(pos(2, 2), pos(0, 0), 0)
	got := bestDensityTarget(bot, boardWith(bot, nil, nil))
	if got.Found {
		t.Fatalf("expected no density target, got %+v", got)
	}
	if got.Target != bot.Base {
		t.Fatalf("default target=%v want base", got.Target)
	}
}

func TestBestDensityTarget_DirectTieKeepsFirst(t *testing.T) {
	bot := me(pos(5, 5), pos(0, 0), 0)
	// red at 4 steps (0.5) ties blue at 2 steps (0.5); the red is first.
	b := boardWith(bot, []game.Item{red(9, 5), blue(5, 7), blue(14, 14)}, nil)
	got := bestDensityTarget(b.Bots[0], b)
	if !got.Found || got.ViaPortal || got.Target != pos(9, 5) || got.Density != 0.5 {
		t.Fatalf("got %+v want red (9,5) at 0.5\n%s", got, dumpBoard(b))
	}
}

func TestBestDensityTarget_RelayThroughTeleporter(t *testing.T) {
	bot := me(pos(0, 0), pos(0, 1), 0)
	b := boardWith(bot,
		[]game.Item{red(14, 14)},
		[]game.MapObject{teleporter("far", 13, 13), teleporter("near", 1, 0)},
	)
	got := bestDensityTarget(bot, b)
	t.Logf("\n%s%+v", dumpBoard(b), got)
	// direct 2/28; relayed 2/(1+2)
	if !got.ViaPortal || got.Target != pos(1, 0) {
		t.Fatalf("expected relay via the near teleporter, got %+v", got)
	}
	if math.Abs(got.Density-2.0/3.0) > 1e-9 {
		t.Fatalf("relayed density=%v want 2/3", got.Density)
	}
}

func TestBestDensityTarget_RelayNeedsStrictlyBetter(t *testing.T) {
	bot := me(pos(0, 0), pos(0, 1), 0)
	// direct: 1/2. relayed: 1/(1+1).
	b := boardWith(bot,
		[]game.Item{blue(2, 0)},
		[]game.MapObject{teleporter("a", 1, 0), teleporter("b", 2, 1)},
	)
	got := bestDensityTarget(bot, b)
	if got.ViaPortal || got.Target != pos(2, 0) {
		t.Fatalf("equal relayed density should not replace direct, got %+v", got)
	}
}

func TestDensityCandidate_ScoresMatchWinner(t *testing.T) {
	bot := me(pos(0, 0), pos(0, 1), 0)
	b := boardWith(bot,
		[]game.Item{red(14, 14)},
		[]game.MapObject{teleporter("near", 1, 0), teleporter("far", 13, 13)},
	)
	c, ok := densityCandidate(bot, b)
	if !ok || c.Category != CategoryDensityTele || c.Target != pos(1, 0) {
		t.Fatalf("got %+v,%v", c, ok)
	}

	b.Objects = nil
	c, ok = densityCandidate(bot, b)
	if !ok || c.Category != CategoryDensity || c.Score != 2.0/28.0 {
		t.Fatalf("got %+v,%v", c, ok)
	}
}
