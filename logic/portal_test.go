package logic

import (
	"testing"

	"github.com/brensch/diamonds/game"
)

func TestPortalHome_ShortcutActivates(t *testing.T) {
	bot := me(pos(0, 0), pos(10, 10), 5)
	b := boardWith(bot, []game.Item{blue(6, 0)}, []game.MapObject{teleporter("a", 1, 1), teleporter("b", 9, 9)})

	e := NewEngine()
	d := e.Decide(bot, b)
	logDecision(t, "shortcut", b, d)

	if d.Winner.Category != CategoryBaseInventory || d.Winner.Target != bot.Base {
		t.Fatalf("winner=%+v want base_inventory to base", d.Winner)
	}
	if !d.PortalOverride || d.Target != pos(1, 1) {
		t.Fatalf("expected redirect to (1,1), got target=%v override=%v", d.Target, d.PortalOverride)
	}
	if !d.State.UsingPortal {
		t.Fatalf("portal latch not set")
	}
	if d.Move != game.East {
		t.Fatalf("move=%v want EAST (x wins ties)", d.Move)
	}
}

func TestPortalHome_LatchSkipsShortcutOnLaterTicks(t *testing.T) {
	bot := me(pos(0, 0), pos(10, 10), 5)
	b := boardWith(bot, nil, []game.MapObject{teleporter("a", 1, 1), teleporter("b", 9, 9)})
	e := NewEngine()
	e.Decide(bot, b)

	// Still far from home (gate never runs with a full bag), latch stays set.
	bot.Position = pos(1, 0)
	d := e.Decide(bot, b)
	if d.PortalOverride || d.Target != bot.Base {
		t.Fatalf("latched engine should head straight for base, got %v", d.Target)
	}
	if !d.State.UsingPortal {
		t.Fatalf("latch cleared without a pursuit reset")
	}
}

func TestPortalHome_EquidistantExitsAreIgnored(t *testing.T) {
	bot := me(pos(0, 0), pos(10, 10), 5)
	b := boardWith(bot, nil, []game.MapObject{teleporter("a", 10, 8), teleporter("b", 8, 10)})
	e := NewEngine()
	if e.portalHome(bot, b) {
		t.Fatalf("equal distances from base should not trigger the shortcut")
	}
}

func TestPortalHome_NotShorter(t *testing.T) {
	bot := me(pos(5, 5), pos(6, 6), 5)
	b := boardWith(bot, nil, []game.MapObject{teleporter("a", 4, 5), teleporter("b", 12, 12)})
	e := NewEngine()
	if e.portalHome(bot, b) {
		t.Fatalf("shortcut taken although walking is shorter")
	}
	if e.State().UsingPortal {
		t.Fatalf("latch set without a shortcut")
	}
}

func TestPortalHome_NeedsTwoTeleporters(t *testing.T) {
	bot := me(pos(0, 0), pos(10, 10), 5)
	b := boardWith(bot, nil, []game.MapObject{teleporter("a", 1, 1)})
	if NewEngine().portalHome(bot, b) {
		t.Fatalf("a single teleporter cannot be a shortcut")
	}
}
