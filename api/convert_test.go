package api

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/brensch/diamonds/game"
)

const sampleBoard = `{
  "id": 7,
  "width": 15,
  "height": 15,
  "minimumDelayBetweenMoves": 100,
  "gameObjects": [
    {"id": 1, "position": {"x": 2, "y": 3}, "type": "DiamondGameObject", "properties": {"points": 2}},
    {"id": 2, "position": {"x": 5, "y": 5}, "type": "TeleportGameObject", "properties": {"pairId": "3"}},
    {"id": 3, "position": {"x": 9, "y": 9}, "type": "TeleportGameObject", "properties": {"pairId": "2"}},
    {"id": 4, "position": {"x": 0, "y": 14}, "type": "DiamondButtonGameObject", "properties": {}},
    {"id": 5, "position": {"x": 1, "y": 1}, "type": "BaseGameObject", "properties": {"name": "stark"}},
    {"id": 6, "position": {"x": 4, "y": 1}, "type": "BotGameObject", "properties": {
      "name": "stark", "diamonds": 2, "score": 7, "millisecondsLeft": 2450, "base": {"x": 1, "y": 1}}},
    {"id": 8, "position": {"x": 3, "y": 3}, "type": "SomethingNew", "properties": {}}
  ]
}`

func TestToGame_ParsesAllObjectKinds(t *testing.T) {
	var b Board
	if err := json.Unmarshal([]byte(sampleBoard), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	g := b.ToGame(Options{})
	if g.ID != "7" || g.Width != 15 {
		t.Fatalf("board header %+v", g)
	}
	if len(g.Items) != 1 || g.Items[0] != (game.Item{Position: game.Position{X: 2, Y: 3}, Points: 2}) {
		t.Fatalf("items=%+v", g.Items)
	}
	if len(g.ObjectsOfKind(game.KindTeleporter)) != 2 || len(g.ObjectsOfKind(game.KindBonusSwitch)) != 1 {
		t.Fatalf("objects=%+v", g.Objects)
	}
	bot, ok := g.FindBot("6")
	if !ok {
		t.Fatalf("bot 6 missing")
	}
	// 2450ms at the board's 100ms per move.
	if bot.TicksLeft != 24 || bot.Base != (game.Position{X: 1, Y: 1}) || bot.Diamonds != 2 || bot.Score != 7 {
		t.Fatalf("bot=%+v", bot)
	}

	if got := b.ToGame(Options{TickDuration: time.Second}).Bots[0].TicksLeft; got != 2 {
		t.Fatalf("TicksLeft=%d want 2 with 1s ticks", got)
	}
}

func TestBotFor_UnknownBot(t *testing.T) {
	var b Board
	if err := json.Unmarshal([]byte(sampleBoard), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, _, err := (GameRequest{Board: b, BotID: "42"}).BotFor(Options{}); !errors.Is(err, ErrNoBot) {
		t.Fatalf("err=%v want ErrNoBot", err)
	}
	bot, board, err := (GameRequest{Board: b, BotID: "6"}).BotFor(Options{})
	if err != nil || bot.Name != "stark" || board == nil {
		t.Fatalf("BotFor: %+v %v", bot, err)
	}
}

func TestFromGame_PreservesWhatTheEngineReads(t *testing.T) {
	g := &game.Board{
		ID:     "3",
		Width:  10,
		Height: 10,
		Turn:   4,
		Items:  []game.Item{{Position: game.Position{X: 1, Y: 2}, Points: 1}},
		Objects: []game.MapObject{
			{ID: "10", Kind: game.KindTeleporter, Position: game.Position{X: 3, Y: 3}},
			{ID: "11", Kind: game.KindTeleporter, Position: game.Position{X: 6, Y: 6}},
			{ID: "switch", Kind: game.KindBonusSwitch, Position: game.Position{X: 8, Y: 1}},
		},
		Bots: []game.Bot{{ID: "1", Name: "a", Position: game.Position{X: 4, Y: 4}, Base: game.Position{X: 0, Y: 0}, Diamonds: 1, TicksLeft: 30}},
	}
	wire := FromGame(g, Options{TickDuration: 200 * time.Millisecond})
	seen := map[int]bool{}
	for _, o := range wire.GameObjects {
		if seen[o.ID] {
			t.Fatalf("duplicate object id %d", o.ID)
		}
		seen[o.ID] = true
	}

	back := wire.ToGame(Options{})
	if len(back.Items) != 1 || len(back.Objects) != 3 || back.Turn != 4 {
		t.Fatalf("round trip lost objects: %+v", back)
	}
	bot, ok := back.FindBot("1")
	if !ok || bot.TicksLeft != 30 || bot.Base != g.Bots[0].Base || bot.Position != g.Bots[0].Position {
		t.Fatalf("bot=%+v ok=%v", bot, ok)
	}
}
