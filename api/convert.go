package api

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/brensch/diamonds/game"
)

// ErrNoBot is returned when a request names a bot that is not on the board.
var ErrNoBot = errors.New("bot not on board")

// DefaultTickDuration is assumed when neither the caller nor the board says
// how long a move takes.
const DefaultTickDuration = time.Second

type Options struct {
	// TickDuration converts millisecondsLeft into moves left.
	// Zero falls back to the board's minimum move delay, then DefaultTickDuration.
	TickDuration time.Duration
}

func (o Options) tick(b Board) time.Duration {
	if o.TickDuration > 0 {
		return o.TickDuration
	}
	if b.MinimumDelayBetweenMoves > 0 {
		return time.Duration(b.MinimumDelayBetweenMoves) * time.Millisecond
	}
	return DefaultTickDuration
}

func toPosition(p Position) game.Position { return game.Position{X: p.X, Y: p.Y} }
func fromPosition(p game.Position) Position { return Position{X: p.X, Y: p.Y} }

// ToGame converts a wire board. Unknown object types are skipped.
func (b Board) ToGame(opts Options) *game.Board {
	tick := opts.tick(b)
	out := &game.Board{
		ID:     strconv.Itoa(b.ID),
		Width:  b.Width,
		Height: b.Height,
		Turn:   b.Turn,
	}

	for _, o := range b.GameObjects {
		switch o.Type {
		case TypeDiamond:
			out.Items = append(out.Items, game.Item{Position: toPosition(o.Position), Points: o.Properties.Points})
		case TypeTeleport:
			out.Objects = append(out.Objects, game.MapObject{ID: strconv.Itoa(o.ID), Kind: game.KindTeleporter, Position: toPosition(o.Position)})
		case TypeButton:
			out.Objects = append(out.Objects, game.MapObject{ID: strconv.Itoa(o.ID), Kind: game.KindBonusSwitch, Position: toPosition(o.Position)})
		case TypeBot:
			bot := game.Bot{
				ID:        strconv.Itoa(o.ID),
				Name:      o.Properties.Name,
				Position:  toPosition(o.Position),
				Diamonds:  o.Properties.Diamonds,
				Score:     o.Properties.Score,
				TicksLeft: int(time.Duration(o.Properties.MillisecondsLeft) * time.Millisecond / tick),
			}
			if o.Properties.Base != nil {
				bot.Base = toPosition(*o.Properties.Base)
			}
			out.Bots = append(out.Bots, bot)
		}
	}
	return out
}

// BotFor converts the board and picks out the acting bot.
func (r GameRequest) BotFor(opts Options) (game.Bot, *game.Board, error) {
	board := r.Board.ToGame(opts)
	bot, ok := board.FindBot(r.BotID)
	if !ok {
		return game.Bot{}, nil, fmt.Errorf("%w: %q on board %d", ErrNoBot, r.BotID, r.Board.ID)
	}
	return bot, board, nil
}

// FromGame converts a board back to the wire format. Bot and object ids that
// are not numeric are replaced by their index so the output stays valid.
func FromGame(b *game.Board, opts Options) Board {
	id, _ := strconv.Atoi(b.ID)
	out := Board{ID: id, Width: b.Width, Height: b.Height, Turn: b.Turn}
	tick := opts.tick(out)
	out.MinimumDelayBetweenMoves = int(tick / time.Millisecond)

	nextID := 1
	for _, o := range b.Objects {
		if n, err := strconv.Atoi(o.ID); err == nil && n >= nextID {
			nextID = n + 1
		}
	}
	for _, bot := range b.Bots {
		if n, err := strconv.Atoi(bot.ID); err == nil && n >= nextID {
			nextID = n + 1
		}
	}
	objectID := func(s string) int {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		n := nextID
		nextID++
		return n
	}

	for _, it := range b.Items {
		out.GameObjects = append(out.GameObjects, GameObject{
			ID:         objectID(""),
			Position:   fromPosition(it.Position),
			Type:       TypeDiamond,
			Properties: Properties{Points: it.Points},
		})
	}
	for _, o := range b.Objects {
		typ := TypeTeleport
		if o.Kind == game.KindBonusSwitch {
			typ = TypeButton
		}
		out.GameObjects = append(out.GameObjects, GameObject{ID: objectID(o.ID), Position: fromPosition(o.Position), Type: typ})
	}
	for _, bot := range b.Bots {
		base := fromPosition(bot.Base)
		out.GameObjects = append(out.GameObjects,
			GameObject{
				ID:       objectID(bot.ID),
				Position: fromPosition(bot.Position),
				Type:     TypeBot,
				Properties: Properties{
					Name:             bot.Name,
					Diamonds:         bot.Diamonds,
					Score:            bot.Score,
					MillisecondsLeft: int(time.Duration(bot.TicksLeft) * tick / time.Millisecond),
					Base:             &base,
					InventorySize:    5,
				},
			},
			GameObject{ID: objectID(""), Position: base, Type: TypeBase, Properties: Properties{Name: bot.Name}},
		)
	}
	return out
}
