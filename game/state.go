// Package game defines the board snapshot types for the diamonds game.
//
// These types are the read-only view handed to the decision engine each tick,
// and the mutable state advanced by the rules package in local matches. The
// state is designed to be cheaply clonable so a simulator can keep history.
package game

import "fmt"

// Position is a board coordinate. (0,0) is the top-left tile; y grows south.
type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Item is a collectible diamond. Blue diamonds are worth 1 point, red ones 2.
type Item struct {
	Position Position
	Points   int
}

const (
	BluePoints = 1
	RedPoints  = 2
)

// ObjectKind tags a generic map object. Values match the match server's type names.
type ObjectKind string

const (
	KindTeleporter  ObjectKind = "TeleportGameObject"
	KindBonusSwitch ObjectKind = "DiamondButtonGameObject"
)

type MapObject struct {
	ID       string
	Kind     ObjectKind
	Position Position
}

// Bot is a player on the board. TicksLeft is the number of moves the bot
// can still make before the match ends for it.
type Bot struct {
	ID        string
	Name      string
	Position  Position
	Base      Position
	Diamonds  int
	Score     int
	TicksLeft int
}

// Board is the complete state of one board for a single tick.
type Board struct {
	ID      string
	Width   int
	Height  int
	Turn    int
	Items   []Item
	Objects []MapObject
	Bots    []Bot
}

// FindBot returns the bot with the given id.
func (b *Board) FindBot(id string) (Bot, bool) {
	for _, bot := range b.Bots {
		if bot.ID == id {
			return bot, true
		}
	}
	return Bot{}, false
}

// ObjectsOfKind returns the objects of one kind in board order.
func (b *Board) ObjectsOfKind(kind ObjectKind) []MapObject {
	var out []MapObject
	for _, o := range b.Objects {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}

// InBounds reports whether p lies on the board.
func (b *Board) InBounds(p Position) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}

// Clone performs a deep copy of the board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}

	out := &Board{
		ID:     b.ID,
		Width:  b.Width,
		Height: b.Height,
		Turn:   b.Turn,
	}

	if len(b.Items) > 0 {
		out.Items = make([]Item, len(b.Items))
		copy(out.Items, b.Items)
	}
	if len(b.Objects) > 0 {
		out.Objects = make([]MapObject, len(b.Objects))
		copy(out.Objects, b.Objects)
	}
	if len(b.Bots) > 0 {
		out.Bots = make([]Bot, len(b.Bots))
		copy(out.Bots, b.Bots)
	}

	return out
}

// Direction is a unit step on the grid.
type Direction struct {
	DX int
	DY int
}

var (
	Stay  = Direction{}
	North = Direction{DX: 0, DY: -1}
	South = Direction{DX: 0, DY: 1}
	East  = Direction{DX: 1, DY: 0}
	West  = Direction{DX: -1, DY: 0}
)

// Apply returns the position one step from p.
func (d Direction) Apply(p Position) Position {
	return Position{X: p.X + d.DX, Y: p.Y + d.DY}
}

// String returns the wire name of the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "NORTH"
	case South:
		return "SOUTH"
	case East:
		return "EAST"
	case West:
		return "WEST"
	case Stay:
		return "STAY"
	default:
		return fmt.Sprintf("(%d,%d)", d.DX, d.DY)
	}
}

// ParseDirection converts a wire name back to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "NORTH":
		return North, nil
	case "SOUTH":
		return South, nil
	case "EAST":
		return East, nil
	case "WEST":
		return West, nil
	case "STAY":
		return Stay, nil
	}
	return Stay, fmt.Errorf("unknown direction %q", s)
}
