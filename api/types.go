// Package api defines the match server wire format and its conversion to
// game.Board.
//
// A board is a flat list of typed game objects; bots, bases, diamonds,
// teleporters and the bonus switch are told apart by their type name.
package api

import (
	"encoding/json"
)

// Game object type names used by the match server.
const (
	TypeDiamond  = "DiamondGameObject"
	TypeBot      = "BotGameObject"
	TypeBase     = "BaseGameObject"
	TypeTeleport = "TeleportGameObject"
	TypeButton   = "DiamondButtonGameObject"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Properties struct {
	// Diamonds
	Points int `json:"points,omitempty"`
	// Teleporters
	PairID string `json:"pairId,omitempty"`
	// Bots
	Name             string    `json:"name,omitempty"`
	Diamonds         int       `json:"diamonds"`
	Score            int       `json:"score"`
	MillisecondsLeft int       `json:"millisecondsLeft,omitempty"`
	Base             *Position `json:"base,omitempty"`
	InventorySize    int       `json:"inventorySize,omitempty"`
}

type GameObject struct {
	ID         int        `json:"id"`
	Position   Position   `json:"position"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
}

type Board struct {
	ID                       int          `json:"id"`
	Width                    int          `json:"width"`
	Height                   int          `json:"height"`
	MinimumDelayBetweenMoves int          `json:"minimumDelayBetweenMoves"`
	Turn                     int          `json:"turn,omitempty"`
	GameObjects              []GameObject `json:"gameObjects"`
}

// InfoResponse is returned from the bot server root.
type InfoResponse struct {
	APIVersion string `json:"apiversion"`
	Author     string `json:"author"`
	Name       string `json:"name"`
	Version    string `json:"version"`
}

// GameRequest is the body of /start, /move and /end.
type GameRequest struct {
	Board Board  `json:"board"`
	BotID string `json:"botId"`
}

type MoveResponse struct {
	Direction string   `json:"direction"`
	DX        int      `json:"dx"`
	DY        int      `json:"dy"`
	Target    Position `json:"target"`
	Category  string   `json:"category"`
}

// Event is one message on a board's event stream.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event types.
const (
	EventFrame   = "frame"
	EventGameEnd = "game_end"
)
