// Package store archives engine decisions as parquet files.
package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/brensch/diamonds/api"
	"github.com/brensch/diamonds/game"
	"github.com/brensch/diamonds/logic"
)

// Schema is written into every file's key/value metadata.
const Schema = "decision_row_v1"

// Sources of a row.
const (
	SourceSelfPlay = "selfplay"
	SourceServer   = "server"
	SourceShadow   = "shadow"
)

// DecisionRow is one (game, turn, bot) decision.
//
// The board snapshot is kept in the match server's wire format so a row can
// be fed back through api.Board.ToGame and the engine replayed on it.
type DecisionRow struct {
	GameID string `parquet:"game_id,dict"`
	Turn   int32  `parquet:"turn"`
	BotID  string `parquet:"bot_id,dict"`
	Width  int32  `parquet:"width"`
	Height int32  `parquet:"height"`

	X         int32 `parquet:"x"`
	Y         int32 `parquet:"y"`
	BaseX     int32 `parquet:"base_x"`
	BaseY     int32 `parquet:"base_y"`
	Diamonds  int32 `parquet:"diamonds"`
	Score     int32 `parquet:"score"`
	TicksLeft int32 `parquet:"ticks_left"`

	TargetX  int32   `parquet:"target_x"`
	TargetY  int32   `parquet:"target_y"`
	Category string  `parquet:"category,dict"`
	Value    float64 `parquet:"value"`
	Move     string  `parquet:"move,dict"`

	PortalOverride bool  `parquet:"portal_override"`
	PursuitCount   int32 `parquet:"pursuit_count"`
	UsingPortal    bool  `parquet:"using_portal"`

	Source string `parquet:"source,dict"`

	// CandidatesJSON is a JSON array of {x, y, category, score}. Scores are
	// strings because a zero-distance candidate scores +Inf.
	CandidatesJSON []byte `parquet:"candidates_json,optional,zstd"`
	BoardJSON      []byte `parquet:"board_json,optional,zstd"`
}

// CandidateRecord is one entry of DecisionRow.CandidatesJSON.
type CandidateRecord struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Category string `json:"category"`
	Score    string `json:"score"`
}

// NewDecisionRow flattens a decision taken by bot on board.
func NewDecisionRow(gameID, source string, bot game.Bot, board *game.Board, d logic.Decision) (DecisionRow, error) {
	cands := make([]CandidateRecord, 0, len(d.Candidates))
	for _, c := range d.Candidates {
		cands = append(cands, CandidateRecord{
			X:        c.Target.X,
			Y:        c.Target.Y,
			Category: c.Category.String(),
			Score:    strconv.FormatFloat(c.Score, 'g', -1, 64),
		})
	}
	candJSON, err := json.Marshal(cands)
	if err != nil {
		return DecisionRow{}, fmt.Errorf("encode candidates: %w", err)
	}
	boardJSON, err := json.Marshal(api.FromGame(board, api.Options{}))
	if err != nil {
		return DecisionRow{}, fmt.Errorf("encode board: %w", err)
	}

	return DecisionRow{
		GameID:         gameID,
		Turn:           int32(board.Turn),
		BotID:          bot.ID,
		Width:          int32(board.Width),
		Height:         int32(board.Height),
		X:              int32(bot.Position.X),
		Y:              int32(bot.Position.Y),
		BaseX:          int32(bot.Base.X),
		BaseY:          int32(bot.Base.Y),
		Diamonds:       int32(bot.Diamonds),
		Score:          int32(bot.Score),
		TicksLeft:      int32(bot.TicksLeft),
		TargetX:        int32(d.Target.X),
		TargetY:        int32(d.Target.Y),
		Category:       d.Winner.Category.String(),
		Value:          d.Winner.Score,
		Move:           d.Move.String(),
		PortalOverride: d.PortalOverride,
		PursuitCount:   int32(d.State.PursuitCount),
		UsingPortal:    d.State.UsingPortal,
		Source:         source,
		CandidatesJSON: candJSON,
		BoardJSON:      boardJSON,
	}, nil
}

// Candidates decodes CandidatesJSON.
func (r DecisionRow) Candidates() ([]CandidateRecord, error) {
	if len(r.CandidatesJSON) == 0 {
		return nil, nil
	}
	var out []CandidateRecord
	if err := json.Unmarshal(r.CandidatesJSON, &out); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return out, nil
}

// Board decodes BoardJSON back into a game board.
func (r DecisionRow) Board() (*game.Board, error) {
	var b api.Board
	if err := json.Unmarshal(r.BoardJSON, &b); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	return b.ToGame(api.Options{}), nil
}
