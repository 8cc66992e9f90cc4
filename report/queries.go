package report

import (
	"context"
	"database/sql"
	"strconv"
)

type GameSummary struct {
	GameID    string `json:"game_id"`
	Source    string `json:"source"`
	Turns     int64  `json:"turns"`
	Bots      int64  `json:"bots"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	BestScore int    `json:"best_score"`
	File      string `json:"file"`
}

type GamesResponse struct {
	Total int64         `json:"total"`
	Games []GameSummary `json:"games"`
}

// CategoryCount is how often a heuristic won. MeanValue only averages
// finite scores.
type CategoryCount struct {
	Category  string   `json:"category"`
	Count     int64    `json:"count"`
	MeanValue *float64 `json:"mean_value,omitempty"`
}

// Decision is one archived decision. Value is a string because zero-distance
// targets score +Inf.
type Decision struct {
	Turn           int    `json:"turn"`
	BotID          string `json:"bot_id"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Diamonds       int    `json:"diamonds"`
	Score          int    `json:"score"`
	TicksLeft      int    `json:"ticks_left"`
	TargetX        int    `json:"target_x"`
	TargetY        int    `json:"target_y"`
	Category       string `json:"category"`
	Value          string `json:"value"`
	Move           string `json:"move"`
	PortalOverride bool   `json:"portal_override"`
}

func queryGamesTotal(ctx context.Context, db *sql.DB) (int64, error) {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT game_id) FROM decisions`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func queryGames(ctx context.Context, db *sql.DB, limit, offset int) ([]GameSummary, error) {
	rows, err := db.QueryContext(ctx, `SELECT
			game_id,
			MIN(source)::VARCHAR,
			COUNT(DISTINCT turn)::BIGINT,
			COUNT(DISTINCT bot_id)::BIGINT,
			MIN(width)::INTEGER,
			MIN(height)::INTEGER,
			MAX(score)::INTEGER,
			MIN(filename)::VARCHAR
		FROM decisions
		GROUP BY game_id
		ORDER BY game_id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameSummary{}
	for rows.Next() {
		var g GameSummary
		if err := rows.Scan(&g.GameID, &g.Source, &g.Turns, &g.Bots, &g.Width, &g.Height, &g.BestScore, &g.File); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// queryCategories counts winning categories, for one game or, with an empty
// gameID, across the archive.
func queryCategories(ctx context.Context, db *sql.DB, gameID string) ([]CategoryCount, error) {
	rows, err := db.QueryContext(ctx, `SELECT
			category,
			COUNT(*)::BIGINT AS n,
			AVG(CASE WHEN isfinite(value) THEN value END)::DOUBLE
		FROM decisions
		WHERE ? = '' OR game_id = ?
		GROUP BY category
		ORDER BY n DESC, category`, gameID, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CategoryCount{}
	for rows.Next() {
		var c CategoryCount
		var mean sql.NullFloat64
		if err := rows.Scan(&c.Category, &c.Count, &mean); err != nil {
			return nil, err
		}
		if mean.Valid {
			v := mean.Float64
			c.MeanValue = &v
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// queryDecisions returns a game's decisions in turn then bot order.
// An unknown game yields sql.ErrNoRows.
func queryDecisions(ctx context.Context, db *sql.DB, gameID string) ([]Decision, error) {
	rows, err := db.QueryContext(ctx, `SELECT
			turn, bot_id, x, y, diamonds, score, ticks_left,
			target_x, target_y, category, value, move, portal_override
		FROM decisions
		WHERE game_id = ?
		ORDER BY turn, bot_id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		var d Decision
		var value float64
		if err := rows.Scan(&d.Turn, &d.BotID, &d.X, &d.Y, &d.Diamonds, &d.Score, &d.TicksLeft,
			&d.TargetX, &d.TargetY, &d.Category, &value, &d.Move, &d.PortalOverride); err != nil {
			return nil, err
		}
		d.Value = strconv.FormatFloat(value, 'g', -1, 64)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, sql.ErrNoRows
	}
	return out, nil
}
