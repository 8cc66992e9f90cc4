package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brensch/diamonds/logging"
	"github.com/brensch/diamonds/selfplay"
	"github.com/brensch/diamonds/store"
	"github.com/brensch/diamonds/viewer"
)

func main() {
	configPath := flag.String("config", "", "YAML match config; empty uses defaults")
	outDir := flag.String("out-dir", filepath.Join("debug_games"), "Output directory for debug games")
	seed := flag.Int64("seed", 1, "Match seed")
	showBoard := flag.Bool("board", false, "Print the board after every turn")
	verbose := flag.Bool("v", false, "Log every engine decision")
	reportHost := flag.String("report", "http://127.0.0.1:8090", "Report server base URL")
	flag.Parse()

	cfg := selfplay.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = selfplay.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	cfg.Seed = *seed

	var opts []selfplay.MatchOption
	if *verbose {
		opts = append(opts, selfplay.WithLogger(logging.New("compact", logging.ParseLevel("debug"))))
	}

	match, err := selfplay.NewMatch(cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create match: %v", err)
	}

	log.Printf("Generating debug game %s (%dx%d, %d bots, %d ticks, seed %d)", match.ID, cfg.Width, cfg.Height, cfg.Bots, cfg.Ticks, cfg.Seed)

	for {
		turn := match.Board().Turn
		more := match.Step()

		parts := make([]string, 0, len(match.LastMoves()))
		for _, mv := range match.LastMoves() {
			d := mv.Decision
			parts = append(parts, fmt.Sprintf("%s %s→%s %s(%s)", mv.BotID, mv.From, d.Move, d.Winner.Category, strconv.FormatFloat(d.Winner.Score, 'g', 3, 64)))
		}
		fmt.Printf("  Turn %3d | %s\n", turn, strings.Join(parts, ", "))

		if *showBoard {
			fmt.Print(viewer.Render(match.Board()))
		}
		if !more {
			break
		}
	}

	res := match.Result()
	winner := res.Winner
	if res.Draw() {
		winner = "draw"
	}
	log.Printf("Game complete: %d turns, winner: %s, scores: %v", res.Turns, winner, res.Scores)

	parquetPath := filepath.Join(*outDir, res.GameID+".parquet")
	if err := store.WriteDecisionsParquet(parquetPath, match.Rows()); err != nil {
		log.Fatalf("Failed to write debug game: %v", err)
	}
	log.Printf("Debug game written to: %s", parquetPath)

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("  Debug game ready! Decisions at:\n")
	fmt.Printf("  %s/api/games/%s/decisions\n", *reportHost, res.GameID)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
}
