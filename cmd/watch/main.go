// Command watch plays one local match in the terminal.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/diamonds/selfplay"
	"github.com/brensch/diamonds/viewer"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configPath := fs.String("config", "", "YAML match config; empty uses defaults")
	interval := fs.Duration("interval", 200*time.Millisecond, "Delay between rounds")
	seed := fs.Int64("seed", 0, "Overrides the config seed when non-zero")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	cfg := selfplay.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = selfplay.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	match, err := selfplay.NewMatch(cfg)
	if err != nil {
		log.Fatalf("Failed to create match: %v", err)
	}

	if _, err := tea.NewProgram(viewer.New(match, *interval), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}

	res := match.Result()
	ids := make([]string, 0, len(res.Scores))
	for id := range res.Scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("Game %s after %d turns\n", res.GameID, res.Turns)
	for _, id := range ids {
		fmt.Printf("  bot %s: %d\n", id, res.Scores[id])
	}
	if res.Draw() {
		fmt.Println("  draw")
	} else {
		fmt.Printf("  winner: bot %s\n", res.Winner)
	}
}
