// Command compact merges many small decision batches into fewer large ones.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/brensch/diamonds/store"
)

func main() {
	inDir := flag.String("in-dir", "data/selfplay", "Directory containing decision parquet batches")
	outDir := flag.String("out-dir", "data/compacted", "Output directory for merged batches")
	maxRows := flag.Int("max-rows", 1_000_000, "Maximum rows per output file")
	remove := flag.Bool("remove", false, "Delete the inputs once every output is written")
	flag.Parse()

	stats, err := store.Compact(*inDir, *outDir, *maxRows)
	if err != nil {
		die("compact: %v", err)
	}

	removed := 0
	if *remove {
		for _, p := range stats.Inputs {
			if err := os.Remove(p); err != nil {
				fmt.Fprintf(os.Stderr, "remove %s: %v\n", p, err)
				continue
			}
			removed++
		}
	}

	fmt.Fprintf(os.Stderr, "done: in=%d out=%d rows=%d removed=%d\n", len(stats.Inputs), len(stats.Outputs), stats.Rows, removed)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
