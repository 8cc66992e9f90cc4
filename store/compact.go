package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// CompactStats summarises one Compact run.
type CompactStats struct {
	Inputs  []string
	Outputs []string
	Rows    int
}

// FindParquet returns every .parquet file below root, skipping tmp dirs.
func FindParquet(root string) ([]string, error) {
	var inputs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == "tmp" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".parquet") {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return inputs, nil
}

// Compact merges the decision batches under inDir into files of at most
// maxRows rows in outDir. Inputs are left in place.
func Compact(inDir, outDir string, maxRows int) (CompactStats, error) {
	var stats CompactStats
	if maxRows <= 0 {
		return stats, fmt.Errorf("maxRows must be positive")
	}

	absIn, err := filepath.Abs(inDir)
	if err != nil {
		return stats, fmt.Errorf("abs in-dir: %w", err)
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return stats, fmt.Errorf("abs out-dir: %w", err)
	}
	if absIn == absOut {
		return stats, fmt.Errorf("out-dir must be different from in-dir")
	}

	stats.Inputs, err = FindParquet(absIn)
	if err != nil {
		return stats, err
	}
	if len(stats.Inputs) == 0 {
		return stats, fmt.Errorf("no parquet inputs found in %s", absIn)
	}

	w, err := NewBatchWriter(absOut)
	if err != nil {
		return stats, err
	}
	finalize := func() error {
		path, rows, _, err := w.Finalize()
		if err != nil {
			return err
		}
		if rows > 0 {
			stats.Outputs = append(stats.Outputs, path)
			stats.Rows += rows
		}
		return nil
	}

	buf := make([]DecisionRow, 512)
	for _, inPath := range stats.Inputs {
		err := copyRows(inPath, buf, func(rows []DecisionRow) error {
			for len(rows) > 0 {
				n := min(len(rows), maxRows-w.Rows())
				if err := w.WriteRows(rows[:n]); err != nil {
					return err
				}
				rows = rows[n:]
				if w.Rows() < maxRows {
					continue
				}
				if err := finalize(); err != nil {
					return err
				}
				next, err := NewBatchWriter(absOut)
				if err != nil {
					return err
				}
				w = next
			}
			return nil
		})
		if err != nil {
			_, _, _, _ = w.Finalize()
			return stats, fmt.Errorf("compact %s: %w", inPath, err)
		}
	}
	return stats, finalize()
}

func copyRows(path string, buf []DecisionRow, fn func([]DecisionRow) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := parquet.NewGenericReader[DecisionRow](f)
	defer reader.Close()

	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			if err := fn(buf[:n]); err != nil {
				return err
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}
