package movie

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/runnerr0/ompd/internal/shotdir"
)

// fixMissingFrames makes the frame indices in dir contiguous from 0, which
// the encoder's sequential-filename input mode requires. A missing index 0
// is filled by duplicating the earliest frame; any later gap is filled by
// copying the immediately preceding index. Re-running on an already
// contiguous directory is a no-op.
func fixMissingFrames(dir string, format shotdir.ImageFormat) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	suffix := "." + format.Ext()
	maxIndex := -1
	var earliest string
	for _, e := range entries {
		if e.Type()&os.ModeSymlink != 0 || e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != suffix {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(name, suffix))
		if err != nil {
			continue
		}
		if earliest == "" {
			earliest = name // ReadDir is sorted; first match is earliest
		}
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	if maxIndex < 0 {
		return fmt.Errorf("%w in %s", shotdir.ErrNoFrames, dir)
	}

	first := filepath.Join(dir, shotdir.FrameName(0, format))
	if _, err := os.Lstat(first); os.IsNotExist(err) {
		slog.Debug("frame 0 missing, duplicating earliest frame", "earliest", earliest)
		if err := copyFile(filepath.Join(dir, earliest), first); err != nil {
			return fmt.Errorf("fill frame 0: %w", err)
		}
	}

	for i := 1; i <= maxIndex; i++ {
		path := filepath.Join(dir, shotdir.FrameName(i, format))
		if _, err := os.Lstat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat frame %d: %w", i, err)
		}
		prev := filepath.Join(dir, shotdir.FrameName(i-1, format))
		slog.Info("missing frame, copying predecessor into place", "frame", i)
		if err := copyFile(prev, path); err != nil {
			return fmt.Errorf("fill frame %d: %w", i, err)
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
