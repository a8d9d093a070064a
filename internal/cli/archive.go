package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/ompd/internal/shotdir"
)

// Execute implements the go-flags Commander interface for CompressCommand.
func (c *CompressCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	date, err := parseDate(c.Date)
	if err != nil {
		return err
	}
	if date == shotdir.DateOf(time.Now()) {
		return fmt.Errorf("refusing to compress today's directory while it may still be capturing")
	}

	format, err := cfg.Format()
	if err != nil {
		return err
	}

	mgr, err := shotdir.NewManager(cfg.ShotDir, cfg.VideoDir)
	if err != nil {
		return err
	}

	dir := mgr.DirFor(date)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("no shot directory for %s at %s", date, dir)
	}

	if err := shotdir.Compress(dir, format); err != nil {
		return err
	}
	fmt.Printf("Compressed %s\n", dir)
	return nil
}

// Execute implements the go-flags Commander interface for DecompressCommand.
func (c *DecompressCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	date, err := parseDate(c.Date)
	if err != nil {
		return err
	}

	mgr, err := shotdir.NewManager(cfg.ShotDir, cfg.VideoDir)
	if err != nil {
		return err
	}

	dir := mgr.DirFor(date)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("no shot directory for %s at %s", date, dir)
	}

	if err := shotdir.Decompress(dir); err != nil {
		return err
	}
	fmt.Printf("Decompressed %s\n", dir)
	return nil
}
