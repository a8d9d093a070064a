package cli

import (
	"fmt"
	"time"

	"github.com/runnerr0/ompd/internal/shotdir"
)

// Execute implements the go-flags Commander interface for CleanupCommand.
func (c *CleanupCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	keep := cfg.KeepShotDays
	if c.Keep > 0 {
		keep = c.Keep
	}
	if keep <= 0 {
		return fmt.Errorf("retention is disabled: set keep_shot_days in the config or pass --keep")
	}

	mgr, err := shotdir.NewManager(cfg.ShotDir, cfg.VideoDir)
	if err != nil {
		return err
	}

	mgr.CleanupOldShotDirs(cfg.VideoFormat, keep, shotdir.DateOf(time.Now()))
	return nil
}
