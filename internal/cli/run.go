package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/ompd/internal/capture"
	"github.com/runnerr0/ompd/internal/engine"
)

// Execute implements the go-flags Commander interface for RunCommand.
func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	if c.NoBackfill {
		cfg.BackfillOnStartup = false
	}

	format, err := cfg.Format()
	if err != nil {
		return err
	}
	if !format.CanEncode() {
		return fmt.Errorf("shot format %q is decode-only and cannot be captured to; use png or jpeg", format)
	}

	mgr, maker, cat, err := newMaker(cfg)
	if err != nil {
		return err
	}
	if cat != nil {
		defer cat.Close()
	}

	capturer := capture.New(cfg.Interval(), format, capture.PrimaryDisplay{})
	eng := engine.New(cfg, mgr, capturer, maker)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("ompd starting", "version", c.version,
		"shot_dir", cfg.ShotDir, "video_dir", cfg.VideoDir)

	if err := eng.Run(ctx); err != nil {
		return fmt.Errorf("capture loop: %w", err)
	}
	return nil
}
