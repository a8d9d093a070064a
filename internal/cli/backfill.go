package cli

import (
	"time"

	"github.com/runnerr0/ompd/internal/backfill"
	"github.com/runnerr0/ompd/internal/shotdir"
)

// Execute implements the go-flags Commander interface for BackfillCommand.
func (c *BackfillCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	mgr, maker, cat, err := newMaker(cfg)
	if err != nil {
		return err
	}
	if cat != nil {
		defer cat.Close()
	}

	bf := backfill.New(cfg, mgr, maker, shotdir.DateOf(time.Now()))
	return bf.Run()
}
