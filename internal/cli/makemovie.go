package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/ompd/internal/shotdir"
)

// Execute implements the go-flags Commander interface for MakeMovieCommand.
func (c *MakeMovieCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	date := shotdir.DateOf(time.Now().AddDate(0, 0, -1))
	if c.Date != "" {
		date, err = parseDate(c.Date)
		if err != nil {
			return err
		}
	}

	mgr, maker, cat, err := newMaker(cfg)
	if err != nil {
		return err
	}
	if cat != nil {
		defer cat.Close()
	}

	dir := mgr.DirFor(date)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("no shot directory for %s at %s", date, dir)
	}

	if err := maker.MakeMovieFrom(dir); err != nil {
		return err
	}

	video := mgr.VideoPath(date, cfg.VideoFormat)
	if c.globals != nil && c.globals.JSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"date":  date.String(),
			"video": video,
		})
	}
	fmt.Printf("Encoded %s -> %s\n", date, video)
	return nil
}
