package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/ompd/internal/catalog"
	"github.com/runnerr0/ompd/internal/config"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version        string `json:"version"`
	ShotDir        string `json:"shot_dir"`
	VideoDir       string `json:"video_dir"`
	IntervalSecs   int    `json:"interval_seconds"`
	FrameRate      int    `json:"frame_rate"`
	CatalogEnabled bool   `json:"catalog_enabled"`
	TotalMovies    int64  `json:"total_movies"`
	TotalFrames    int64  `json:"total_frames"`
	LatestDate     string `json:"latest_date,omitempty"`
	LatestPath     string `json:"latest_path,omitempty"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	cat, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	if cat != nil {
		defer cat.Close()
	}

	return c.executeWithStore(cfg, cat)
}

// executeWithStore runs status against a provided config and store (for testing).
func (c *StatusCommand) executeWithStore(cfg *config.Config, cat *catalog.Store) error {
	stats := &catalog.Stats{}
	if cat != nil {
		var err error
		stats, err = cat.GetStats(context.Background())
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
	}

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(cfg, cat != nil, stats)
	}
	return c.printStatusHuman(cfg, cat != nil, stats)
}

func (c *StatusCommand) printStatusHuman(cfg *config.Config, catalogEnabled bool, stats *catalog.Stats) error {
	fmt.Println("ompd Status")
	fmt.Println("===========")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Shot dir:      %s\n", cfg.ShotDir)
	fmt.Printf("Video dir:     %s\n", cfg.VideoDir)
	fmt.Printf("Interval:      %s\n", cfg.Interval())
	fmt.Printf("Frame rate:    %d fps\n", cfg.FrameRate())
	if cfg.KeepShotDays > 0 {
		fmt.Printf("Retention:     keep %d days of frames\n", cfg.KeepShotDays)
	} else {
		fmt.Println("Retention:     disabled")
	}

	fmt.Println()
	if !catalogEnabled {
		fmt.Println("Catalog:       disabled")
		return nil
	}
	fmt.Printf("Movies:        %d\n", stats.TotalMovies)
	fmt.Printf("Frames:        %d\n", stats.TotalFrames)
	if stats.LatestDate != "" {
		fmt.Printf("Latest:        %s (%s)\n", stats.LatestDate, stats.LatestPath)
	}
	return nil
}

func (c *StatusCommand) printStatusJSON(cfg *config.Config, catalogEnabled bool, stats *catalog.Stats) error {
	out := statusJSON{
		Version:        c.version,
		ShotDir:        cfg.ShotDir,
		VideoDir:       cfg.VideoDir,
		IntervalSecs:   cfg.IntervalSeconds,
		FrameRate:      cfg.FrameRate(),
		CatalogEnabled: catalogEnabled,
		TotalMovies:    stats.TotalMovies,
		TotalFrames:    stats.TotalFrames,
		LatestDate:     stats.LatestDate,
		LatestPath:     stats.LatestPath,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
