// Package backfill reconciles shot directories with existing videos at
// startup: any past day that has frames but no video gets encoded, so days
// the encoder missed (crash, shutdown mid-day) are not lost.
package backfill

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/runnerr0/ompd/internal/config"
	"github.com/runnerr0/ompd/internal/movie"
	"github.com/runnerr0/ompd/internal/shotdir"
)

// BackFiller drives the reconciliation pass.
type BackFiller struct {
	cfg   *config.Config
	mgr   *shotdir.Manager
	maker *movie.Maker
	today shotdir.Date
}

// New builds a BackFiller. Today's directory is always excluded: it is
// still being written to.
func New(cfg *config.Config, mgr *shotdir.Manager, maker *movie.Maker, today shotdir.Date) *BackFiller {
	return &BackFiller{cfg: cfg, mgr: mgr, maker: maker, today: today}
}

// Run finds every dated shot directory without a corresponding video and
// encodes them oldest first. A failed encode is logged and skipped so one
// bad day can't block the rest; enumeration failures abort the whole pass.
func (b *BackFiller) Run() error {
	done, err := b.discoverVideos()
	if err != nil {
		return err
	}
	done[b.today] = true

	candidates, err := b.discoverShots()
	if err != nil {
		return err
	}

	var pending []shotdir.Date
	for date := range candidates {
		if !done[date] {
			pending = append(pending, date)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Before(pending[j]) })

	if len(pending) == 0 {
		slog.Info("backfill: nothing to do")
		return nil
	}
	slog.Info("backfill: found days without videos", "count", len(pending))

	format, err := b.cfg.Format()
	if err != nil {
		return err
	}

	for _, date := range pending {
		dir := b.mgr.DirFor(date)
		slog.Info("backfilling", "date", date, "dir", dir)

		if _, err := os.Stat(filepath.Join(dir, shotdir.MetadataFile)); os.IsNotExist(err) {
			if _, err := shotdir.GenerateMetadata(dir, format); err != nil {
				slog.Warn("backfill: metadata generation failed, encoder will use defaults",
					"date", date, "error", err)
			}
		}
		if err := b.maker.MakeMovieFrom(dir); err != nil {
			slog.Warn("backfill: encode failed, skipping day", "date", date, "error", err)
		}
	}

	if b.cfg.KeepShotDays > 0 {
		b.mgr.CleanupOldShotDirs(b.cfg.VideoFormat, b.cfg.KeepShotDays, b.today)
	}
	return nil
}

// discoverVideos maps the dates that already have a video file.
func (b *BackFiller) discoverVideos() (map[shotdir.Date]bool, error) {
	pattern := filepath.Join(b.mgr.VidRoot(),
		"ompd-[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]."+b.cfg.VideoFormat)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("enumerate videos: %w", err)
	}

	dates := make(map[shotdir.Date]bool, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if date, ok := shotdir.ParseVideoName(filepath.Base(path), b.cfg.VideoFormat); ok {
			dates[date] = true
		}
	}
	return dates, nil
}

// discoverShots maps the dates that have a shot directory.
func (b *BackFiller) discoverShots() (map[shotdir.Date]bool, error) {
	dirs, err := shotdir.DiscoverShotDirs(b.mgr.ShotRoot())
	if err != nil {
		return nil, fmt.Errorf("enumerate shot dirs: %w", err)
	}

	dates := make(map[shotdir.Date]bool, len(dirs))
	for _, dir := range dirs {
		if date, ok := shotdir.ParseDateFromDir(dir); ok {
			dates[date] = true
		}
	}
	return dates, nil
}
