package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/runnerr0/ompd/internal/catalog"
	"github.com/runnerr0/ompd/internal/config"
	"github.com/runnerr0/ompd/internal/movie"
	"github.com/runnerr0/ompd/internal/shotdir"
)

// loadConfig loads the config from --config if given, the default path
// otherwise (creating it on first run), and installs the logger.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	path := config.DefaultConfigPath
	if globals != nil && globals.Config != "" {
		path = globals.Config
	}

	cfg, err := config.LoadOrCreateAt(path)
	if err != nil {
		return nil, err
	}

	initLogging(cfg, globals != nil && globals.Verbose)
	return cfg, nil
}

// initLogging sets the process-wide logger. --verbose wins over the
// configured level.
func initLogging(cfg *config.Config, verbose bool) {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// openCatalog opens the movie catalog when enabled; a nil store simply
// disables journaling downstream.
func openCatalog(cfg *config.Config) (*catalog.Store, error) {
	if !cfg.Catalog.Enabled {
		return nil, nil
	}
	store, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, nil
}

// newMaker builds the manager/maker pair every encoding command needs.
// The caller owns closing the returned catalog store (which may be nil).
func newMaker(cfg *config.Config) (*shotdir.Manager, *movie.Maker, *catalog.Store, error) {
	// Fail now rather than after frame repair, at encode time.
	if err := movie.HasMuxer(cfg.FFmpeg, cfg.VideoFormat); err != nil {
		return nil, nil, nil, err
	}

	mgr, err := shotdir.NewManager(cfg.ShotDir, cfg.VideoDir)
	if err != nil {
		return nil, nil, nil, err
	}

	cat, err := openCatalog(cfg)
	if err != nil {
		slog.Warn("catalog unavailable, movies won't be journaled", "error", err)
		cat = nil
	}

	maker, err := movie.NewMaker(cfg, mgr, cat)
	if err != nil {
		if cat != nil {
			cat.Close()
		}
		return nil, nil, nil, err
	}
	return mgr, maker, cat, nil
}

// parseDate parses a YYYY-MM-DD command line argument.
func parseDate(s string) (shotdir.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return shotdir.Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return shotdir.DateOf(t), nil
}
