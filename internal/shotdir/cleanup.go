package shotdir

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// shotDirPattern matches the three-level date layout under a shot root.
var shotDirPattern = filepath.Join("[0-9][0-9][0-9][0-9]", "[0-1][0-9]", "[0-3][0-9]")

// DiscoverShotDirs returns every date-bucketed shot directory under root.
func DiscoverShotDirs(root string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(root, shotDirPattern))
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, m)
	}
	return dirs, nil
}

// CleanupOldShotDirs removes shot directories whose video already exists.
//
// It enumerates all dated directories, excludes today, sorts by date
// descending and skips the first keepCount entries. Each remaining directory
// is deleted only if the matching video artifact exists with non-zero size;
// empty ancestor directories are then pruned up to (never including) the
// shot root.
func (m *Manager) CleanupOldShotDirs(videoExt string, keepCount int, today Date) {
	slog.Info("checking for old shot dirs to clean up", "keep", keepCount)

	dirs, err := DiscoverShotDirs(m.shotRoot)
	if err != nil {
		slog.Warn("failed to enumerate shot directories", "error", err)
		return
	}

	type dated struct {
		date Date
		dir  string
	}
	var candidates []dated
	for _, dir := range dirs {
		date, ok := ParseDateFromDir(dir)
		if !ok || date == today {
			continue
		}
		candidates = append(candidates, dated{date: date, dir: dir})
	}

	// Most recent first.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[j].date.Before(candidates[i].date)
	})

	if keepCount > len(candidates) {
		keepCount = len(candidates)
	}
	for _, c := range candidates[keepCount:] {
		video := m.VideoPath(c.date, videoExt)
		info, err := os.Stat(video)
		switch {
		case err != nil:
			slog.Debug("skipping shot dir, no video", "dir", c.dir, "video", video)
		case info.Size() == 0:
			slog.Debug("skipping shot dir, video file is empty", "dir", c.dir)
		default:
			slog.Info("cleaning up shot dir", "dir", c.dir, "video", video)
			removeShotDir(c.dir, m.shotRoot)
		}
	}
}

// removeShotDir deletes one shot directory and walks upward removing
// now-empty ancestors, stopping at (and never removing) root.
func removeShotDir(dir, root string) {
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("failed to remove shot dir", "dir", dir, "error", err)
		return
	}

	cleanRoot := filepath.Clean(root)
	for parent := filepath.Dir(dir); filepath.Clean(parent) != cleanRoot; parent = filepath.Dir(parent) {
		// os.Remove only succeeds on an empty directory.
		if err := os.Remove(parent); err != nil {
			break
		}
	}
}
