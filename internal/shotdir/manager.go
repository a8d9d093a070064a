// Package shotdir owns the on-disk model: date-bucketed shot directories,
// the frame metadata sidecar, per-file compression, and retention.
package shotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager maps dates to directories under a shot root and video artifacts
// under a video root.
type Manager struct {
	shotRoot string
	vidRoot  string
}

// NewManager creates both root directories if needed.
func NewManager(shotRoot, vidRoot string) (*Manager, error) {
	if err := os.MkdirAll(shotRoot, 0755); err != nil {
		return nil, fmt.Errorf("create shot root: %w", err)
	}
	if err := os.MkdirAll(vidRoot, 0755); err != nil {
		return nil, fmt.Errorf("create video root: %w", err)
	}
	return &Manager{shotRoot: shotRoot, vidRoot: vidRoot}, nil
}

// ShotRoot returns the root directory holding dated shot directories.
func (m *Manager) ShotRoot() string { return m.shotRoot }

// VidRoot returns the directory holding video artifacts.
func (m *Manager) VidRoot() string { return m.vidRoot }

// DirFor returns the shot directory path for a date without creating it.
func (m *Manager) DirFor(d Date) string {
	return DirForDate(m.shotRoot, d)
}

// EnsureDir creates (idempotently) and returns the shot directory for a date.
func (m *Manager) EnsureDir(d Date) (string, error) {
	dir := m.DirFor(d)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create shot directory %s: %w", dir, err)
	}
	return dir, nil
}

// VideoPath returns the video artifact path for a date.
func (m *Manager) VideoPath(d Date, videoExt string) string {
	return filepath.Join(m.vidRoot, d.VideoName(videoExt))
}

// listFrameFiles returns the non-symlink frame files in dir matching the
// format's extension, sorted by filename. Zero-padded names make the sort
// numeric.
func listFrameFiles(dir string, format ImageFormat) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	suffix := "." + format.Ext()
	var names []string
	for _, e := range entries {
		if e.Type()&os.ModeSymlink != 0 {
			continue
		}
		if e.IsDir() || filepath.Ext(e.Name()) != suffix {
			continue
		}
		names = append(names, e.Name())
	}
	// os.ReadDir sorts by filename already; names inherits that order.
	return names, nil
}
