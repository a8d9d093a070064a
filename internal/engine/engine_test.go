package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/ompd/internal/capture"
	"github.com/runnerr0/ompd/internal/config"
	"github.com/runnerr0/ompd/internal/movie"
	"github.com/runnerr0/ompd/internal/shotdir"
)

type fakeScreen struct {
	failing bool
}

func (f fakeScreen) Capture() (image.Image, error) {
	if f.failing {
		return nil, errors.New("no displays")
	}
	return image.NewRGBA(image.Rect(0, 0, 320, 240)), nil
}

func setupEngine(t *testing.T, screen capture.Screenshotter) (*Engine, *config.Config, *shotdir.Manager) {
	t.Helper()
	base := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.IntervalSeconds = 1
	cfg.ShotDir = filepath.Join(base, "shots")
	cfg.VideoDir = filepath.Join(base, "vids")
	cfg.FFmpeg = fakeEncoder(t)
	cfg.BackfillOnStartup = false
	cfg.Catalog.Enabled = false

	mgr, err := shotdir.NewManager(cfg.ShotDir, cfg.VideoDir)
	require.NoError(t, err)
	maker, err := movie.NewMaker(cfg, mgr, nil)
	require.NoError(t, err)
	capturer := capture.New(cfg.Interval(), shotdir.FormatPNG, screen)

	return New(cfg, mgr, capturer, maker), cfg, mgr
}

func fakeEncoder(t *testing.T) string {
	t.Helper()
	script := "#!/bin/sh\nfor last; do :; done\nprintf 'videobytes' > \"$last\"\n"
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestRunCapturesUntilCancelled(t *testing.T) {
	eng, _, mgr := setupEngine(t, fakeScreen{})

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	require.NoError(t, eng.Run(ctx))

	dir := mgr.DirFor(shotdir.DateOf(time.Now()))
	assert.FileExists(t, filepath.Join(dir, shotdir.FrameName(0, shotdir.FormatPNG)))
	assert.FileExists(t, filepath.Join(dir, shotdir.FrameName(1, shotdir.FormatPNG)))
	assert.FileExists(t, filepath.Join(dir, shotdir.MetadataFile))
}

func TestRunKeepsTickingWhenCaptureFails(t *testing.T) {
	eng, _, mgr := setupEngine(t, fakeScreen{failing: true})

	ctx, cancel := context.WithTimeout(context.Background(), 1200*time.Millisecond)
	defer cancel()

	require.NoError(t, eng.Run(ctx), "capture failures are not fatal")

	dir := mgr.DirFor(shotdir.DateOf(time.Now()))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no frames written while the screen is unavailable")
}

func TestRunResumesFromExistingFrames(t *testing.T) {
	eng, _, mgr := setupEngine(t, fakeScreen{})

	dir, err := mgr.EnsureDir(shotdir.DateOf(time.Now()))
	require.NoError(t, err)
	for n := 0; n < 3; n++ {
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, shotdir.FrameName(n, shotdir.FormatPNG)), []byte("old"), 0644))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, eng.Run(ctx))

	assert.FileExists(t, filepath.Join(dir, shotdir.FrameName(3, shotdir.FormatPNG)),
		"capture continues after the frames already on disk")
}

func TestRunBackfillsOnStartup(t *testing.T) {
	eng, cfg, mgr := setupEngine(t, fakeScreen{})
	cfg.BackfillOnStartup = true

	yesterday := shotdir.DateOf(time.Now().AddDate(0, 0, -1))
	dir, err := mgr.EnsureDir(yesterday)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, shotdir.FrameName(0, shotdir.FormatPNG)), pngBytes(t), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 1200*time.Millisecond)
	defer cancel()
	require.NoError(t, eng.Run(ctx))

	assert.FileExists(t, mgr.VideoPath(yesterday, "mp4"))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, shotdir.FormatPNG.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 320, 240))))
	return buf.Bytes()
}

func TestSuperviseReportsFailures(t *testing.T) {
	eng, _, _ := setupEngine(t, fakeScreen{})

	eng.supervise("boom", func() error { return errors.New("task broke") })

	select {
	case te := <-eng.taskErrs:
		assert.Equal(t, "boom", te.name)
		assert.EqualError(t, te.err, "task broke")
	case <-time.After(2 * time.Second):
		t.Fatal("no task error reported")
	}
}

func TestSuperviseCatchesPanics(t *testing.T) {
	eng, _, _ := setupEngine(t, fakeScreen{})

	eng.supervise("panicky", func() error { panic("kaboom") })

	select {
	case te := <-eng.taskErrs:
		assert.Contains(t, te.err.Error(), "kaboom")
	case <-time.After(2 * time.Second):
		t.Fatal("no task error reported")
	}
}
