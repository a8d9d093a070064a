package backfill

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/ompd/internal/config"
	"github.com/runnerr0/ompd/internal/movie"
	"github.com/runnerr0/ompd/internal/shotdir"
)

func day(d int) shotdir.Date {
	return shotdir.Date{Year: 2024, Month: time.March, Day: d}
}

func setupBackfill(t *testing.T) (*config.Config, *shotdir.Manager) {
	t.Helper()
	base := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ShotDir = filepath.Join(base, "shots")
	cfg.VideoDir = filepath.Join(base, "vids")
	cfg.FFmpeg = countingEncoder(t, filepath.Join(base, "calls.log"))

	mgr, err := shotdir.NewManager(cfg.ShotDir, cfg.VideoDir)
	require.NoError(t, err)
	return cfg, mgr
}

// countingEncoder stands in for ffmpeg: it appends its output path to a log
// file and creates the output so the run looks successful.
func countingEncoder(t *testing.T, logPath string) string {
	t.Helper()
	script := "#!/bin/sh\n" +
		"for last; do :; done\n" +
		"echo \"$last\" >> " + logPath + "\n" +
		"printf 'videobytes' > \"$last\"\n"
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func seedShots(t *testing.T, mgr *shotdir.Manager, d shotdir.Date) {
	t.Helper()
	dir, err := mgr.EnsureDir(d)
	require.NoError(t, err)
	f, err := os.Create(filepath.Join(dir, shotdir.FrameName(0, shotdir.FormatPNG)))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 320, 240))))
}

func seedVideo(t *testing.T, mgr *shotdir.Manager, d shotdir.Date) {
	t.Helper()
	require.NoError(t, os.WriteFile(mgr.VideoPath(d, "mp4"), []byte("existing"), 0644))
}

func encodedDates(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	logPath := filepath.Join(filepath.Dir(cfg.ShotDir), "calls.log")
	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var dates []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if d, ok := shotdir.ParseVideoName(filepath.Base(line), "mp4"); ok {
			dates = append(dates, d.String())
		}
	}
	return dates
}

func newBackFiller(t *testing.T, cfg *config.Config, mgr *shotdir.Manager, today shotdir.Date) *BackFiller {
	t.Helper()
	maker, err := movie.NewMaker(cfg, mgr, nil)
	require.NoError(t, err)
	return New(cfg, mgr, maker, today)
}

func TestRunEncodesOnlyDaysWithoutVideos(t *testing.T) {
	cfg, mgr := setupBackfill(t)

	for d := 1; d <= 5; d++ {
		seedShots(t, mgr, day(d))
	}
	seedVideo(t, mgr, day(3))
	seedVideo(t, mgr, day(4))

	bf := newBackFiller(t, cfg, mgr, day(5))
	require.NoError(t, bf.Run())

	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, encodedDates(t, cfg),
		"ascending order; days 3-4 done, day 5 is today")

	assert.FileExists(t, mgr.VideoPath(day(1), "mp4"))
	assert.FileExists(t, mgr.VideoPath(day(2), "mp4"))
	_, err := os.Stat(mgr.VideoPath(day(5), "mp4"))
	assert.True(t, os.IsNotExist(err), "today is never backfilled")
}

func TestRunWithNothingPending(t *testing.T) {
	cfg, mgr := setupBackfill(t)

	seedShots(t, mgr, day(1))
	seedVideo(t, mgr, day(1))

	bf := newBackFiller(t, cfg, mgr, day(2))
	require.NoError(t, bf.Run())
	assert.Empty(t, encodedDates(t, cfg))
}

func TestRunOnEmptyRoots(t *testing.T) {
	cfg, mgr := setupBackfill(t)

	bf := newBackFiller(t, cfg, mgr, day(1))
	require.NoError(t, bf.Run())
}

func TestRunGeneratesMissingMetadata(t *testing.T) {
	cfg, mgr := setupBackfill(t)

	seedShots(t, mgr, day(1))
	dir := mgr.DirFor(day(1))
	_, err := os.Stat(filepath.Join(dir, shotdir.MetadataFile))
	require.True(t, os.IsNotExist(err))

	bf := newBackFiller(t, cfg, mgr, day(2))
	require.NoError(t, bf.Run())

	assert.FileExists(t, filepath.Join(dir, shotdir.MetadataFile))
}

func TestRunSkipsFailedDayAndContinues(t *testing.T) {
	cfg, mgr := setupBackfill(t)

	// Day 1's directory exists but holds no frames; the encode fails and
	// the pass moves on to day 2.
	_, err := mgr.EnsureDir(day(1))
	require.NoError(t, err)
	seedShots(t, mgr, day(2))

	bf := newBackFiller(t, cfg, mgr, day(3))
	require.NoError(t, bf.Run())

	assert.Equal(t, []string{"2024-03-02"}, encodedDates(t, cfg))
}

func TestRunIgnoresForeignVideoFiles(t *testing.T) {
	cfg, mgr := setupBackfill(t)

	seedShots(t, mgr, day(1))
	require.NoError(t, os.WriteFile(
		filepath.Join(mgr.VidRoot(), "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(
		filepath.Join(mgr.VidRoot(), "holiday-2024-03-01.mp4"), []byte("x"), 0644))

	bf := newBackFiller(t, cfg, mgr, day(2))
	require.NoError(t, bf.Run())

	assert.Equal(t, []string{"2024-03-01"}, encodedDates(t, cfg),
		"unrelated files in the video dir don't mark a day as done")
}
