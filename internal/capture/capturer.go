// Package capture drives the per-tick capture state machine: storing frames,
// classifying time gaps, and repairing blackouts with filler frames.
package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/runnerr0/ompd/internal/shotdir"
)

// ErrFrameExists means the next frame slot is already occupied. The counter
// is monotonic, so this is a broken invariant, not a recoverable condition.
var ErrFrameExists = errors.New("frame file already exists")

// ChangeType classifies a large tick-to-tick gap.
type ChangeType int

const (
	// Nop: same calendar day; the gap was a blackout and has been repaired.
	Nop ChangeType = iota
	// NewDay: the calendar date advanced; the caller seals the old
	// directory and starts a fresh one.
	NewDay
)

// Screenshotter is the platform screenshot collaborator. Capture re-resolves
// the target display on every call and returns an error when no usable
// display is available (headless, lock screen).
type Screenshotter interface {
	Capture() (image.Image, error)
}

// Capturer owns the frame counter for the directory currently being
// captured into. It is driven by a single goroutine.
type Capturer struct {
	interval time.Duration
	format   shotdir.ImageFormat
	screen   Screenshotter

	frame int
}

// New returns a Capturer with its counter at zero.
func New(interval time.Duration, format shotdir.ImageFormat, screen Screenshotter) *Capturer {
	return &Capturer{interval: interval, format: format, screen: screen}
}

// CurrentFrame returns the next frame index to be written.
func (c *Capturer) CurrentFrame() int { return c.frame }

// SetCurrentFrame resets the counter, used at day rollover.
func (c *Capturer) SetCurrentFrame(n int) { c.frame = n }

// DiscoverCurrentFrame recovers the counter after a restart by counting the
// frame files already in dir (symlinked fillers included — they occupy
// indices too). On failure the counter resets to zero.
func (c *Capturer) DiscoverCurrentFrame(dir string) {
	count, err := countFrames(dir, c.format)
	if err != nil {
		slog.Error("issue counting existing frames", "dir", dir, "error", err)
		c.frame = 0
		return
	}
	slog.Debug("found existing frames", "dir", dir, "count", count)
	c.frame = count
}

func countFrames(dir string, format shotdir.ImageFormat) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	suffix := "." + format.Ext()
	count := 0
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == suffix {
			count++
		}
	}
	return count, nil
}

// CaptureScreen grabs one still of the primary display. Failures are
// transient: the caller sleeps one interval and tries again.
func (c *Capturer) CaptureScreen() (image.Image, error) {
	return c.screen.Capture()
}

// Store writes img as the next frame in dir and appends its metadata row.
// A pre-existing file at the target path is a fatal invariant violation.
// A metadata append failure is logged and otherwise ignored.
func (c *Capturer) Store(img image.Image, dir string) error {
	path := filepath.Join(dir, shotdir.FrameName(c.frame, c.format))

	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrFrameExists, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	if err := c.format.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close frame file: %w", err)
	}

	b := img.Bounds()
	rec := shotdir.FrameRecord{Frame: c.frame, Width: b.Dx(), Height: b.Dy()}
	if err := shotdir.AppendRecord(dir, rec); err != nil {
		slog.Warn("failed to append frame metadata", "frame", c.frame, "error", err)
	}

	c.frame++
	return nil
}

// DealWithChange classifies a gap larger than the configured maximum. A
// calendar-date change is a day rollover and is the caller's to handle; a
// same-day gap is a blackout and is repaired in place.
func (c *Capturer) DealWithChange(dir string, prevTime, currTime time.Time) (ChangeType, error) {
	if shotdir.DateOf(currTime) != shotdir.DateOf(prevTime) {
		return NewDay, nil
	}
	if err := c.dealWithBlackout(dir, currTime.Sub(prevTime)); err != nil {
		return Nop, err
	}
	return Nop, nil
}

// dealWithBlackout renders one filler frame for the gap and fills the
// remaining missed slots with symlinks to it, then advances the counter by
// floor(elapsed/interval).
func (c *Capturer) dealWithBlackout(dir string, elapsed time.Duration) error {
	elapsedSecs := int64(elapsed.Seconds())
	slog.Info("looks like we've been away for a while", "seconds", elapsedSecs)

	width, height := c.currentDimensions(dir)
	img, err := fillerFrame(elapsed, width, height)
	if err != nil {
		return fmt.Errorf("render filler frame: %w", err)
	}

	fillerName := shotdir.FrameName(c.frame, c.format)
	fillerPath := filepath.Join(dir, fillerName)
	slog.Info("creating filler frame", "path", fillerPath, "width", width, "height", height)

	f, err := os.Create(fillerPath)
	if err != nil {
		return fmt.Errorf("create filler frame: %w", err)
	}
	if err := c.format.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode filler frame: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close filler frame: %w", err)
	}

	missed := int(elapsedSecs / int64(c.interval.Seconds()))
	slog.Debug("filling missed frames", "count", missed)
	for n := 1; n < missed; n++ {
		link := filepath.Join(dir, shotdir.FrameName(c.frame+n, c.format))
		// Same-directory relative link, so the directory stays relocatable.
		if err := os.Symlink(fillerName, link); err != nil {
			return fmt.Errorf("link filler frame %d: %w", c.frame+n, err)
		}
	}

	c.frame += missed
	return nil
}

// currentDimensions sizes filler frames from the most recent metadata row,
// falling back to the documented defaults when none exists.
func (c *Capturer) currentDimensions(dir string) (int, int) {
	csvPath := filepath.Join(dir, shotdir.MetadataFile)
	if _, err := os.Stat(csvPath); err == nil {
		if md, err := shotdir.ReadMetadataCSV(csvPath); err == nil {
			if last, ok := md.Last(); ok {
				return last.Width, last.Height
			}
		}
	}
	return shotdir.DefaultFrameWidth, shotdir.DefaultFrameHeight
}
