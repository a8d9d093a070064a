// Package movie assembles a sealed shot directory into one daily video:
// repair frame gaps, pick target dimensions, run the encoder, sweep
// retention.
package movie

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/ompd/internal/catalog"
	"github.com/runnerr0/ompd/internal/config"
	"github.com/runnerr0/ompd/internal/shotdir"
)

// Names of the encoder log files written into the source shot directory.
const (
	stdoutLog = "ffmpeg-stdout.log"
	stderrLog = "ffmpeg-stderr.log"
)

// Maker turns a day's shot directory into a video artifact.
type Maker struct {
	cfg    *config.Config
	mgr    *shotdir.Manager
	format shotdir.ImageFormat
	cat    *catalog.Store // optional; nil disables journaling
}

// NewMaker builds a Maker. The catalog store may be nil.
func NewMaker(cfg *config.Config, mgr *shotdir.Manager, cat *catalog.Store) (*Maker, error) {
	format, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	return &Maker{cfg: cfg, mgr: mgr, format: format, cat: cat}, nil
}

// HasMuxer asks the encoder for its supported containers and fails when the
// requested extension is absent.
func HasMuxer(ffmpeg, extension string) error {
	slog.Debug("asking encoder for its muxers", "ffmpeg", ffmpeg)

	out, err := exec.Command(ffmpeg, "-muxers").Output()
	if err != nil {
		return fmt.Errorf("ask %s for muxers: %w", ffmpeg, err)
	}

	needle := " " + extension
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, needle) {
			return nil
		}
	}
	return fmt.Errorf("invalid video type, %s doesn't know how to make %q files", ffmpeg, extension)
}

// MakeMovieFrom assembles the video for one shot directory. The directory is
// decompressed if a previous run archived it, repaired to a contiguous frame
// sequence, encoded, and — on success, when retention is configured — the
// retention sweep runs.
func (m *Maker) MakeMovieFrom(dir string) error {
	if shotdir.HasCompressedFiles(dir) {
		slog.Info("decompressing archived shot dir before encode", "dir", dir)
		if err := shotdir.Decompress(dir); err != nil {
			return fmt.Errorf("decompress %s: %w", dir, err)
		}
	}

	if err := fixMissingFrames(dir, m.format); err != nil {
		return err
	}

	md, err := shotdir.GetOrGenerateMetadata(dir, m.format)
	if err != nil {
		slog.Warn("failed to get metadata, using default dimensions", "dir", dir, "error", err)
		md = shotdir.Metadata{}
	}
	width, height := analyzeFrameDimensions(md, m.cfg.ScaleFactor)

	date, ok := shotdir.ParseDateFromDir(dir)
	if !ok {
		return fmt.Errorf("%s is not a dated shot directory", dir)
	}
	outputFile := m.mgr.VideoPath(date, m.cfg.VideoFormat)

	args := m.buildEncoderArgs(dir, outputFile, width, height)
	slog.Debug("running encoder", "ffmpeg", m.cfg.FFmpeg, "args", strings.Join(args, " "))

	cmd := exec.Command(m.cfg.FFmpeg, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	// Persist encoder output no matter what.
	if err := os.WriteFile(filepath.Join(dir, stdoutLog), stdout.Bytes(), 0644); err != nil {
		slog.Warn("couldn't write encoder stdout log", "error", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stderrLog), stderr.Bytes(), 0644); err != nil {
		slog.Warn("couldn't write encoder stderr log", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("encoder failed for %s: %s", dir, lastNonEmptyLine(stderr.String()))
	}

	m.journal(date, outputFile, md, width, height)

	if m.cfg.KeepShotDays > 0 {
		m.mgr.CleanupOldShotDirs(m.cfg.VideoFormat, m.cfg.KeepShotDays, shotdir.DateOf(time.Now()))
	}

	slog.Info("all done", "dir", dir, "video", outputFile)
	return nil
}

// journal records the encode in the catalog; failures are logged only.
func (m *Maker) journal(date shotdir.Date, outputFile string, md shotdir.Metadata, width, height int) {
	if m.cat == nil {
		return
	}
	err := m.cat.RecordMovie(context.Background(), &catalog.Movie{
		Date:       date.String(),
		Path:       outputFile,
		FrameCount: len(md.Frames),
		Width:      width,
		Height:     height,
	})
	if err != nil {
		slog.Warn("failed to journal movie", "date", date, "error", err)
	}
}

// buildEncoderArgs constructs the encoder invocation: fixed frame rate,
// sequential zero-padded input, scale-then-pad to the target box (black
// fill, so mixed-resolution days come out undistorted), 4:2:0 pixel format,
// unconditional overwrite.
func (m *Maker) buildEncoderArgs(inputDir, outputFile string, targetW, targetH int) []string {
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		targetW, targetH, targetW, targetH,
	)

	return []string{
		"-r", strconv.Itoa(m.cfg.FrameRate()),
		"-i", filepath.Join(inputDir, "%05d."+m.format.Ext()),
		"-vf", filter,
		"-pix_fmt", "yuv420p",
		"-y",
		outputFile,
	}
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return "(no stderr)"
}
