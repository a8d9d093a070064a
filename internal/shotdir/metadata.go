package shotdir

import (
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MetadataFile is the sidecar filename inside every shot directory.
const MetadataFile = "frame_metadata.csv"

// Dimension floor below which a frame was almost certainly captured wrong
// (e.g. a collapsed lock-screen buffer).
const (
	minSaneWidth  = 860
	minSaneHeight = 360
)

// Default dimensions used when no metadata row exists to consult.
const (
	DefaultFrameWidth  = 3420
	DefaultFrameHeight = 2224
)

// ErrNoFrames is returned when a directory holds no frame files of the
// expected format.
var ErrNoFrames = errors.New("no frames found")

// FrameRecord is one row of the metadata sidecar.
type FrameRecord struct {
	Frame  int
	Width  int
	Height int
}

// Metadata is the ordered frame records of one shot directory.
type Metadata struct {
	Frames []FrameRecord
}

// Last returns the most recent record, if any.
func (m Metadata) Last() (FrameRecord, bool) {
	if len(m.Frames) == 0 {
		return FrameRecord{}, false
	}
	return m.Frames[len(m.Frames)-1], true
}

// GenerateMetadata scans the frame files in dir (non-symlink, matching
// format, sorted by filename), decodes each file's dimensions, writes the
// sidecar, and returns the result. Returns ErrNoFrames if dir has no
// matching files.
func GenerateMetadata(dir string, format ImageFormat) (Metadata, error) {
	names, err := listFrameFiles(dir, format)
	if err != nil {
		return Metadata{}, err
	}
	if len(names) == 0 {
		return Metadata{}, fmt.Errorf("%w in %s with extension .%s", ErrNoFrames, dir, format.Ext())
	}

	slog.Info("generating metadata", "dir", dir, "frames", len(names))

	var md Metadata
	for _, name := range names {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		frame, err := strconv.Atoi(stem)
		if err != nil {
			continue
		}
		w, h, err := imageDimensions(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("failed to read frame dimensions", "file", name, "error", err)
			continue
		}
		md.Frames = append(md.Frames, FrameRecord{Frame: frame, Width: w, Height: h})
	}

	if err := writeMetadataCSV(filepath.Join(dir, MetadataFile), md); err != nil {
		return Metadata{}, err
	}

	warnOnSmallFrames(md)
	return md, nil
}

// imageDimensions decodes only the header of an image file.
func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func warnOnSmallFrames(md Metadata) {
	if len(md.Frames) == 0 {
		return
	}
	minW, minH := md.Frames[0].Width, md.Frames[0].Height
	maxW, maxH := minW, minH
	for _, r := range md.Frames[1:] {
		minW, maxW = min(minW, r.Width), max(maxW, r.Width)
		minH, maxH = min(minH, r.Height), max(maxH, r.Height)
	}
	if minW < minSaneWidth || minH < minSaneHeight {
		slog.Error("unusually small frame dimensions detected", "width", minW, "height", minH)
	}
	slog.Info("detected dimension range",
		"min", fmt.Sprintf("%dx%d", minW, minH),
		"max", fmt.Sprintf("%dx%d", maxW, maxH))
}

func writeMetadataCSV(path string, md Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metadata sidecar: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "width", "height"}); err != nil {
		return fmt.Errorf("write metadata header: %w", err)
	}
	for _, r := range md.Frames {
		row := []string{strconv.Itoa(r.Frame), strconv.Itoa(r.Width), strconv.Itoa(r.Height)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write metadata row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadMetadataCSV parses an existing sidecar file. Rows that fail to parse
// are skipped.
func ReadMetadataCSV(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("open metadata sidecar: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	rows, err := r.ReadAll()
	if err != nil {
		return Metadata{}, fmt.Errorf("parse metadata sidecar: %w", err)
	}

	var md Metadata
	for i, row := range rows {
		if i == 0 && row[0] == "frame" {
			continue
		}
		frame, err1 := strconv.Atoi(row[0])
		width, err2 := strconv.Atoi(row[1])
		height, err3 := strconv.Atoi(row[2])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		md.Frames = append(md.Frames, FrameRecord{Frame: frame, Width: width, Height: height})
	}
	return md, nil
}

// GetOrGenerateMetadata prefers an existing sidecar, decompressing it first
// if only the compressed form exists, and regenerates from the frame files
// otherwise.
func GetOrGenerateMetadata(dir string, format ImageFormat) (Metadata, error) {
	csvPath := filepath.Join(dir, MetadataFile)

	if _, err := os.Stat(csvPath); os.IsNotExist(err) {
		if _, err := os.Stat(csvPath + CompressedExt); err == nil {
			if err := decompressFile(csvPath + CompressedExt); err != nil {
				return Metadata{}, fmt.Errorf("decompress metadata sidecar: %w", err)
			}
		}
	}

	if _, err := os.Stat(csvPath); err == nil {
		return ReadMetadataCSV(csvPath)
	}
	return GenerateMetadata(dir, format)
}

// AppendRecord appends one row to the sidecar, creating it (with header)
// when absent. Capture treats failures here as non-fatal.
func AppendRecord(dir string, rec FrameRecord) error {
	csvPath := filepath.Join(dir, MetadataFile)
	_, statErr := os.Stat(csvPath)
	needsHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(csvPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open metadata sidecar: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needsHeader {
		if err := w.Write([]string{"frame", "width", "height"}); err != nil {
			return fmt.Errorf("write metadata header: %w", err)
		}
	}
	row := []string{strconv.Itoa(rec.Frame), strconv.Itoa(rec.Width), strconv.Itoa(rec.Height)}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write metadata row: %w", err)
	}
	w.Flush()
	return w.Error()
}
