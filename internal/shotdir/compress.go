package shotdir

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// CompressedExt is the suffix of a compressed sibling file.
const CompressedExt = ".gz"

// Compress replaces each non-symlink frame file (plus the metadata sidecar)
// with a gzip sibling and removes the original. Each file is processed
// independently: a failure on one is logged and the rest continue.
func Compress(dir string, format ImageFormat) error {
	names, err := listFrameFiles(dir, format)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, MetadataFile)); err == nil {
		names = append(names, MetadataFile)
	}

	for _, name := range names {
		if err := compressFile(filepath.Join(dir, name)); err != nil {
			slog.Warn("failed to compress file", "file", name, "error", err)
		}
	}
	return nil
}

// Decompress is the inverse of Compress: every .gz file in dir is restored
// and the compressed sibling removed. Best-effort per file.
func Decompress(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), CompressedExt) {
			continue
		}
		if err := decompressFile(filepath.Join(dir, e.Name())); err != nil {
			slog.Warn("failed to decompress file", "file", e.Name(), "error", err)
		}
	}
	return nil
}

// HasCompressedFiles reports whether dir holds any compressed siblings.
func HasCompressedFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), CompressedExt) {
			return true
		}
	}
	return false
}

func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + CompressedExt)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(dst)
	if _, err := io.Copy(zw, src); err != nil {
		dst.Close()
		os.Remove(path + CompressedExt)
		return err
	}
	if err := zw.Close(); err != nil {
		dst.Close()
		os.Remove(path + CompressedExt)
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

func decompressFile(gzPath string) error {
	src, err := os.Open(gzPath)
	if err != nil {
		return err
	}
	defer src.Close()

	zr, err := gzip.NewReader(src)
	if err != nil {
		return err
	}
	defer zr.Close()

	outPath := strings.TrimSuffix(gzPath, CompressedExt)
	dst, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, zr); err != nil {
		dst.Close()
		os.Remove(outPath)
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(gzPath)
}
