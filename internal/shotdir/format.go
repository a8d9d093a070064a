package shotdir

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/webp" // dimension probing of webp archives
)

// ImageFormat is the still-image format used for captured frames. It is
// constructed once from config and threaded through explicitly; nothing
// re-derives it from filenames.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
	FormatJPG  ImageFormat = "jpg"
	// FormatWebP is read-only: directories written by older builds decode
	// fine for metadata, encoding and backfill, but new frames cannot be
	// encoded to it.
	FormatWebP ImageFormat = "webp"
)

// ParseImageFormat validates a configured shot format. webp is accepted for
// working with existing directories only; capture additionally requires
// CanEncode.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch ImageFormat(s) {
	case FormatPNG, FormatJPEG, FormatJPG, FormatWebP:
		return ImageFormat(s), nil
	}
	return "", fmt.Errorf("invalid shot format %q, pick from: png, jpeg, jpg, webp", s)
}

// Ext returns the file extension without a leading dot.
func (f ImageFormat) Ext() string { return string(f) }

// CanEncode reports whether new frames can be written in the format.
func (f ImageFormat) CanEncode() bool { return f != FormatWebP }

// Encode writes img to w in the receiver format.
func (f ImageFormat) Encode(w io.Writer, img image.Image) error {
	switch f {
	case FormatJPEG, FormatJPG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case FormatWebP:
		return fmt.Errorf("webp is decode-only, cannot encode new frames")
	default:
		return png.Encode(w, img)
	}
}

// FrameName returns the zero-padded filename for frame index n,
// e.g. "00042.png".
func FrameName(n int, f ImageFormat) string {
	return fmt.Sprintf("%05d.%s", n, f.Ext())
}
