package capture

import (
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fillerFontOnce sync.Once
	fillerFont     *opentype.Font
	fillerFontErr  error
)

func loadFillerFont() (*opentype.Font, error) {
	fillerFontOnce.Do(func() {
		fillerFont, fillerFontErr = opentype.Parse(goregular.TTF)
	})
	return fillerFont, fillerFontErr
}

// fillerFrame renders a black frame with the elapsed duration centered in
// white. The text starts at ~20% of frame height and shrinks until it fits
// within 80% of the frame width.
func fillerFrame(elapsed time.Duration, width, height int) (*image.RGBA, error) {
	fnt, err := loadFillerFont()
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)

	text := describeGap(elapsed)

	size := float64(height) / 5
	face, err := newFillerFace(fnt, size)
	if err != nil {
		return nil, err
	}
	textWidth := font.MeasureString(face, text).Ceil()

	if maxWidth := float64(width) * 0.8; float64(textWidth) > maxWidth {
		size *= maxWidth / float64(textWidth)
		face, err = newFillerFace(fnt, size)
		if err != nil {
			return nil, err
		}
		textWidth = font.MeasureString(face, text).Ceil()
	}

	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot: fixed.P(
			(width-textWidth)/2,
			(height-textHeight)/2+metrics.Ascent.Ceil(),
		),
	}
	drawer.DrawString(text)

	return img, nil
}

func newFillerFace(fnt *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("size filler font: %w", err)
	}
	return face, nil
}

// describeGap formats an elapsed duration as human-readable text, choosing
// the unit by magnitude and pluralizing it.
func describeGap(elapsed time.Duration) string {
	secs := elapsed.Seconds()
	switch {
	case secs >= 3600:
		value := secs / 3600
		return fmt.Sprintf("~ %.1f hr%s go by", value, pluralSuffix(value))
	case secs > 60:
		value := secs / 60
		return fmt.Sprintf("~ %.0f min%s go by", value, pluralSuffix(value))
	default:
		return fmt.Sprintf("~ %.0f sec%s go by", secs, pluralSuffix(secs))
	}
}

func pluralSuffix(value float64) string {
	if value > 1 {
		return "s"
	}
	return ""
}
