package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// PrimaryDisplay captures the display containing the desktop origin. The
// display set is re-resolved on every call, so switching between an external
// monitor and a laptop panel mid-run is tolerated.
type PrimaryDisplay struct{}

// Capture implements Screenshotter.
func (PrimaryDisplay) Capture() (image.Image, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}

	idx := 0
	for i := 0; i < n; i++ {
		if (image.Point{}).In(screenshot.GetDisplayBounds(i)) {
			idx = i
			break
		}
	}

	bounds := screenshot.GetDisplayBounds(idx)
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("display %d reports no usable area", idx)
	}

	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", idx, err)
	}
	return img, nil
}
