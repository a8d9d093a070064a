package capture

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeGapUnits(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{45 * time.Second, "~ 45 secs go by"},
		{1 * time.Second, "~ 1 sec go by"},
		{60 * time.Second, "~ 60 secs go by"},
		{61 * time.Second, "~ 1 min go by"},
		{5 * time.Minute, "~ 5 mins go by"},
		{time.Hour, "~ 1.0 hr go by"},
		{90 * time.Minute, "~ 1.5 hrs go by"},
		{3 * time.Hour, "~ 3.0 hrs go by"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, describeGap(tc.elapsed), "elapsed %v", tc.elapsed)
	}
}

func TestFillerFrameDimensions(t *testing.T) {
	img, err := fillerFrame(5*time.Minute, 640, 480)
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 640, b.Dx())
	assert.Equal(t, 480, b.Dy())

	// Corners are untouched background.
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 0))

	// Something was drawn near the center.
	found := false
	for y := b.Dy() / 3; y < 2*b.Dy()/3 && !found; y++ {
		for x := 0; x < b.Dx(); x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0 {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "filler text should be drawn")
}

func TestFillerFrameScalesTextDownOnNarrowFrames(t *testing.T) {
	// A tall, very narrow frame forces the 80%-width cap to kick in; the
	// text must stay inside the frame rather than overflow it.
	img, err := fillerFrame(2*time.Hour, 200, 1000)
	require.NoError(t, err)

	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		if r, _, _, _ := img.At(0, y).RGBA(); r > 0 {
			t.Fatalf("text bled into the left edge at y=%d", y)
		}
		if r, _, _, _ := img.At(b.Dx()-1, y).RGBA(); r > 0 {
			t.Fatalf("text bled into the right edge at y=%d", y)
		}
	}
}
