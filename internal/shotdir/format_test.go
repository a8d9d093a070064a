package shotdir

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalWebP is a 1x1 lossy webp: RIFF/WEBP header plus the smallest valid
// VP8 key frame.
var minimalWebP = []byte{
	'R', 'I', 'F', 'F', 0x24, 0x00, 0x00, 0x00,
	'W', 'E', 'B', 'P', 'V', 'P', '8', ' ',
	0x18, 0x00, 0x00, 0x00,
	0x30, 0x01, 0x00, 0x9d, 0x01, 0x2a, 0x01, 0x00, 0x01, 0x00,
	0x02, 0x00, 0x34, 0x25, 0xa4, 0x00, 0x03, 0x70, 0x00, 0xfe,
	0xfb, 0xfd, 0x50, 0x00,
}

func TestParseImageFormat(t *testing.T) {
	for _, valid := range []string{"png", "jpeg", "jpg", "webp"} {
		f, err := ParseImageFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, f.Ext())
	}

	for _, invalid := range []string{"", "gif", "bmp", "PNG"} {
		_, err := ParseImageFormat(invalid)
		assert.Error(t, err, "format %q", invalid)
	}
}

func TestWebPIsDecodeOnly(t *testing.T) {
	assert.True(t, FormatPNG.CanEncode())
	assert.True(t, FormatJPEG.CanEncode())
	assert.True(t, FormatJPG.CanEncode())
	assert.False(t, FormatWebP.CanEncode())

	var buf bytes.Buffer
	err := FormatWebP.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.ErrorContains(t, err, "decode-only")
	assert.Zero(t, buf.Len())
}

func TestGenerateMetadataReadsWebPFrames(t *testing.T) {
	dir := t.TempDir()
	for n := 0; n < 2; n++ {
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, FrameName(n, FormatWebP)), minimalWebP, 0644))
	}

	md, err := GenerateMetadata(dir, FormatWebP)
	require.NoError(t, err)
	require.Len(t, md.Frames, 2)
	assert.Equal(t, FrameRecord{Frame: 0, Width: 1, Height: 1}, md.Frames[0])
	assert.Equal(t, FrameRecord{Frame: 1, Width: 1, Height: 1}, md.Frames[1])

	// The sidecar lands on disk like any other format's.
	assert.FileExists(t, filepath.Join(dir, MetadataFile))
}

func TestWebPFramesAreEnumerable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, FrameName(0, FormatWebP)), minimalWebP, 0644))
	// A png in the same directory is not a webp frame.
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, FrameName(1, FormatPNG)), []byte("x"), 0644))

	names, err := listFrameFiles(dir, FormatWebP)
	require.NoError(t, err)
	assert.Equal(t, []string{"00000.webp"}, names)
}
