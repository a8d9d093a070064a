package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// writeFakeEncoder writes a stand-in for ffmpeg: it answers the -muxers
// probe with an mp4-only listing and otherwise creates its output file.
func writeFakeEncoder(t *testing.T, dir string) string {
	t.Helper()
	script := `#!/bin/sh
if [ "$1" = "-muxers" ]; then
  echo "  E mp4             MP4 (MPEG-4 Part 14)"
  exit 0
fi
for last; do :; done
printf 'videobytes' > "$last"
`
	path := filepath.Join(dir, "fake-ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// writeTestConfig writes a config file rooted in a temp dir and returns its
// path for use as the --config flag.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	encoder := writeFakeEncoder(t, base)
	body := fmt.Sprintf(`interval_seconds: 20
max_sleep_seconds: 180
shot_dir: %s/shots
video_dir: %s/vids
ffmpeg: `+encoder+`
backfill_on_startup: false
shot_format: png
video_format: mp4
scale_factor: 1.0
capture_day_hours: 9
keep_shot_days: 0
catalog:
  enabled: false
  path: %s/catalog.db
logging:
  level: info
`, base, base, base)

	path := filepath.Join(base, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}
