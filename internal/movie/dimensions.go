package movie

import (
	"log/slog"

	"github.com/runnerr0/ompd/internal/shotdir"
)

// analyzeFrameDimensions picks the target video dimensions: the most common
// frame resolution (which minimizes letterboxing), scaled by the configured
// factor and rounded up to even numbers for the 4:2:0 pixel format. On
// equal counts the lexicographically smaller (width, height) pair wins, so
// the result is deterministic. Empty metadata falls back to the defaults.
func analyzeFrameDimensions(md shotdir.Metadata, scale float64) (int, int) {
	type resolution struct{ w, h int }
	counts := make(map[resolution]int)
	for _, r := range md.Frames {
		counts[resolution{r.Width, r.Height}]++
	}

	best := resolution{shotdir.DefaultFrameWidth, shotdir.DefaultFrameHeight}
	bestCount := 0
	for res, count := range counts {
		if count > bestCount ||
			(count == bestCount && (res.w < best.w || (res.w == best.w && res.h < best.h))) {
			best, bestCount = res, count
		}
	}

	if bestCount > 0 {
		percent := float64(bestCount) / float64(len(md.Frames)) * 100
		slog.Info("most common resolution",
			"width", best.w, "height", best.h, "percent", percent)
	}

	width := roundUpToEven(int(float64(best.w) * scale))
	height := roundUpToEven(int(float64(best.h) * scale))

	slog.Info("target video dimensions", "width", width, "height", height, "scale", scale)
	return width, height
}

func roundUpToEven(n int) int {
	return (n + 1) &^ 1
}
