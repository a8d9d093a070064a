package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// RunCommand — start the capture daemon.
type RunCommand struct {
	NoBackfill bool `long:"no-backfill" description:"Skip the startup backfill pass"`

	globals *GlobalFlags
	version string
}

// BackfillCommand — encode past days that have frames but no video.
type BackfillCommand struct {
	globals *GlobalFlags
	version string
}

// MakeMovieCommand — encode one day's frames into a video.
type MakeMovieCommand struct {
	Date string `long:"date" description:"Day to encode, YYYY-MM-DD (default: yesterday)"`

	globals *GlobalFlags
	version string
}

// CleanupCommand — delete old shot directories whose videos exist.
type CleanupCommand struct {
	Keep int `long:"keep" description:"Override keep_shot_days from config"`

	globals *GlobalFlags
	version string
}

// CompressCommand — gzip one day's frames in place.
type CompressCommand struct {
	Date string `long:"date" description:"Day to archive, YYYY-MM-DD" required:"true"`

	globals *GlobalFlags
	version string
}

// DecompressCommand — restore one day's archived frames.
type DecompressCommand struct {
	Date string `long:"date" description:"Day to restore, YYYY-MM-DD" required:"true"`

	globals *GlobalFlags
	version string
}

// StatusCommand — show catalog statistics and the effective configuration.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
