package config

// DefaultConfig returns a Config populated with all default values. A
// 20-second interval over a ~9-hour screen day yields roughly one minute of
// video at the derived frame rate.
func DefaultConfig() *Config {
	return &Config{
		IntervalSeconds:   20,
		MaxSleepSeconds:   180,
		ShotDir:           "~/ompd/shots",
		VideoDir:          "~/ompd/videos",
		FFmpeg:            "ffmpeg",
		BackfillOnStartup: true,
		ShotFormat:        "png",
		VideoFormat:       "mp4",
		ScaleFactor:       1.0,
		CaptureDayHours:   9,
		KeepShotDays:      0,
		Catalog: CatalogConfig{
			Enabled: true,
			Path:    "~/ompd/catalog.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
