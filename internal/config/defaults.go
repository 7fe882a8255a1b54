package config

import "os"

// Default argument strings for the external tools, matching what a plain
// interactive gource session would use for a multi-repo timeline.
const (
	DefaultGourceArgs = "--hide root -a 1 -s 1 -c 4 --key --multi-sampling -1920x1080"
	DefaultFFmpegArgs = "-c:v libx264 -preset ultrafast -crf 1 -bf 0"
	DefaultFramerate  = 60
	DefaultOutput     = "gource.mp4"
)

// applyDefaults fills unset fields after unmarshalling. The token falls back
// to the GITHUB_TOKEN environment variable when the file leaves it empty.
func applyDefaults(cfg *Config) {
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}

	if cfg.Clone.Protocol == "" {
		cfg.Clone.Protocol = ProtocolHTTPS
	}
	if cfg.Clone.Parallel <= 0 {
		cfg.Clone.Parallel = 4
	}
	if cfg.Clone.Depth < 0 {
		cfg.Clone.Depth = 0
	}
	if cfg.Clone.MaxRetries <= 0 {
		cfg.Clone.MaxRetries = 2
	}
	if cfg.Clone.RetryInitialDelay == "" {
		cfg.Clone.RetryInitialDelay = "500ms"
	}
	if cfg.Clone.RetryMaxDelay == "" {
		cfg.Clone.RetryMaxDelay = "10s"
	}
	if cfg.Clone.RetryBackoff == "" {
		cfg.Clone.RetryBackoff = RetryBackoffExponential
	}

	if cfg.Gource.Args == "" {
		cfg.Gource.Args = DefaultGourceArgs
	}
	if cfg.FFmpeg.Args == "" {
		cfg.FFmpeg.Args = DefaultFFmpegArgs
	}
	if cfg.FFmpeg.Framerate <= 0 {
		cfg.FFmpeg.Framerate = DefaultFramerate
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
