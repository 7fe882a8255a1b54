// Package config loads and validates the application configuration from a
// YAML file, with environment expansion and .env support.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	GitHub      GitHubConfig `yaml:"github"`
	DataDir     string       `yaml:"data_dir"`
	Output      string       `yaml:"output"`
	Clone       CloneConfig  `yaml:"clone"`
	Include     []string     `yaml:"include"`
	IncludeFile string       `yaml:"include_file"`
	Gource      GourceConfig `yaml:"gource"`
	FFmpeg      FFmpegConfig `yaml:"ffmpeg"`
	Log         LogConfig    `yaml:"log"`
}

// GitHubConfig holds API credentials for the repository listing.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// Clone protocols.
const (
	ProtocolHTTPS = "https"
	ProtocolSSH   = "ssh"
)

// CloneConfig controls how repositories are cloned and updated.
type CloneConfig struct {
	Protocol          string           `yaml:"protocol"` // "https" or "ssh"
	Parallel          int              `yaml:"parallel"`
	Depth             int              `yaml:"depth"` // 0 = full history
	Skip              bool             `yaml:"skip"`
	MaxRetries        int              `yaml:"max_retries"`
	RetryInitialDelay string           `yaml:"retry_initial_delay"`
	RetryMaxDelay     string           `yaml:"retry_max_delay"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff"`
}

// GourceConfig holds arguments passed to the gource render invocation.
type GourceConfig struct {
	Args string `yaml:"args"`
}

// FFmpegConfig holds arguments for the video encoder stage.
type FFmpegConfig struct {
	Args      string `yaml:"args"`
	Framerate int    `yaml:"framerate"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Load loads configuration from the specified file. The raw file content is
// passed through os.ExpandEnv before unmarshalling, so values like
// ${GITHUB_TOKEN} resolve against the process environment (including
// variables supplied by a .env file).
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	// Strict decoding: a misspelled key should fail load, not silently
	// fall back to a default. An empty file decodes to EOF and is fine.
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadIfPresent behaves like Load but returns a default configuration when
// the file does not exist. Flags and environment variables can then drive a
// run without any config file on disk.
func LoadIfPresent(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		loadEnvFile()
		cfg := &Config{}
		applyDefaults(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(configPath)
}

// Validate checks enumerated fields and numeric ranges. Include rules are
// deliberately not validated here; the selector engine reports malformed
// rules with their line positions.
func (c *Config) Validate() error {
	switch c.Clone.Protocol {
	case ProtocolHTTPS, ProtocolSSH:
	default:
		return fmt.Errorf("invalid clone.protocol %q (want https or ssh)", c.Clone.Protocol)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q (want text or json)", c.Log.Format)
	}
	if c.Clone.Parallel < 1 {
		return fmt.Errorf("clone.parallel must be at least 1, got %d", c.Clone.Parallel)
	}
	if c.Clone.Depth < 0 {
		return fmt.Errorf("clone.depth cannot be negative, got %d", c.Clone.Depth)
	}
	if c.FFmpeg.Framerate < 1 {
		return fmt.Errorf("ffmpeg.framerate must be at least 1, got %d", c.FFmpeg.Framerate)
	}
	if c.Clone.RetryBackoff != "" && NormalizeRetryBackoff(string(c.Clone.RetryBackoff)) == "" {
		return fmt.Errorf("invalid clone.retry_backoff %q (want fixed, linear or exponential)", c.Clone.RetryBackoff)
	}
	return nil
}

// starterConfig is the commented scaffold written by Init. Comments survive
// because the file is written literally rather than marshalled.
const starterConfig = `# gourcers configuration
github:
  # Personal access token with repo read scope. Expanded from the
  # environment, so a .env file with GITHUB_TOKEN=... also works.
  token: ${GITHUB_TOKEN}

# Where clones and generated logs live. Leave empty to use a throwaway
# temporary directory (the render command will ask for confirmation).
data_dir: ""

# Rendered video path.
output: gource.mp4

clone:
  protocol: https   # https or ssh
  parallel: 4
  depth: 0          # 0 keeps full history; gource needs it for real timelines
  skip: false

# Include rules, applied in order; the last matching rule wins and
# unmatched repositories stay excluded.
include:
  - "owner:YOUR_LOGIN"
  - "!is_fork:true"

# Optional file with one rule per line ('#' comments allowed).
include_file: ""

gource:
  args: "--hide root -a 1 -s 1 -c 4 --key --multi-sampling -1920x1080"

ffmpeg:
  args: "-c:v libx264 -preset ultrafast -crf 1 -bf 0"
  framerate: 60

log:
  level: info   # debug|info|warn|error
  format: text  # text|json
`

// Init writes a commented starter configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
