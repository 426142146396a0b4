// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration decodes TOML strings like "30s" into a time.Duration.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler so configs round-trip.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the root configuration structure.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Library LibraryConfig `toml:"library"`
	Tools   ToolsConfig   `toml:"tools"`
	Limits  LimitsConfig  `toml:"limits"`
	Cloud   CloudConfig   `toml:"cloud"`
	Detect  DetectConfig  `toml:"detect"`
	Presets PresetsConfig `toml:"presets"`
	History HistoryConfig `toml:"history"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type LibraryConfig struct {
	Root string `toml:"root"`
}

type ToolsConfig struct {
	FFmpeg    string `toml:"ffmpeg"`
	HandBrake string `toml:"handbrake"`
}

// LimitsConfig caps concurrent invocations per external resource. A
// limit of zero disables the throttle for that resource.
type LimitsConfig struct {
	FFmpeg    int64    `toml:"ffmpeg"`
	GCloud    int64    `toml:"gcloud"`
	HandBrake int64    `toml:"handbrake"`
	Jitter    Duration `toml:"jitter"`
}

type CloudConfig struct {
	// Bucket is the gs:// prefix OCR clips are staged under.
	Bucket  string `toml:"bucket"`
	Project string `toml:"project"`
}

type DetectConfig struct {
	Confidence float64 `toml:"confidence"`
	// GateDir is where manual-input request files are written. Empty
	// means the import directory of the current run.
	GateDir string `toml:"gate_dir"`
}

// PresetRef names a HandBrake preset inside a preset definition file.
type PresetRef struct {
	File string `toml:"file"`
	Name string `toml:"name"`
}

type PresetsConfig struct {
	Standard PresetRef  `toml:"standard"`
	HQ       *PresetRef `toml:"hq"`
	// HQMultipart applies the HQ preset to multi-part titles. Defaults
	// to true when an HQ preset is configured.
	HQMultipart *bool `toml:"hq_multipart"`
	// HQEpisodes is a "season:episode,..." selector of episodes that
	// always get the HQ preset.
	HQEpisodes string `toml:"hq_episodes"`
}

// ShouldHQMultipart reports whether multi-part titles get the HQ preset.
func (p PresetsConfig) ShouldHQMultipart() bool {
	if p.HQMultipart == nil {
		return true
	}
	return *p.HQMultipart
}

type HistoryConfig struct {
	Path string `toml:"path"`
}

// Load reads, substitutes, parses, and defaults the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with every default applied, for runs with no
// config file at all.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if c.Tools.HandBrake == "" {
		c.Tools.HandBrake = "HandBrakeCLI"
	}
	if c.Limits.FFmpeg == 0 {
		c.Limits.FFmpeg = 2
	}
	if c.Limits.GCloud == 0 {
		c.Limits.GCloud = 3
	}
	if c.Limits.HandBrake == 0 {
		c.Limits.HandBrake = 1
	}
	if c.Limits.Jitter == 0 {
		c.Limits.Jitter = Duration(30 * time.Second)
	}
	if c.Detect.Confidence == 0 {
		c.Detect.Confidence = 0.9
	}
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath()
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // leave unchanged if not found
	})
}
