package config

import (
	"fmt"
	"strings"

	"github.com/vmunix/tvingest/pkg/episode"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if c.Detect.Confidence < 0 || c.Detect.Confidence > 1 {
		errs = append(errs, fmt.Sprintf("detect.confidence: must be between 0 and 1, got %g", c.Detect.Confidence))
	}

	if c.Cloud.Bucket != "" && !strings.HasPrefix(c.Cloud.Bucket, "gs://") {
		errs = append(errs, fmt.Sprintf("cloud.bucket: must start with gs://, got %q", c.Cloud.Bucket))
	}

	for name, limit := range map[string]int64{
		"limits.ffmpeg":    c.Limits.FFmpeg,
		"limits.gcloud":    c.Limits.GCloud,
		"limits.handbrake": c.Limits.HandBrake,
	} {
		if limit < 0 {
			errs = append(errs, fmt.Sprintf("%s: must not be negative, got %d", name, limit))
		}
	}

	if c.Presets.HQ != nil {
		if c.Presets.HQ.File == "" {
			errs = append(errs, "presets.hq.file: required when hq is configured")
		}
		if c.Presets.HQ.Name == "" {
			errs = append(errs, "presets.hq.name: required when hq is configured")
		}
	}
	if c.Presets.HQEpisodes != "" {
		if _, err := episode.ParseSelector(c.Presets.HQEpisodes); err != nil {
			errs = append(errs, fmt.Sprintf("presets.hq_episodes: %v", err))
		}
	}

	return errs
}
