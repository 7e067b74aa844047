package config

import (
	"fmt"
	"strings"
	"time"
)

var validSupportLevels = map[string]struct{}{
	"supported":   {},
	"partial":     {},
	"unsupported": {},
}

var validOverrideCategories = map[string]struct{}{
	"video":     {},
	"audio":     {},
	"container": {},
}

// Validate checks configuration invariants that Load cannot default away.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Probe.Binary) == "" {
		return fmt.Errorf("probe binary must not be empty")
	}
	if c.Scanner.Workers < 0 {
		return fmt.Errorf("scanner workers must not be negative, got %d", c.Scanner.Workers)
	}
	if c.Scanner.SaveEvery < 0 {
		return fmt.Errorf("scanner save_every must not be negative, got %d", c.Scanner.SaveEvery)
	}
	if len(c.Scanner.VideoExtensions) == 0 {
		return fmt.Errorf("scanner video_extensions must not be empty")
	}
	if c.Rating.BitrateThreshold < 0 {
		return fmt.Errorf("rating bitrate_threshold_mbps must not be negative")
	}
	for i, ov := range c.Rating.Overrides {
		level := strings.ToLower(strings.TrimSpace(ov.Level))
		if _, ok := validSupportLevels[level]; !ok {
			return fmt.Errorf("rating override %d: unknown support level %q", i, ov.Level)
		}
		category := strings.ToLower(strings.TrimSpace(ov.Category))
		if _, ok := validOverrideCategories[category]; !ok {
			return fmt.Errorf("rating override %d: unknown category %q", i, ov.Category)
		}
		if strings.TrimSpace(ov.Codec) == "" || strings.TrimSpace(ov.Client) == "" {
			return fmt.Errorf("rating override %d: codec and client are required", i)
		}
	}
	for i, ct := range c.Rating.CodecThresholds {
		if strings.TrimSpace(ct.Codec) == "" {
			return fmt.Errorf("rating codec_thresholds %d: codec is required", i)
		}
		if ct.Optimal < 0 || ct.Good < 0 {
			return fmt.Errorf("rating codec_thresholds %d: thresholds must not be negative", i)
		}
	}
	if spec := strings.TrimSpace(c.Scheduler.ReprocessAfter); spec != "" {
		if _, err := time.ParseDuration(spec); err != nil {
			return fmt.Errorf("scheduler reprocess_after: %w", err)
		}
	}
	return nil
}
