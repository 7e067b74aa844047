package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.ProbeTimeout() != 5*time.Minute {
		t.Fatalf("unexpected probe timeout: %v", cfg.ProbeTimeout())
	}
	if cfg.ReprocessAfter() != 24*time.Hour {
		t.Fatalf("unexpected reprocess after: %v", cfg.ReprocessAfter())
	}
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reelcheck.toml")
	content := `
[paths]
library_dirs = ["~/movies"]

[probe]
binary = "mediainfo"
timeout_seconds = 10

[scanner]
workers = 4
video_extensions = ["MKV", ".mp4"]

[rating]
enabled_clients = ["Chrome", "Kodi"]

[[rating.overrides]]
codec = "AV1"
client = "Roku"
category = "video"
level = "supported"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config to resolve, got exists=%v path=%q", exists, resolved)
	}
	if cfg.Scanner.Workers != 4 {
		t.Fatalf("expected workers=4, got %d", cfg.Scanner.Workers)
	}
	if cfg.ProbeTimeout() != 10*time.Second {
		t.Fatalf("unexpected probe timeout: %v", cfg.ProbeTimeout())
	}
	// Extensions are normalized to lowercase dotted form.
	if cfg.Scanner.VideoExtensions[0] != ".mkv" {
		t.Fatalf("expected normalized extension, got %q", cfg.Scanner.VideoExtensions[0])
	}
	if len(cfg.Paths.LibraryDirs) != 1 || strings.HasPrefix(cfg.Paths.LibraryDirs[0], "~") {
		t.Fatalf("expected expanded library dir, got %v", cfg.Paths.LibraryDirs)
	}
	// Untouched sections keep defaults.
	if cfg.Scheduler.ReconcileSpec != defaultReconcileSpec {
		t.Fatalf("expected default reconcile spec, got %q", cfg.Scheduler.ReconcileSpec)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Probe.Binary != defaultProbeBinary {
		t.Fatalf("expected default probe binary, got %q", cfg.Probe.Binary)
	}
}

func TestValidateRejectsBadOverride(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) {
			c.Rating.Overrides = []SupportOverride{{Codec: "AV1", Client: "Roku", Category: "video", Level: "maybe"}}
		}},
		{"bad category", func(c *Config) {
			c.Rating.Overrides = []SupportOverride{{Codec: "AV1", Client: "Roku", Category: "subtitle", Level: "partial"}}
		}},
		{"missing client", func(c *Config) {
			c.Rating.Overrides = []SupportOverride{{Codec: "AV1", Category: "video", Level: "partial"}}
		}},
		{"empty probe binary", func(c *Config) { c.Probe.Binary = " " }},
		{"negative workers", func(c *Config) { c.Scanner.Workers = -1 }},
		{"bad reprocess duration", func(c *Config) { c.Scheduler.ReprocessAfter = "soon" }},
		{"codec threshold without codec", func(c *Config) {
			c.Rating.CodecThresholds = []CodecThreshold{{Optimal: 5}}
		}},
		{"negative codec threshold", func(c *Config) {
			c.Rating.CodecThresholds = []CodecThreshold{{Codec: "AV1", Good: -1}}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("expected sample config to load, exists=%v err=%v", exists, err)
	}
}
