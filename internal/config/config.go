package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	LibraryDirs []string `toml:"library_dirs"`
	DataDir     string   `toml:"data_dir"`
	LogDir      string   `toml:"log_dir"`
	APIBind     string   `toml:"api_bind"`
}

// Probe contains configuration for the external media metadata tool.
type Probe struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Scanner contains configuration for scan orchestration.
type Scanner struct {
	// Workers caps the per-scan worker pool. 0 means min(GOMAXPROCS, 8).
	Workers int `toml:"workers"`
	// SaveEvery controls how often (in files) scan progress is persisted.
	SaveEvery int `toml:"save_every"`
	// ResultTimeoutSeconds bounds the wait for a per-file result write.
	ResultTimeoutSeconds int      `toml:"result_timeout_seconds"`
	VideoExtensions      []string `toml:"video_extensions"`
}

// SupportOverride replaces a support-matrix entry for one codec/client pair.
// Category is one of "video", "audio", or "container".
type SupportOverride struct {
	Codec    string `toml:"codec"`
	Client   string `toml:"client"`
	Category string `toml:"category"`
	Level    string `toml:"level"`
}

// CodecThreshold pins the label cutoffs for one codec key. Codec may be
// bit-depth qualified ("H.265 10-bit"); a bare codec name also covers
// its qualified variants unless a more specific entry exists.
type CodecThreshold struct {
	Codec   string `toml:"codec"`
	Optimal int    `toml:"optimal"`
	Good    int    `toml:"good"`
}

// Rating contains knobs for the compatibility rating engine.
type Rating struct {
	// EnabledClients restricts evaluation to these clients. Empty means
	// every client in the support matrix.
	EnabledClients []string          `toml:"enabled_clients"`
	Overrides      []SupportOverride `toml:"overrides"`

	// Global threshold overrides. 0 means use per-codec computed defaults.
	OptimalThreshold int `toml:"optimal_threshold"`
	GoodThreshold    int `toml:"good_threshold"`
	// CodecThresholds take precedence over both the computed defaults
	// and the global overrides for the codecs they name.
	CodecThresholds []CodecThreshold `toml:"codec_thresholds"`

	// Score penalties applied when deriving the 0-100 report score.
	PenaltyUnsupported int     `toml:"penalty_unsupported"`
	PenaltyHDR         int     `toml:"penalty_hdr"`
	PenaltySurround    int     `toml:"penalty_surround"`
	PenaltyHighBitrate int     `toml:"penalty_high_bitrate"`
	PenaltyNoFastStart int     `toml:"penalty_no_fast_start"`
	BitrateThreshold   float64 `toml:"bitrate_threshold_mbps"`
}

// Watch contains configuration for the library filesystem watcher.
type Watch struct {
	Enabled         bool `toml:"enabled"`
	DebounceSeconds int  `toml:"debounce_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	ScanComplete   bool   `toml:"scan_complete"`
	Errors         bool   `toml:"errors"`
}

// Scheduler contains cron specs for background maintenance.
type Scheduler struct {
	// ReconcileSpec schedules the sweep that requeues analyses stuck in
	// the processing state. Empty disables the sweep.
	ReconcileSpec string `toml:"reconcile_spec"`
	// ReprocessAfter is how long an analysis may sit in processing before
	// the sweep considers it stuck.
	ReprocessAfter string `toml:"reprocess_after"`
	// RetentionSpec schedules log pruning. Empty disables it.
	RetentionSpec string `toml:"retention_spec"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for reelcheck.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Probe         Probe         `toml:"probe"`
	Scanner       Scanner       `toml:"scanner"`
	Rating        Rating        `toml:"rating"`
	Watch         Watch         `toml:"watch"`
	Notifications Notifications `toml:"notifications"`
	Scheduler     Scheduler     `toml:"scheduler"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelcheck/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("reelcheck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	for i, dir := range c.Paths.LibraryDirs {
		expanded, err := expandPath(dir)
		if err != nil {
			return err
		}
		c.Paths.LibraryDirs[i] = expanded
	}
	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	for i, ext := range c.Scanner.VideoExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Scanner.VideoExtensions[i] = ext
	}
	return nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ProbeTimeout returns the per-file probe budget as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	if c.Probe.TimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Probe.TimeoutSeconds) * time.Second
}

// ResultTimeout returns the per-file result-write budget as a duration.
func (c *Config) ResultTimeout() time.Duration {
	if c.Scanner.ResultTimeoutSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Scanner.ResultTimeoutSeconds) * time.Second
}

// ReprocessAfter returns the stuck-analysis age threshold as a duration.
func (c *Config) ReprocessAfter() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Scheduler.ReprocessAfter))
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// VideoExtensionSet returns the configured extensions as a lookup set.
func (c *Config) VideoExtensionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Scanner.VideoExtensions))
	for _, ext := range c.Scanner.VideoExtensions {
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
