// Package testsupport provides shared helpers for package tests:
// temp-directory configs, opened stores, and stub media files.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reelcheck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	library := filepath.Join(base, "library")
	if err := os.MkdirAll(library, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}
	cfgVal.Paths.LibraryDirs = []string{library}
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers caps the scanner worker pool on the test config.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scanner.Workers = n
	}
}

// WithSaveEvery sets the progress checkpoint interval.
func WithSaveEvery(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scanner.SaveEvery = n
	}
}

// WithProbeStub writes a stub probe executable that prints the given
// XML on stdout and points the config at it.
func WithProbeStub(xml string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "mediainfo-stub")
		script := "#!/bin/sh\ncat <<'XML'\n" + xml + "\nXML\n"
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write probe stub: %v", err)
		}
		b.cfg.Probe.Binary = target
	}
}

// LibraryDir returns the first configured library directory.
func LibraryDir(t testing.TB, cfg *config.Config) string {
	t.Helper()
	if len(cfg.Paths.LibraryDirs) == 0 {
		t.Fatal("config has no library directory")
	}
	return cfg.Paths.LibraryDirs[0]
}

// WriteVideoFile creates a small placeholder video file under dir and
// returns its path.
func WriteVideoFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("placeholder media payload"), 0o644); err != nil {
		t.Fatalf("write video file: %v", err)
	}
	return path
}
