package mediainfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// writeStubBinary creates an executable shell script standing in for the
// probe tool.
func writeStubBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub binaries require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "mediainfo-stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeMediaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.mkv")
	if err := os.WriteFile(path, []byte("not really video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbeSuccess(t *testing.T) {
	binary := writeStubBinary(t, `cat <<'XML'
<?xml version="1.0"?>
<MediaInfo>
  <media>
    <track type="General"><Format>Matroska</Format><Duration>60000</Duration></track>
    <track type="Video"><Format>AVC</Format><Width>1280</Width><Height>720</Height></track>
  </media>
</MediaInfo>
XML`)
	path := writeMediaFile(t)

	prober := NewProber(binary, time.Minute, nil)
	props, err := prober.Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if props.VideoCodec != "H.264" || props.DurationSeconds != 60 {
		t.Errorf("props = %+v", props)
	}
	if props.SizeBytes == 0 {
		t.Error("size should come from the file stat")
	}
}

func TestProbeErrorKinds(t *testing.T) {
	path := writeMediaFile(t)

	tests := []struct {
		name   string
		binary string
		path   string
		want   ErrorKind
	}{
		{
			name:   "missing file",
			binary: writeStubBinary(t, "exit 0"),
			path:   filepath.Join(t.TempDir(), "gone.mkv"),
			want:   KindFileMissing,
		},
		{
			name:   "binary not found",
			binary: filepath.Join(t.TempDir(), "no-such-tool"),
			path:   path,
			want:   KindUnavailable,
		},
		{
			name:   "tool exits non-zero",
			binary: writeStubBinary(t, "echo 'boom' >&2; exit 3"),
			path:   path,
			want:   KindFailed,
		},
		{
			name:   "garbage output",
			binary: writeStubBinary(t, "echo 'not xml at all'"),
			path:   path,
			want:   KindMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := NewProber(tt.binary, time.Minute, nil)
			_, err := prober.Probe(context.Background(), tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *ProbeError
			if !errors.As(err, &pe) {
				t.Fatalf("error is %T, want *ProbeError", err)
			}
			if pe.Kind != tt.want {
				t.Errorf("kind = %s, want %s", pe.Kind, tt.want)
			}
		})
	}
}

func TestProbeTimeout(t *testing.T) {
	binary := writeStubBinary(t, "sleep 10")
	path := writeMediaFile(t)

	prober := NewProber(binary, 50*time.Millisecond, nil)
	_, err := prober.Probe(context.Background(), path)
	if KindOf(err) != KindTimeout {
		t.Errorf("kind = %s, want %s", KindOf(err), KindTimeout)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindFailed {
		t.Errorf("KindOf = %s, want %s", got, KindFailed)
	}
}
