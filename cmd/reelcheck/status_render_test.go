package main

import (
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("Running", statusOK, "yes", false)
	if !strings.Contains(line, "Running:") || !strings.Contains(line, "[OK] yes") {
		t.Errorf("unexpected line: %q", line)
	}
	if strings.Contains(line, ansiGreen) {
		t.Error("colorize off should not emit ANSI codes")
	}

	colored := renderStatusLine("Running", statusOK, "yes", true)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, ansiReset) {
		t.Errorf("expected green wrapping: %q", colored)
	}
}

func TestLabelStatusKind(t *testing.T) {
	cases := []struct {
		label  string
		broken bool
		want   statusKind
	}{
		{"Optimal", false, statusOK},
		{"Good", false, statusInfo},
		{"Poor", false, statusWarn},
		{"Optimal", true, statusError},
		{"", false, statusInfo},
	}
	for _, tc := range cases {
		if got := labelStatusKind(tc.label, tc.broken); got != tc.want {
			t.Errorf("labelStatusKind(%q, %v) = %d, want %d", tc.label, tc.broken, got, tc.want)
		}
	}
}

func TestClientDisplayName(t *testing.T) {
	cases := map[string]string{
		"ios":       "iOS",
		"androidtv": "Android TV",
		"appletv":   "Apple TV",
		"chrome":    "Chrome",
		"kodi":      "Kodi",
	}
	for in, want := range cases {
		if got := clientDisplayName(in); got != want {
			t.Errorf("clientDisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tc := range cases {
		if got := formatSize(tc.bytes); got != tc.want {
			t.Errorf("formatSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}
