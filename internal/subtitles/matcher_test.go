package subtitles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func TestFindCompanionsEpisode(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"Show S01E01.mkv",
		"Show S01E01.eng.srt",
		"Show S01E01 - Forced.srt",
		"Unrelated.srt",
	)

	got := baseNames(FindCompanions(filepath.Join(dir, "Show S01E01.mkv")))
	want := []string{"Show S01E01.eng.srt", "Show S01E01 - Forced.srt"}
	if len(got) != len(want) {
		t.Fatalf("companions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("companions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNameMatchesRules(t *testing.T) {
	tests := []struct {
		name      string
		video     string
		candidate string
		want      bool
	}{
		{"exact", "Movie (2021)", "movie (2021)", true},
		{"language suffix", "Movie (2021)", "Movie (2021).eng", true},
		{"forced suffix", "Movie (2021)", "Movie (2021).forced", true},
		{"dash separator", "Movie", "Movie - Forced", true},
		{"underscore separator", "Movie", "Movie_en", true},
		{"substring", "S01E01", "Show S01E01 English", true},
		{"normalized dots vs spaces", "Show S01E01", "show.s01e01", true},
		{"normalized with bracket", "Show S01E01", "show.s01e01[sdh]", true},
		{"unrelated", "Show S01E01", "Unrelated", false},
		{"numeric overlap", "video1", "video10", false},
		{"numeric overlap normalized", "video 1", "video10", false},
		{"short name substring gate", "ab", "xxabyy", false},
		{"empty candidate", "Movie", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nameMatches(tt.video, tt.candidate); got != tt.want {
				t.Errorf("nameMatches(%q, %q) = %v, want %v", tt.video, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestFindCompanionsOrdering(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"Movie.mkv",
		"Movie.en.forced.srt",
		"Movie.en.srt",
		"Movie.srt",
		"Movie.de.srt",
	)

	got := baseNames(FindCompanions(filepath.Join(dir, "Movie.mkv")))
	want := []string{"Movie.srt", "Movie.de.srt", "Movie.en.srt", "Movie.en.forced.srt"}
	if len(got) != len(want) {
		t.Fatalf("companions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("companions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindCompanionsIgnoresNonSubtitles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Movie.mkv", "Movie.nfo", "Movie.jpg", "Movie.txt")

	if got := FindCompanions(filepath.Join(dir, "Movie.mkv")); len(got) != 0 {
		t.Errorf("companions = %v, want none", got)
	}
}

func TestFindCompanionsMissingDir(t *testing.T) {
	if got := FindCompanions("/no/such/dir/Movie.mkv"); got != nil {
		t.Errorf("companions = %v, want nil", got)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.srt", "SRT"},
		{"a.SRT", "SRT"},
		{"a.ass", "ASS"},
		{"a.vtt", "VTT"},
		{"a.idx", "VOBSUB"},
		{"a.mkv", ""},
	}
	for _, tt := range tests {
		if got := FormatForPath(tt.path); got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
