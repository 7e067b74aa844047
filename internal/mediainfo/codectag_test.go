package mediainfo

import "testing"

func TestValidateCodecTag(t *testing.T) {
	tests := []struct {
		codec string
		tag   string
		want  bool
	}{
		{"H.265", "hvc1", true},
		{"H.265", "hevc", true},
		{"H.265", "hev1", false},
		{"HEVC", "hev1", false},
		{"H.264", "avc1", true},
		{"H.264", "avc3", true},
		{"H.264", "h264", true},
		{"H.264", "xvid", false},
		{"VP9", "vp09", true},
		{"VP9", "vp90", false},
		{"AV1", "av01", true},
		{"AV1", "av1x", false},
		{"MPEG-2", "anything", true},
		{"", "whatever", true},
	}

	for _, tt := range tests {
		if got := ValidateCodecTag(tt.codec, tt.tag); got != tt.want {
			t.Errorf("ValidateCodecTag(%q, %q) = %v, want %v", tt.codec, tt.tag, got, tt.want)
		}
	}
}
