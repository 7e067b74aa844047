package rating

import (
	"reflect"
	"testing"

	"reelcheck/internal/config"
	"reelcheck/internal/mediainfo"
)

func hevcMKV() mediainfo.Properties {
	return mediainfo.Properties{
		Path:            "/library/movie.mkv",
		SizeBytes:       4 << 30,
		DurationSeconds: 5400,
		Container:       "MKV",
		VideoCodec:      "H.265",
		BitDepth:        10,
		Width:           3840,
		Height:          2160,
		CodecTagCorrect: true,
		AudioTracks: []mediainfo.AudioTrack{
			{Codec: "EAC3", Channels: 6},
		},
	}
}

func TestEvaluateHEVCInMKV(t *testing.T) {
	engine := NewEngine(nil, config.Rating{
		EnabledClients: []string{"chrome", "ios", "kodi"},
	})

	result := engine.Evaluate(hevcMKV())

	want := map[string]PlayMethod{
		"ios":    Transcode,
		"chrome": Remux,
		"kodi":   DirectPlay,
	}
	for client, method := range want {
		got, ok := result.Clients[client]
		if !ok {
			t.Fatalf("client %s missing from result", client)
		}
		if got.Method != method {
			t.Errorf("%s method = %s, want %s", client, got.Method, method)
		}
	}
	if result.Rating != 1 {
		t.Errorf("rating = %d, want 1 (kodi only)", result.Rating)
	}
	if result.DirectPlayCount != 1 || result.RemuxCount != 1 || result.TranscodeCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1",
			result.DirectPlayCount, result.RemuxCount, result.TranscodeCount)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	engine := NewEngine(nil, config.Rating{})
	props := hevcMKV()
	props.HDR = true
	props.HDRFormat = "HDR10"
	props.SubtitleTracks = []mediainfo.SubtitleTrack{
		{Format: "PGS", Embedded: true},
	}

	first := engine.Evaluate(props)
	second := engine.Evaluate(props)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different results")
	}
}

func TestWorsenIsMonotonic(t *testing.T) {
	methods := []PlayMethod{DirectPlay, Remux, Transcode}
	for _, current := range methods {
		for _, next := range methods {
			got := worsen(current, next)
			if methodRank[got] < methodRank[current] {
				t.Errorf("worsen(%s, %s) = %s improved the disposition", current, next, got)
			}
			if methodRank[got] < methodRank[next] && methodRank[next] > methodRank[current] {
				t.Errorf("worsen(%s, %s) = %s did not apply the worse method", current, next, got)
			}
		}
	}
}

func TestEvaluateDirectPlayBaseline(t *testing.T) {
	engine := NewEngine(nil, config.Rating{})
	props := mediainfo.Properties{
		Container:       "MP4",
		VideoCodec:      "H.264",
		BitDepth:        8,
		CodecTagCorrect: true,
		FastStart:       true,
		AudioTracks:     []mediainfo.AudioTrack{{Codec: "AAC", Channels: 2}},
	}

	result := engine.Evaluate(props)
	if result.Rating != len(engine.EnabledClients()) {
		t.Errorf("rating = %d, want all %d clients direct playing",
			result.Rating, len(engine.EnabledClients()))
	}
	if result.Label != LabelOptimal {
		t.Errorf("label = %s, want %s", result.Label, LabelOptimal)
	}
	if len(result.Issues) != 0 {
		t.Errorf("unexpected issues: %v", result.Issues)
	}
	if result.Score != 100 {
		t.Errorf("score = %d, want 100", result.Score)
	}
}

func TestOverridesTakePrecedence(t *testing.T) {
	engine := NewEngine(nil, config.Rating{
		EnabledClients: []string{"chrome"},
		Overrides: []config.SupportOverride{
			{Codec: "MKV", Client: "chrome", Category: "container", Level: "supported"},
			{Codec: "H.265 10-bit", Client: "chrome", Category: "video", Level: "supported"},
			{Codec: "EAC3", Client: "chrome", Category: "audio", Level: "supported"},
		},
	})

	result := engine.Evaluate(hevcMKV())
	if got := result.Clients["chrome"].Method; got != DirectPlay {
		t.Errorf("chrome method = %s, want %s with overrides applied", got, DirectPlay)
	}
}

func TestExternalSubtitlesDoNotAffectDisposition(t *testing.T) {
	engine := NewEngine(nil, config.Rating{EnabledClients: []string{"kodi"}})
	props := mediainfo.Properties{
		Container:       "MKV",
		VideoCodec:      "H.264",
		BitDepth:        8,
		CodecTagCorrect: true,
	}

	baseline := engine.Evaluate(props)

	props.SubtitleTracks = []mediainfo.SubtitleTrack{
		{Format: "PGS", Embedded: false, SourcePath: "/library/movie.sup"},
	}
	withExternal := engine.Evaluate(props)

	if withExternal.Clients["kodi"].Method != baseline.Clients["kodi"].Method {
		t.Error("external subtitle changed the playback disposition")
	}
	if len(withExternal.Clients["kodi"].Issues) != len(baseline.Clients["kodi"].Issues) {
		t.Error("external subtitle added client issues")
	}
}

func TestUnsupportedEmbeddedSubtitleForcesTranscode(t *testing.T) {
	engine := NewEngine(nil, config.Rating{EnabledClients: []string{"kodi"}})
	props := mediainfo.Properties{
		Container:       "MKV",
		VideoCodec:      "H.264",
		BitDepth:        8,
		CodecTagCorrect: true,
		AudioTracks:     []mediainfo.AudioTrack{{Codec: "AAC", Channels: 2}},
		SubtitleTracks: []mediainfo.SubtitleTrack{
			{Format: "MOV_TEXT", Embedded: true},
		},
	}

	result := engine.Evaluate(props)

	d, ok := result.Clients["kodi"]
	if !ok {
		t.Fatal("kodi missing from result")
	}
	if len(d.Issues) == 0 {
		t.Fatal("expected a subtitle issue for MOV_TEXT in MKV")
	}
	if d.Method != Transcode {
		t.Errorf("method = %s, want %s when subtitles must be burned in", d.Method, Transcode)
	}
	if result.DirectPlayCount != 0 {
		t.Errorf("direct play count = %d, want 0", result.DirectPlayCount)
	}
}

func TestHDRWarningsByProfile(t *testing.T) {
	engine := NewEngine(nil, config.Rating{EnabledClients: []string{"ios", "chrome"}})
	props := mediainfo.Properties{
		Container:       "MP4",
		VideoCodec:      "H.265",
		BitDepth:        10,
		CodecTagCorrect: true,
		FastStart:       true,
		HDR:             true,
		HDRFormat:       "HDR10",
	}

	result := engine.Evaluate(props)

	if len(result.Clients["ios"].Warnings) == 0 {
		t.Error("ios should carry an HDR warning")
	}
	if len(result.Clients["chrome"].Warnings) == 0 {
		t.Error("chrome should carry an HDR tone-mapping warning")
	}
	// HDR itself must not worsen the ios disposition.
	if got := result.Clients["ios"].Method; got != DirectPlay {
		t.Errorf("ios method = %s, want %s", got, DirectPlay)
	}
}

func TestAdvisoryScorePenalties(t *testing.T) {
	cfg := config.Rating{
		EnabledClients:     []string{"chrome", "ios", "kodi"},
		PenaltyUnsupported: 15,
		PenaltyHDR:         5,
		PenaltySurround:    5,
		PenaltyNoFastStart: 5,
		PenaltyHighBitrate: 5,
		BitrateThreshold:   40,
	}
	engine := NewEngine(nil, cfg)

	props := hevcMKV()
	props.HDR = true
	props.HDRFormat = "HDR10"

	result := engine.Evaluate(props)

	// Container unsupported (ios), video unsupported on none of these
	// three, HDR, EAC3 unsupported on chrome, 6-channel downmix.
	wantScore := 100 - 15 - 5 - 15 - 5
	if result.Score != wantScore {
		t.Errorf("score = %d, want %d (issues: %v)", result.Score, wantScore, result.Issues)
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected remux/fallback recommendations")
	}
}
