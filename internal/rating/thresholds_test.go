package rating

import (
	"fmt"
	"testing"

	"reelcheck/internal/config"
	"reelcheck/internal/mediainfo"
)

// syntheticMatrix builds a matrix where codec support is spread over a
// fixed client population: direct clients fully support the codec,
// remux clients partially.
func syntheticMatrix(codec string, direct, remux, none int) (*Matrix, []string) {
	byClient := make(map[string]SupportLevel)
	containers := make(map[string]SupportLevel)
	var clients []string
	for i := 0; i < direct+remux+none; i++ {
		client := fmt.Sprintf("client%02d", i)
		clients = append(clients, client)
		containers[client] = Supported
		switch {
		case i < direct:
			byClient[client] = Supported
		case i < direct+remux:
			byClient[client] = Partial
		default:
			byClient[client] = Unsupported
		}
	}
	return &Matrix{
		VideoCodecs: map[string]map[string]SupportLevel{codec: byClient},
		AudioCodecs: map[string]map[string]SupportLevel{},
		Containers:  map[string]map[string]SupportLevel{"MKV": containers},
	}, clients
}

func TestCodecSpecificThresholds(t *testing.T) {
	matrix, clients := syntheticMatrix("X1", 10, 4, 0)
	engine := NewEngine(matrix, config.Rating{EnabledClients: clients})

	ts := engine.thresholdsFor("X1", 8)
	if ts.optimal != 8 {
		t.Errorf("optimal = %d, want 8 (ceil of 0.8*10)", ts.optimal)
	}
	if ts.goodDirect != 6 {
		t.Errorf("goodDirect = %d, want 6 (ceil of 0.6*10)", ts.goodDirect)
	}
	if ts.goodCombined != 12 {
		t.Errorf("goodCombined = %d, want 12 (ceil of 0.8*14)", ts.goodCombined)
	}
}

func TestLabelBoundaries(t *testing.T) {
	matrix, clients := syntheticMatrix("X1", 10, 0, 0)
	engine := NewEngine(matrix, config.Rating{EnabledClients: clients})
	props := mediainfo.Properties{VideoCodec: "X1", BitDepth: 8}

	tests := []struct {
		directPlay int
		remux      int
		want       string
	}{
		{8, 0, LabelOptimal},
		{7, 0, LabelGood},
		{6, 0, LabelGood},
		{5, 3, LabelGood}, // combined: 5+3 >= ceil(0.8*10)
		{5, 2, LabelPoor},
		{0, 0, LabelPoor},
	}

	for _, tt := range tests {
		if got := engine.label(props, tt.directPlay, tt.remux); got != tt.want {
			t.Errorf("label(dp=%d, remux=%d) = %s, want %s", tt.directPlay, tt.remux, got, tt.want)
		}
	}
}

func TestThresholdsFlooredAtOne(t *testing.T) {
	matrix, clients := syntheticMatrix("X1", 0, 0, 3)
	engine := NewEngine(matrix, config.Rating{EnabledClients: clients})

	ts := engine.thresholdsFor("X1", 8)
	if ts.optimal != 1 || ts.goodDirect != 1 || ts.goodCombined != 1 {
		t.Errorf("thresholds = %+v, want all floored at 1", ts)
	}
}

func TestConfiguredThresholdsWin(t *testing.T) {
	matrix, clients := syntheticMatrix("X1", 10, 0, 0)
	engine := NewEngine(matrix, config.Rating{
		EnabledClients:   clients,
		OptimalThreshold: 3,
		GoodThreshold:    2,
	})

	ts := engine.thresholdsFor("X1", 8)
	if ts.optimal != 3 || ts.goodDirect != 2 {
		t.Errorf("thresholds = %+v, want configured 3/2", ts)
	}
}

func TestPerCodecThresholdsWin(t *testing.T) {
	matrix, clients := syntheticMatrix("X1", 10, 0, 0)
	engine := NewEngine(matrix, config.Rating{
		EnabledClients:   clients,
		OptimalThreshold: 3,
		GoodThreshold:    2,
		CodecThresholds: []config.CodecThreshold{
			{Codec: "X1", Optimal: 9, Good: 7},
		},
	})

	ts := engine.thresholdsFor("X1", 8)
	if ts.optimal != 9 || ts.goodDirect != 7 {
		t.Errorf("thresholds = %+v, want per-codec 9/7 over global 3/2", ts)
	}
}

func TestQualifiedCodecThresholdPreferred(t *testing.T) {
	matrix, clients := syntheticMatrix("X1", 10, 0, 0)
	engine := NewEngine(matrix, config.Rating{
		EnabledClients: clients,
		CodecThresholds: []config.CodecThreshold{
			{Codec: "X1", Optimal: 9},
			{Codec: "X1 10-bit", Optimal: 4},
		},
	})

	if ts := engine.thresholdsFor("X1", 10); ts.optimal != 4 {
		t.Errorf("10-bit optimal = %d, want the qualified entry 4", ts.optimal)
	}
	if ts := engine.thresholdsFor("X1", 8); ts.optimal != 9 {
		t.Errorf("8-bit optimal = %d, want the bare entry 9", ts.optimal)
	}
}

func TestThresholdsCached(t *testing.T) {
	matrix, clients := syntheticMatrix("X1", 5, 0, 0)
	engine := NewEngine(matrix, config.Rating{EnabledClients: clients})

	first := engine.thresholdsFor("X1", 8)
	second := engine.thresholdsFor("X1", 8)
	if first != second {
		t.Errorf("cached thresholds differ: %+v vs %+v", first, second)
	}
}
