package rating

import (
	"math"

	"reelcheck/internal/config"
)

// thresholdSet holds the label cutoffs for one codec key.
type thresholdSet struct {
	optimal      int
	goodDirect   int
	goodCombined int
}

// thresholdsFor returns (and caches) the codec-specific cutoffs,
// computed from how many enabled clients the matrix expects to direct
// play or remux the codec. Configured global thresholds take precedence
// over the computed values, and per-codec configured thresholds over
// both.
func (e *Engine) thresholdsFor(codec string, bitDepth int) thresholdSet {
	key := codec
	if bitDepth > 8 {
		key = qualifiedCodecKey(codec, bitDepth)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ts, ok := e.thresholds[key]; ok {
		return ts
	}

	expectedDirect, expectedRemux := 0, 0
	for _, client := range e.enabled {
		switch e.videoSupport(codec, bitDepth, client) {
		case Supported:
			expectedDirect++
		case Partial:
			expectedRemux++
		}
	}

	ts := thresholdSet{
		optimal:      atLeastOne(math.Ceil(0.8 * float64(expectedDirect))),
		goodDirect:   atLeastOne(math.Ceil(0.6 * float64(expectedDirect))),
		goodCombined: atLeastOne(math.Ceil(0.8 * float64(expectedDirect+expectedRemux))),
	}
	if e.cfg.OptimalThreshold > 0 {
		ts.optimal = e.cfg.OptimalThreshold
	}
	if e.cfg.GoodThreshold > 0 {
		ts.goodDirect = e.cfg.GoodThreshold
	}
	if ct, ok := e.codecThreshold(key, codec); ok {
		if ct.Optimal > 0 {
			ts.optimal = ct.Optimal
		}
		if ct.Good > 0 {
			ts.goodDirect = ct.Good
		}
	}

	e.thresholds[key] = ts
	return ts
}

// codecThreshold looks up a configured per-codec entry, preferring the
// bit-depth qualified key over the bare codec name.
func (e *Engine) codecThreshold(key, codec string) (config.CodecThreshold, bool) {
	if ct, ok := e.codecThresholds[key]; ok {
		return ct, true
	}
	ct, ok := e.codecThresholds[codec]
	return ct, ok
}

func atLeastOne(v float64) int {
	n := int(v)
	if n < 1 {
		return 1
	}
	return n
}
