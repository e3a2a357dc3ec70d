package forensics

import (
	"strings"

	"inspectoradf/internal/domain"
)

const DefaultELAThreshold = 20.0

// Weights and band edges are kept in tenths so band comparisons stay exact.
const (
	exifWeight  = 4
	noiseWeight = 3
	elaWeight   = 3

	someIndicatorsFrom  = 3
	highProbabilityFrom = 6
)

type ScoreOptions struct {
	NoiseThreshold float64
	ELAThreshold   float64
	// Legacy matches "ai" against the full EXIF text instead of using the
	// classified status, so the absent hint also counts.
	Legacy bool
}

func DefaultScoreOptions() ScoreOptions {
	return ScoreOptions{
		NoiseThreshold: DefaultNoiseThreshold,
		ELAThreshold:   DefaultELAThreshold,
	}
}

// Score combines the three signals into a value in {0, .3, .4, .6, .7, 1}.
func Score(hint domain.ExifHint, noise, ela float64, opts ScoreOptions) float64 {
	return float64(scoreTenths(hint, noise, ela, opts)) / 10
}

func scoreTenths(hint domain.ExifHint, noise, ela float64, opts ScoreOptions) int {
	tenths := 0
	if exifSuspicious(hint, opts.Legacy) {
		tenths += exifWeight
	}
	if noise < opts.NoiseThreshold {
		tenths += noiseWeight
	}
	if ela > opts.ELAThreshold {
		tenths += elaWeight
	}
	return tenths
}

func exifSuspicious(hint domain.ExifHint, legacy bool) bool {
	if legacy {
		return strings.Contains(strings.ToLower(hint.FullText()), "ai")
	}
	return hint.Status == domain.ExifSuspicious
}

func VerdictFor(score float64) domain.Verdict {
	switch {
	case score < float64(someIndicatorsFrom)/10:
		return domain.LowProbability
	case score < float64(highProbabilityFrom)/10:
		return domain.SomeIndicators
	default:
		return domain.HighProbability
	}
}
