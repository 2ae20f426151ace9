package app

import (
	"math"

	"serp-radar/database"
)

// KeywordData is the flattened scoring input for one keyword: identity,
// lifecycle flags and the latest metric sample. Keywords without samples
// never reach the engine (excluded upstream, not zero-scored).
type KeywordData struct {
	ID        int64
	Text      string
	MatchText string // free-form text for group matching, falls back to Text
	Relevance int
	TargetURL string

	// Latest sample
	Position    float64 // 0 = unranked
	Clicks      int64
	Impressions int64
}

// MatchString returns the text used for geographic group matching
func (k *KeywordData) MatchString() string {
	if k.MatchText != "" {
		return k.MatchText
	}
	return k.Text
}

// CTR returns the latest click-through rate as a percentage, 0 when there
// are no impressions.
func (k *KeywordData) CTR() float64 {
	if k.Impressions == 0 {
		return 0
	}
	return float64(k.Clicks) / float64(k.Impressions) * 100
}

// ValidateMetrics fails fast on degenerate numeric inputs. Zero values
// are legitimate exclusion branches everywhere in the engine; negatives
// mean the import layer fed corrupt data.
func ValidateMetrics(position float64, clicks, impressions int64) error {
	if position < 0 {
		return database.NewValidationErrorWithValue("position", "must not be negative", position)
	}
	if clicks < 0 {
		return database.NewValidationErrorWithValue("clicks", "must not be negative", clicks)
	}
	if impressions < 0 {
		return database.NewValidationErrorWithValue("impressions", "must not be negative", impressions)
	}
	return nil
}

// round1 rounds to 1 decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
