package app

import (
	"serp-radar/config"
)

// KeywordScorer computes the two composite scores over a keyword's latest
// sample: the visibility score that feeds the "top performers" list and
// the opportunity score that feeds the "needs improvement" list. Both are
// pure functions of their inputs; identical inputs always yield identical
// scores.
type KeywordScorer struct {
	bench *CtrBenchmark
	cfg   config.ScoringConfig
}

// NewKeywordScorer creates a new keyword scorer
func NewKeywordScorer(bench *CtrBenchmark, cfg config.ScoringConfig) *KeywordScorer {
	return &KeywordScorer{bench: bench, cfg: cfg}
}

// VisibilityScore computes the composite visibility score for a keyword.
// Returns ok=false for keywords that must not be scored at all (unranked
// or zero impressions) as opposed to scoring them zero.
//
// The score rewards impression volume close to the top of the results,
// click engagement, CTR vs the benchmark for the position, short-term
// momentum and monthly velocity.
func (s *KeywordScorer) VisibilityScore(k KeywordData, monthly, momentum *TrendResult) (float64, bool) {
	if k.Position <= 0 || k.Impressions <= 0 {
		return 0, false
	}

	pageBonus := 1.0
	if k.Position <= 10 {
		pageBonus = 1.5
	} else if k.Position <= 20 {
		pageBonus = 1.25
	}

	base := (float64(k.Impressions) / k.Position) * (1 + 2*float64(k.Clicks)) * pageBonus

	// CTR vs benchmark, clamped so one outlier day cannot dominate.
	// The clamped ratio [0.5, 2.0] maps linearly onto roughly [0.75, 1.08].
	expectedCtr := s.bench.ExpectedCTR(k.Position)
	ctrRatio := clamp(k.CTR()/expectedCtr, 0.5, 2.0)
	ctrFactor := 0.75 + (ctrRatio-0.5)*(0.5/1.5)

	momentumFactor := 1.0
	if momentum != nil {
		momentumFactor = momentum.Factor
	}

	return base * ctrFactor * momentumFactor * monthlyVelocityFactor(monthly), true
}

// monthlyVelocityFactor is the coarse step function of the monthly
// variation. Missing monthly data is neutral.
func monthlyVelocityFactor(monthly *TrendResult) float64 {
	if monthly == nil || monthly.Status == TrendNew {
		return 1.0
	}
	switch {
	case monthly.Variation >= 10:
		return 1.15
	case monthly.Variation >= 5:
		return 1.08
	case monthly.Variation <= -5:
		return 0.92
	default:
		return 1.0
	}
}

// NoiseFloor returns the minimum impression count a keyword must exceed
// to be eligible for ranking: 0.1% of the trailing-7-day dataset total,
// never below 1.
func (s *KeywordScorer) NoiseFloor(trailingImpressions int64) float64 {
	floor := float64(trailingImpressions) * s.cfg.NoiseFloorPct
	if floor < 1 {
		return 1
	}
	return floor
}

// OpportunityScore computes the "needs improvement" score: the expected
// click gap vs the CTR benchmark, weighted by proximity to page 1,
// decline urgency, inverted momentum and impression volume.
//
// Returns ok=false for keywords outside the candidate pool: unranked,
// zero impressions, deep positions (>20) that are not in significant
// monthly decline, and keywords below the minimum impression count for a
// meaningful CTR gap.
func (s *KeywordScorer) OpportunityScore(k KeywordData, monthly, momentum *TrendResult) (float64, bool) {
	if k.Position <= 0 || k.Impressions <= 0 {
		return 0, false
	}

	monthlyVariation := 0.0
	if monthly != nil && monthly.Status != TrendNew {
		monthlyVariation = monthly.Variation
	}

	// Beyond position 20 only significant decliners stay interesting.
	if k.Position > 20 && monthlyVariation > -5 {
		return 0, false
	}

	// Below this volume the CTR gap is statistical noise; rather than
	// multiplying a zero gap by non-zero urgency factors, the keyword
	// leaves the pool entirely.
	if k.Impressions < s.cfg.MinOpportunityImpressions {
		return 0, false
	}

	expectedClicks := float64(k.Impressions) * s.bench.ExpectedCTR(k.Position) / 100
	gap := expectedClicks - float64(k.Clicks)
	if gap < 0 {
		gap = 0
	}

	weight := proximityWeight(k.Position)
	urgency := declineUrgencyFactor(monthlyVariation)

	// Inverted momentum: keywords already rising take care of
	// themselves, falling ones need the attention.
	momentumAdjustment := 1.0
	if momentum != nil {
		momentumAdjustment = 2.0 - momentum.Factor
	}

	return gap * weight * urgency * momentumAdjustment * volumeMultiplier(k.Impressions), true
}

// proximityWeight favors striking-distance positions where optimization
// most plausibly pushes the keyword onto page 1.
func proximityWeight(position float64) float64 {
	switch {
	case position <= 10:
		return 3.0
	case position <= 15:
		return 1.5
	case position <= 20:
		return 0.8
	default:
		return 0.3
	}
}

// declineUrgencyFactor steepens with larger monthly declines
func declineUrgencyFactor(variation float64) float64 {
	switch {
	case variation <= -10:
		return 1.6
	case variation <= -5:
		return 1.4
	case variation <= -2:
		return 1.2
	case variation < 0:
		return 1.1
	default:
		return 1.0
	}
}

// volumeMultiplier steps priority up with impression volume
func volumeMultiplier(impressions int64) float64 {
	switch {
	case impressions >= 500:
		return 1.5
	case impressions >= 200:
		return 1.3
	case impressions >= 100:
		return 1.15
	default:
		return 1.0
	}
}
