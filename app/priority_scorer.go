package app

import (
	"math"
)

// PageKeywordMetrics is the scoring input for one keyword on a page
type PageKeywordMetrics struct {
	Position         float64
	Clicks           int64
	Impressions      int64
	Relevance        int
	MonthlyVariation float64
	HasTrend         bool
}

// PriorityScorer computes the effort-adjusted expected-value score of a
// page: the incremental clicks a realistic position improvement would
// earn, weighted by optimization effort and business relevance, then
// log-normalized across all pages so one outlier page cannot make every
// other page look negligible.
type PriorityScorer struct {
	bench *CtrBenchmark
}

// NewPriorityScorer creates a new priority scorer
func NewPriorityScorer(bench *CtrBenchmark) *PriorityScorer {
	return &PriorityScorer{bench: bench}
}

// RawScore computes the unnormalized priority score of one page from its
// keywords. totalKeywordCount is the full keyword count on the page (it
// may exceed len(keywords) when some keywords carry no usable sample).
func (p *PriorityScorer) RawScore(keywords []PageKeywordMetrics, totalKeywordCount int) float64 {
	pageValue := 0.0
	declining := 0

	for _, k := range keywords {
		if k.HasTrend && k.MonthlyVariation <= -5 {
			declining++
		}

		if k.Position <= 0 || k.Impressions <= 0 {
			continue
		}

		target := realisticTarget(k.Position)
		ctrGain := p.bench.ExpectedCTR(target) - p.bench.ExpectedCTR(k.Position)
		if ctrGain < 0 {
			ctrGain = 0
		}

		expectedClickGain := float64(k.Impressions) * ctrGain / 100
		pageValue += expectedClickGain * effortWeight(k.Position) * relevanceWeight(k.Relevance)
	}

	if declining > 5 {
		declining = 5
	}

	authorityBonus := 1 + 0.15*math.Log2(math.Max(1, float64(totalKeywordCount)))
	urgencyBonus := 1 + 0.1*float64(declining)

	return pageValue * authorityBonus * urgencyBonus
}

// NormalizeScores log-compresses the raw scores of all pages onto a
// 0-100 scale, 1 decimal. The page with the maximum raw score lands on
// exactly 100; when every raw score is 0 so is every normalized one.
func NormalizeScores(raw map[string]float64) map[string]float64 {
	maxRaw := 0.0
	for _, v := range raw {
		if v > maxRaw {
			maxRaw = v
		}
	}

	normalized := make(map[string]float64, len(raw))
	if maxRaw == 0 {
		for key := range raw {
			normalized[key] = 0
		}
		return normalized
	}

	for key, v := range raw {
		score := math.Log1p(v) / math.Log1p(maxRaw) * 100
		if score > 100 {
			score = 100
		}
		if score < 0 {
			score = 0
		}
		normalized[key] = round1(score)
	}
	return normalized
}

// realisticTarget returns the achievable target position for a keyword:
// small steps near the top, larger ones further out.
func realisticTarget(position float64) float64 {
	switch {
	case position <= 10:
		return math.Max(1, position-2)
	case position <= 20:
		return math.Max(5, position-7)
	case position <= 30:
		return math.Max(10, position-10)
	default:
		return math.Max(15, position-15)
	}
}

// effortWeight discounts positions that are expensive to move. The
// striking-distance band just off page 1 is the cheapest win.
func effortWeight(position float64) float64 {
	switch {
	case position <= 10:
		return 0.8
	case position <= 15:
		return 1.0
	case position <= 20:
		return 0.7
	case position <= 30:
		return 0.35
	case position <= 50:
		return 0.1
	default:
		return 0.02
	}
}

// relevanceWeight scales by the operator-assigned relevance score
func relevanceWeight(score int) float64 {
	switch {
	case score >= 5:
		return 1.15
	case score >= 4:
		return 1.0
	case score >= 3:
		return 0.6
	default:
		return 0.3
	}
}
