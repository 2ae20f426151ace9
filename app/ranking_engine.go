package app

import (
	"sort"

	"serp-radar/config"
)

// RankedKeyword is one entry of a ranked list, carrying enough data for a
// caller to render without re-reading the samples.
type RankedKeyword struct {
	KeywordID   int64   `json:"keyword_id"`
	Text        string  `json:"text"`
	Position    float64 `json:"position"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Variation   float64 `json:"variation"`
	Status      string  `json:"status"`
	Score       float64 `json:"score"`
}

// RankingResult holds the two disjoint ranked lists of one run
type RankingResult struct {
	Top     []RankedKeyword `json:"top"`
	Improve []RankedKeyword `json:"improve"`
}

// RankingInput bundles everything one ranking pass reads. The engine
// only reads from it and produces new structures; repeated runs over the
// same input yield identical output.
type RankingInput struct {
	Keywords []KeywordData

	// Monthly and short-term trend results, keyed by keyword id.
	// Keywords absent from a map simply get neutral factors.
	Monthly  map[int64]TrendResult
	Momentum map[int64]TrendResult

	// Trailing-7-day total impressions across the dataset, feeding the
	// noise floor.
	TrailingImpressions int64
}

// RankingEngine turns scored keywords into the "top performers" and
// "needs improvement" lists. The two lists are disjoint by construction:
// opportunity scoring only ever sees keywords that did not make Top.
type RankingEngine struct {
	scorer *KeywordScorer
	cfg    config.ScoringConfig
}

// NewRankingEngine creates a new ranking engine
func NewRankingEngine(scorer *KeywordScorer, cfg config.ScoringConfig) *RankingEngine {
	return &RankingEngine{scorer: scorer, cfg: cfg}
}

// Rank computes both ranked lists for one pass
func (e *RankingEngine) Rank(in RankingInput) RankingResult {
	noiseFloor := e.scorer.NoiseFloor(in.TrailingImpressions)

	// Keywords below the noise floor are out of ranking entirely,
	// regardless of what either score would say.
	eligible := make([]KeywordData, 0, len(in.Keywords))
	for _, k := range in.Keywords {
		if float64(k.Impressions) > noiseFloor {
			eligible = append(eligible, k)
		}
	}

	type scored struct {
		keyword KeywordData
		score   float64
	}

	// Top performers by visibility score.
	var visible []scored
	for _, k := range eligible {
		score, ok := e.scorer.VisibilityScore(k, e.trend(in.Monthly, k.ID), e.trend(in.Momentum, k.ID))
		if !ok {
			continue
		}
		visible = append(visible, scored{keyword: k, score: score})
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].score > visible[j].score })

	result := RankingResult{}
	inTop := make(map[int64]bool)
	for i, sc := range visible {
		if i >= e.cfg.TopKeywordLimit {
			break
		}
		inTop[sc.keyword.ID] = true
		result.Top = append(result.Top, e.entry(sc.keyword, sc.score, in.Monthly))
	}

	// Needs improvement by opportunity score, never re-listing a top
	// performer.
	var opportunities []scored
	for _, k := range eligible {
		if inTop[k.ID] {
			continue
		}
		score, ok := e.scorer.OpportunityScore(k, e.trend(in.Monthly, k.ID), e.trend(in.Momentum, k.ID))
		if !ok || score <= 0 {
			continue
		}
		opportunities = append(opportunities, scored{keyword: k, score: score})
	}
	sort.Slice(opportunities, func(i, j int) bool { return opportunities[i].score > opportunities[j].score })

	for i, sc := range opportunities {
		if i >= e.cfg.ImproveKeywordLimit {
			break
		}
		result.Improve = append(result.Improve, e.entry(sc.keyword, sc.score, in.Monthly))
	}

	return result
}

// trend looks up a keyword's trend result, nil when absent
func (e *RankingEngine) trend(results map[int64]TrendResult, keywordID int64) *TrendResult {
	if results == nil {
		return nil
	}
	if r, ok := results[keywordID]; ok {
		return &r
	}
	return nil
}

// entry builds a ranked list entry from a keyword and its score
func (e *RankingEngine) entry(k KeywordData, score float64, monthly map[int64]TrendResult) RankedKeyword {
	entry := RankedKeyword{
		KeywordID:   k.ID,
		Text:        k.Text,
		Position:    k.Position,
		Clicks:      k.Clicks,
		Impressions: k.Impressions,
		Status:      StatusNoData,
		Score:       round2(score),
	}
	if m, ok := monthly[k.ID]; ok {
		entry.Variation = m.Variation
		entry.Status = m.StatusLabel()
	}
	return entry
}
