package app

import (
	"math"
	"testing"
)

func TestRawScoreSingleKeyword(t *testing.T) {
	scorer := NewPriorityScorer(NewCtrBenchmark())

	// Position 12 targets position 5: CTR 12% vs 4.8%, a 7.2pt gain over
	// 1000 impressions is 72 expected clicks. Effort and relevance weights
	// are both 1.0 here, and a single keyword adds no bonuses.
	keywords := []PageKeywordMetrics{
		{Position: 12, Impressions: 1000, Relevance: 4},
	}

	got := scorer.RawScore(keywords, 1)
	if math.Abs(got-72) > 1e-9 {
		t.Errorf("RawScore = %v, want 72", got)
	}
}

func TestRawScoreBonuses(t *testing.T) {
	scorer := NewPriorityScorer(NewCtrBenchmark())

	keywords := []PageKeywordMetrics{
		{Position: 12, Impressions: 1000, Relevance: 4},
		{Position: 0, Impressions: 0, Relevance: 4, HasTrend: true, MonthlyVariation: -6},
	}

	// 16 keywords on the page: authority 1 + 0.15*log2(16) = 1.6.
	// One declining keyword: urgency 1.1. The unranked keyword adds no
	// page value but still counts as declining.
	got := scorer.RawScore(keywords, 16)
	want := 72 * 1.6 * 1.1
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("RawScore = %v, want %v", got, want)
	}
}

func TestRawScoreUrgencyCapsAtFiveDecliners(t *testing.T) {
	scorer := NewPriorityScorer(NewCtrBenchmark())

	var keywords []PageKeywordMetrics
	keywords = append(keywords, PageKeywordMetrics{Position: 12, Impressions: 1000, Relevance: 4})
	for i := 0; i < 8; i++ {
		keywords = append(keywords, PageKeywordMetrics{
			Position: 0, HasTrend: true, MonthlyVariation: -10,
		})
	}

	got := scorer.RawScore(keywords, 1)
	want := 72 * 1.5 // urgency capped at 1 + 0.1*5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("RawScore = %v, want %v", got, want)
	}
}

func TestRawScoreTopPositionsGainNothing(t *testing.T) {
	scorer := NewPriorityScorer(NewCtrBenchmark())

	// Position 1 targets position 1; no CTR gain, no value.
	keywords := []PageKeywordMetrics{
		{Position: 1, Impressions: 5000, Relevance: 5},
	}

	if got := scorer.RawScore(keywords, 1); got != 0 {
		t.Errorf("RawScore = %v, want 0", got)
	}
}

func TestRealisticTarget(t *testing.T) {
	tests := []struct {
		position float64
		target   float64
	}{
		{1, 1},
		{2, 1},
		{8, 6},
		{10, 8},
		{12, 5},
		{20, 13},
		{25, 15},
		{30, 20},
		{35, 20},
		{60, 45},
	}

	for _, tt := range tests {
		if got := realisticTarget(tt.position); got != tt.target {
			t.Errorf("realisticTarget(%v) = %v, want %v", tt.position, got, tt.target)
		}
	}
}

func TestEffortWeight(t *testing.T) {
	tests := []struct {
		position float64
		weight   float64
	}{
		{5, 0.8},
		{10, 0.8},
		{12, 1.0},
		{15, 1.0},
		{18, 0.7},
		{25, 0.35},
		{45, 0.1},
		{80, 0.02},
	}

	for _, tt := range tests {
		if got := effortWeight(tt.position); got != tt.weight {
			t.Errorf("effortWeight(%v) = %v, want %v", tt.position, got, tt.weight)
		}
	}
}

func TestRelevanceWeight(t *testing.T) {
	tests := []struct {
		score  int
		weight float64
	}{
		{5, 1.15},
		{4, 1.0},
		{3, 0.6},
		{2, 0.3},
		{0, 0.3},
	}

	for _, tt := range tests {
		if got := relevanceWeight(tt.score); got != tt.weight {
			t.Errorf("relevanceWeight(%d) = %v, want %v", tt.score, got, tt.weight)
		}
	}
}

func TestNormalizeScores(t *testing.T) {
	raw := map[string]float64{
		"/a": 400,
		"/b": 100,
		"/c": 0,
	}

	normalized := NormalizeScores(raw)

	if normalized["/a"] != 100.0 {
		t.Errorf("max page = %v, want exactly 100.0", normalized["/a"])
	}
	if normalized["/c"] != 0.0 {
		t.Errorf("zero page = %v, want 0.0", normalized["/c"])
	}
	b := normalized["/b"]
	if b <= 0 || b >= 100 {
		t.Errorf("mid page = %v, want inside (0, 100)", b)
	}
	want := round1(math.Log1p(100) / math.Log1p(400) * 100)
	if b != want {
		t.Errorf("mid page = %v, want %v", b, want)
	}
}

func TestNormalizeScoresAllZero(t *testing.T) {
	normalized := NormalizeScores(map[string]float64{"/a": 0, "/b": 0})
	for key, v := range normalized {
		if v != 0 {
			t.Errorf("page %s = %v, want 0", key, v)
		}
	}
	if len(normalized) != 2 {
		t.Errorf("expected every page in the output, got %d", len(normalized))
	}
}

func TestNormalizeScoresBounded(t *testing.T) {
	raw := map[string]float64{}
	for i, v := range []float64{0.001, 3, 77, 1234, 98765} {
		raw[string(rune('a'+i))] = v
	}

	for key, v := range NormalizeScores(raw) {
		if v < 0 || v > 100 {
			t.Errorf("page %s = %v, outside [0, 100]", key, v)
		}
	}
}
