package app

import (
	"math"
	"testing"

	"serp-radar/config"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		TopKeywordLimit:           10,
		ImproveKeywordLimit:       10,
		NoiseFloorPct:             0.001,
		MinOpportunityImpressions: 30,
		MomentumRecentDays:        3,
		MomentumPriorDays:         4,
		CooldownDays:              30,
	}
}

func newTestScorer() *KeywordScorer {
	return NewKeywordScorer(NewCtrBenchmark(), testScoringConfig())
}

func TestVisibilityScoreBelowBenchmarkLosesToOnBenchmark(t *testing.T) {
	scorer := newTestScorer()

	// Same position and impressions; A converts far below the benchmark
	// CTR for position 3 (18%), B right at it. B must outscore A.
	keywordA := KeywordData{ID: 1, Position: 3, Clicks: 50, Impressions: 1000}
	keywordB := KeywordData{ID: 2, Position: 3, Clicks: 180, Impressions: 1000}

	scoreA, okA := scorer.VisibilityScore(keywordA, nil, nil)
	scoreB, okB := scorer.VisibilityScore(keywordB, nil, nil)

	if !okA || !okB {
		t.Fatal("both keywords should be scorable")
	}
	if scoreB <= scoreA {
		t.Errorf("on-benchmark keyword should outscore below-benchmark one: %v <= %v", scoreB, scoreA)
	}
}

func TestVisibilityScoreComposition(t *testing.T) {
	scorer := newTestScorer()

	k := KeywordData{ID: 1, Position: 3, Clicks: 180, Impressions: 1000}
	score, ok := scorer.VisibilityScore(k, nil, nil)
	if !ok {
		t.Fatal("keyword should be scorable")
	}

	// base = (1000/3) * (1 + 2*180) * 1.5
	// ctr = 18%, expected 18% -> ratio 1.0 -> factor 0.75 + 0.5*(1/3)
	base := (1000.0 / 3.0) * 361 * 1.5
	ctrFactor := 0.75 + (1.0-0.5)*(0.5/1.5)
	want := base * ctrFactor

	if math.Abs(score-want) > 1e-6 {
		t.Errorf("score = %v, want %v", score, want)
	}
}

func TestVisibilityScorePageBonus(t *testing.T) {
	scorer := newTestScorer()

	tests := []struct {
		name     string
		position float64
		bonus    float64
	}{
		{"page one", 8, 1.5},
		{"page two", 15, 1.25},
		{"deeper", 25, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := KeywordData{Position: tt.position, Clicks: 0, Impressions: 100}
			score, ok := scorer.VisibilityScore(k, nil, nil)
			if !ok {
				t.Fatal("keyword should be scorable")
			}

			expectedCtr := NewCtrBenchmark().ExpectedCTR(tt.position)
			ctrRatio := clamp(0/expectedCtr, 0.5, 2.0)
			ctrFactor := 0.75 + (ctrRatio-0.5)*(0.5/1.5)
			want := (100 / tt.position) * 1 * tt.bonus * ctrFactor

			if math.Abs(score-want) > 1e-9 {
				t.Errorf("score = %v, want %v", score, want)
			}
		})
	}
}

func TestVisibilityScoreExclusions(t *testing.T) {
	scorer := newTestScorer()

	tests := []struct {
		name string
		k    KeywordData
	}{
		{"unranked", KeywordData{Position: 0, Clicks: 10, Impressions: 1000}},
		{"zero impressions", KeywordData{Position: 3, Clicks: 0, Impressions: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := scorer.VisibilityScore(tt.k, nil, nil); ok {
				t.Error("keyword should be excluded from scoring, not zero-scored")
			}
		})
	}
}

func TestVisibilityScoreAppliesTrendFactors(t *testing.T) {
	scorer := newTestScorer()
	k := KeywordData{Position: 5, Clicks: 10, Impressions: 500}

	baseline, _ := scorer.VisibilityScore(k, nil, nil)

	monthly := &TrendResult{Variation: 12, Status: TrendImproved, Factor: 1.3}
	momentum := &TrendResult{Variation: 3, Status: TrendImproved, Factor: 1.15}

	boosted, _ := scorer.VisibilityScore(k, monthly, momentum)
	want := baseline * 1.15 * 1.15 // velocity(>=10) * momentum factor

	if math.Abs(boosted-want) > 1e-6 {
		t.Errorf("boosted score = %v, want %v", boosted, want)
	}

	declined := &TrendResult{Variation: -8, Status: TrendDegraded, Factor: 0.7}
	reduced, _ := scorer.VisibilityScore(k, declined, nil)
	if math.Abs(reduced-baseline*0.92) > 1e-6 {
		t.Errorf("declined score = %v, want %v", reduced, baseline*0.92)
	}
}

func TestMonthlyVelocityFactor(t *testing.T) {
	tests := []struct {
		name     string
		monthly  *TrendResult
		expected float64
	}{
		{"nil is neutral", nil, 1.0},
		{"new keyword is neutral", &TrendResult{Status: TrendNew, Variation: 0}, 1.0},
		{"strong climb", &TrendResult{Status: TrendImproved, Variation: 11}, 1.15},
		{"climb", &TrendResult{Status: TrendImproved, Variation: 6}, 1.08},
		{"flat", &TrendResult{Status: TrendStable, Variation: 0}, 1.0},
		{"small decline", &TrendResult{Status: TrendDegraded, Variation: -3}, 1.0},
		{"significant decline", &TrendResult{Status: TrendDegraded, Variation: -5}, 0.92},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := monthlyVelocityFactor(tt.monthly); got != tt.expected {
				t.Errorf("monthlyVelocityFactor = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNoiseFloor(t *testing.T) {
	scorer := newTestScorer()

	tests := []struct {
		trailing int64
		expected float64
	}{
		{0, 1},       // never below 1
		{500, 1},     // 0.5 rounds up to the floor of 1
		{10000, 10},  // 0.1%
		{1000000, 1000},
	}

	for _, tt := range tests {
		if got := scorer.NoiseFloor(tt.trailing); got != tt.expected {
			t.Errorf("NoiseFloor(%d) = %v, want %v", tt.trailing, got, tt.expected)
		}
	}
}

func TestOpportunityScoreCandidatePool(t *testing.T) {
	scorer := newTestScorer()

	tests := []struct {
		name    string
		k       KeywordData
		monthly *TrendResult
		want    bool
	}{
		{
			"striking distance qualifies",
			KeywordData{Position: 12, Clicks: 5, Impressions: 400},
			nil,
			true,
		},
		{
			"deep position without decline excluded",
			KeywordData{Position: 35, Clicks: 2, Impressions: 400},
			&TrendResult{Status: TrendStable, Variation: -2},
			false,
		},
		{
			"deep position in significant decline qualifies",
			KeywordData{Position: 35, Clicks: 2, Impressions: 400},
			&TrendResult{Status: TrendDegraded, Variation: -6},
			true,
		},
		{
			"below minimum impressions excluded",
			KeywordData{Position: 12, Clicks: 1, Impressions: 29},
			nil,
			false,
		},
		{
			"unranked excluded",
			KeywordData{Position: 0, Clicks: 0, Impressions: 400},
			nil,
			false,
		},
		{
			"zero impressions excluded",
			KeywordData{Position: 12, Clicks: 0, Impressions: 0},
			nil,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := scorer.OpportunityScore(tt.k, tt.monthly, nil)
			if ok != tt.want {
				t.Errorf("candidate = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestOpportunityScoreComposition(t *testing.T) {
	scorer := newTestScorer()

	// Position 12, 400 impressions, 5 clicks. Expected CTR at 12 is 4.8,
	// so the benchmark expects 19.2 clicks; the gap is 14.2.
	k := KeywordData{Position: 12, Clicks: 5, Impressions: 400}

	score, ok := scorer.OpportunityScore(k, nil, nil)
	if !ok {
		t.Fatal("keyword should be in the candidate pool")
	}

	gap := 400*4.8/100 - 5
	want := gap * 1.5 * 1.0 * 1.0 * 1.3 // proximity(<=15) * urgency * momentum * volume(>=200)
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", score, want)
	}
}

func TestOpportunityScoreWeighsDeclineAndMomentum(t *testing.T) {
	scorer := newTestScorer()
	k := KeywordData{Position: 8, Clicks: 2, Impressions: 600}

	neutral, _ := scorer.OpportunityScore(k, nil, nil)

	declining := &TrendResult{Status: TrendDegraded, Variation: -11}
	urgent, _ := scorer.OpportunityScore(k, declining, nil)
	if math.Abs(urgent-neutral*1.6) > 1e-6 {
		t.Errorf("urgent score = %v, want %v", urgent, neutral*1.6)
	}

	// Rising momentum down-weights; falling momentum up-weights.
	rising := &TrendResult{Status: TrendImproved, Variation: 6, Factor: 1.3}
	falling := &TrendResult{Status: TrendDegraded, Variation: -6, Factor: 0.7}

	downWeighted, _ := scorer.OpportunityScore(k, nil, rising)
	upWeighted, _ := scorer.OpportunityScore(k, nil, falling)

	if math.Abs(downWeighted-neutral*0.7) > 1e-6 {
		t.Errorf("rising keyword score = %v, want %v", downWeighted, neutral*0.7)
	}
	if math.Abs(upWeighted-neutral*1.3) > 1e-6 {
		t.Errorf("falling keyword score = %v, want %v", upWeighted, neutral*1.3)
	}
}

func TestValidateMetrics(t *testing.T) {
	tests := []struct {
		name        string
		position    float64
		clicks      int64
		impressions int64
		wantErr     bool
	}{
		{"valid", 3, 10, 100, false},
		{"zero values are legal", 0, 0, 0, false},
		{"negative position", -1, 0, 0, true},
		{"negative clicks", 1, -5, 100, true},
		{"negative impressions", 1, 0, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetrics(tt.position, tt.clicks, tt.impressions)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMetrics() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
