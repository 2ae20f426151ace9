package app

import (
	"math"
	"testing"
	"time"
)

func TestCompareWindows(t *testing.T) {
	calc := NewTrendCalculator()

	recent := map[int64]float64{
		1: 4.0,  // improved from 9.0
		2: 12.0, // degraded from 8.0
		3: 6.0,  // stable
		4: 3.0,  // no prior data
	}
	prior := map[int64]float64{
		1: 9.0,
		2: 8.0,
		3: 6.0,
		5: 15.0, // gone from recent window
	}

	results := calc.CompareWindows(recent, prior)

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	tests := []struct {
		keywordID int64
		variation float64
		status    TrendStatus
		factor    float64
	}{
		{1, 5.0, TrendImproved, 1.3},
		{2, -4.0, TrendDegraded, 0.85},
		{3, 0.0, TrendStable, 1.0},
		{4, 0.0, TrendNew, 1.0},
	}

	for _, tt := range tests {
		r, ok := results[tt.keywordID]
		if !ok {
			t.Fatalf("keyword %d missing from results", tt.keywordID)
		}
		if r.Variation != tt.variation {
			t.Errorf("keyword %d: variation = %v, want %v", tt.keywordID, r.Variation, tt.variation)
		}
		if r.Status != tt.status {
			t.Errorf("keyword %d: status = %v, want %v", tt.keywordID, r.Status.Label(), tt.status.Label())
		}
		if r.Factor != tt.factor {
			t.Errorf("keyword %d: factor = %v, want %v", tt.keywordID, r.Factor, tt.factor)
		}
	}

	// Keyword 5 has no recent-window data and must be absent, not zeroed.
	if _, ok := results[5]; ok {
		t.Error("keyword 5 should be absent from results")
	}
}

func TestCompareWindowsRoundsVariation(t *testing.T) {
	calc := NewTrendCalculator()

	results := calc.CompareWindows(
		map[int64]float64{1: 7.04},
		map[int64]float64{1: 9.17},
	)

	if got := results[1].Variation; math.Abs(got-2.1) > 1e-9 {
		t.Errorf("variation = %v, want 2.1", got)
	}
}

func TestMomentumFactor(t *testing.T) {
	tests := []struct {
		variation float64
		expected  float64
	}{
		{8, 1.3},
		{5, 1.3},
		{3, 1.15},
		{2, 1.15},
		{1, 1.05},
		{0.5, 1.05},
		{0.2, 1.0},
		{0, 1.0},
		{-0.4, 1.0},
		{-0.5, 0.95},
		{-1.5, 0.95},
		{-2, 0.85},
		{-4.9, 0.85},
		{-5, 0.7},
		{-12, 0.7},
	}

	for _, tt := range tests {
		if got := MomentumFactor(tt.variation); got != tt.expected {
			t.Errorf("MomentumFactor(%v) = %v, want %v", tt.variation, got, tt.expected)
		}
	}
}

func TestMomentumFactorMonotonic(t *testing.T) {
	prev := MomentumFactor(-20)
	for v := -19.5; v <= 20; v += 0.5 {
		got := MomentumFactor(v)
		if got < prev {
			t.Fatalf("MomentumFactor not monotonic at variation %v: %v < %v", v, got, prev)
		}
		prev = got
	}
}

func TestSelectDataBearingWindows(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	// Sparse series: 7 data-bearing dates spread over a month.
	dates := []time.Time{
		day(30), day(27), day(26), day(20), day(12), day(5), day(0),
	}

	recent, prior, ok := SelectDataBearingWindows(dates, 3, 4)
	if !ok {
		t.Fatal("expected windows to be selected")
	}
	if len(recent) != 3 || len(prior) != 4 {
		t.Fatalf("window sizes = %d/%d, want 3/4", len(recent), len(prior))
	}
	if !recent[0].Equal(day(30)) || !recent[2].Equal(day(26)) {
		t.Errorf("recent window picked wrong dates: %v", recent)
	}
	if !prior[0].Equal(day(20)) || !prior[3].Equal(day(0)) {
		t.Errorf("prior window picked wrong dates: %v", prior)
	}

	// Too few dates degrades to no-data, not an error.
	if _, _, ok := SelectDataBearingWindows(dates[:5], 3, 4); ok {
		t.Error("expected ok=false with only 5 data-bearing dates")
	}
}

func TestMonthWindows(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	recentStart, recentEnd, priorStart, priorEnd := MonthWindows(now)

	if !recentStart.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("recentStart = %v", recentStart)
	}
	if !recentEnd.Equal(now) {
		t.Errorf("recentEnd = %v", recentEnd)
	}
	if !priorStart.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("priorStart = %v", priorStart)
	}
	if !priorEnd.Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("priorEnd = %v", priorEnd)
	}
}

func TestTrendStatusLabels(t *testing.T) {
	tests := []struct {
		status TrendStatus
		label  string
	}{
		{TrendNew, "new"},
		{TrendImproved, "improved"},
		{TrendDegraded, "degraded"},
		{TrendStable, "stable"},
	}
	for _, tt := range tests {
		if got := tt.status.Label(); got != tt.label {
			t.Errorf("Label() = %q, want %q", got, tt.label)
		}
	}
}

func TestTrendStatusLabelUnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown trend status")
		}
	}()
	_ = TrendStatus(99).Label()
}
