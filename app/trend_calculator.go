package app

import (
	"fmt"
	"time"
)

// TrendStatus classifies a keyword's period-over-period movement
type TrendStatus int

const (
	// TrendNew means the keyword has recent-window data but nothing in
	// the prior window.
	TrendNew TrendStatus = iota
	// TrendImproved means the average position got better (lower).
	TrendImproved
	// TrendDegraded means the average position got worse (higher).
	TrendDegraded
	// TrendStable means no measurable variation.
	TrendStable
)

// Label returns the wire label for a status. Unknown values panic: a
// status outside the defined set is a programming error, not data.
func (s TrendStatus) Label() string {
	switch s {
	case TrendNew:
		return "new"
	case TrendImproved:
		return "improved"
	case TrendDegraded:
		return "degraded"
	case TrendStable:
		return "stable"
	default:
		panic(fmt.Sprintf("unknown trend status: %d", int(s)))
	}
}

// StatusNoData is the label callers use for keywords that have no
// recent-window data at all and therefore no TrendResult.
const StatusNoData = "no_data"

// TrendResult holds one keyword's window comparison
type TrendResult struct {
	KeywordID int64       `json:"keyword_id"`
	RecentAvg float64     `json:"recent_avg"`
	PriorAvg  float64     `json:"prior_avg"`
	Variation float64     `json:"variation"` // positive = improvement
	Status    TrendStatus `json:"-"`
	Factor    float64     `json:"factor"`
}

// StatusLabel exposes the status as its wire label
func (r TrendResult) StatusLabel() string {
	return r.Status.Label()
}

// TrendCalculator compares two disjoint date windows of average positions
// and derives variation, qualitative status and a momentum factor per
// keyword. It is invoked twice per cycle: once with calendar-month
// windows, once with short data-bearing-date windows.
type TrendCalculator struct{}

// NewTrendCalculator creates a new trend calculator
func NewTrendCalculator() *TrendCalculator {
	return &TrendCalculator{}
}

// CompareWindows computes a TrendResult for every keyword present in the
// recent window. Keywords with no recent-window data are absent from the
// result, never defaulted to zero. Keywords with no prior-window data are
// flagged new with a neutral factor.
func (c *TrendCalculator) CompareWindows(recent, prior map[int64]float64) map[int64]TrendResult {
	results := make(map[int64]TrendResult, len(recent))

	for keywordID, recentAvg := range recent {
		priorAvg, hasPrior := prior[keywordID]
		if !hasPrior {
			results[keywordID] = TrendResult{
				KeywordID: keywordID,
				RecentAvg: recentAvg,
				Status:    TrendNew,
				Factor:    1.0,
			}
			continue
		}

		// Lower position is better, so a positive variation is an
		// improvement.
		variation := round1(priorAvg - recentAvg)

		status := TrendStable
		if variation > 0 {
			status = TrendImproved
		} else if variation < 0 {
			status = TrendDegraded
		}

		results[keywordID] = TrendResult{
			KeywordID: keywordID,
			RecentAvg: recentAvg,
			PriorAvg:  priorAvg,
			Variation: variation,
			Status:    status,
			Factor:    MomentumFactor(variation),
		}
	}

	return results
}

// MomentumFactor maps a position variation to a score multiplier. The
// steps are monotonic and centered at 1.0 for no meaningful change.
func MomentumFactor(variation float64) float64 {
	switch {
	case variation >= 5:
		return 1.3
	case variation >= 2:
		return 1.15
	case variation >= 0.5:
		return 1.05
	case variation > -0.5:
		return 1.0
	case variation > -2:
		return 0.95
	case variation > -5:
		return 0.85
	default:
		return 0.7
	}
}

// SelectDataBearingWindows cuts the momentum windows from the most recent
// distinct dates that actually carry samples (newest first). Sparse
// series must never be padded with zero-value calendar days. Returns
// ok=false when there are not enough dates for both windows; callers
// degrade to a no-data momentum pass.
func SelectDataBearingWindows(dates []time.Time, recentN, priorN int) (recent, prior []time.Time, ok bool) {
	if len(dates) < recentN+priorN {
		return nil, nil, false
	}
	return dates[:recentN], dates[recentN : recentN+priorN], true
}

// MonthWindows returns the calendar-month comparison windows: the current
// month up to now, and the full previous month.
func MonthWindows(now time.Time) (recentStart, recentEnd, priorStart, priorEnd time.Time) {
	year, month, _ := now.Date()
	loc := now.Location()

	recentStart = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	recentEnd = now
	priorStart = recentStart.AddDate(0, -1, 0)
	priorEnd = recentStart.AddDate(0, 0, -1)
	return recentStart, recentEnd, priorStart, priorEnd
}
