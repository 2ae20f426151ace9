package metrics

import (
	"database/sql"
	"fmt"
	"time"
)

// Repository runs aggregation queries over the metric samples using the
// raw SQL connection. Window averages and distinct data-bearing dates are
// computed in the database so the engine never has to page full sample
// series into memory.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new metrics repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// WindowAveragePositions returns, per keyword, the average position over
// [from, to] (dates inclusive). Unranked samples (position = 0) are
// excluded from the average; keywords with no ranked sample in the window
// are absent from the result.
func (r *Repository) WindowAveragePositions(from, to time.Time) (map[int64]float64, error) {
	rows, err := r.db.Query(`
		SELECT keyword_id, AVG(position)
		FROM metric_samples
		WHERE date >= $1 AND date <= $2 AND position > 0
		GROUP BY keyword_id`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("WindowAveragePositions: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]float64)
	for rows.Next() {
		var keywordID int64
		var avg float64
		if err := rows.Scan(&keywordID, &avg); err != nil {
			return nil, fmt.Errorf("WindowAveragePositions scan: %w", err)
		}
		result[keywordID] = avg
	}
	return result, rows.Err()
}

// DataBearingDates returns the most recent distinct dates that carry at
// least one sample, newest first, capped at limit. Sparse series are the
// norm: the momentum windows are cut from these dates, never from
// calendar days.
func (r *Repository) DataBearingDates(limit int) ([]time.Time, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT date
		FROM metric_samples
		ORDER BY date DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("DataBearingDates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("DataBearingDates scan: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// AveragePositionsForDates returns per-keyword average positions across an
// explicit set of dates (the selected momentum window).
func (r *Repository) AveragePositionsForDates(dates []time.Time) (map[int64]float64, error) {
	if len(dates) == 0 {
		return map[int64]float64{}, nil
	}

	// Build the parameter list by hand; lib/pq has no array binding for
	// date IN (...) without pq.Array on a typed column.
	query := `
		SELECT keyword_id, AVG(position)
		FROM metric_samples
		WHERE position > 0 AND date IN (`
	args := make([]interface{}, len(dates))
	for i, d := range dates {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", i+1)
		args[i] = d
	}
	query += `) GROUP BY keyword_id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("AveragePositionsForDates: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]float64)
	for rows.Next() {
		var keywordID int64
		var avg float64
		if err := rows.Scan(&keywordID, &avg); err != nil {
			return nil, fmt.Errorf("AveragePositionsForDates scan: %w", err)
		}
		result[keywordID] = avg
	}
	return result, rows.Err()
}

// TrailingImpressions returns the total impressions across all keywords
// over the trailing N days. Feeds the ranking noise floor.
func (r *Repository) TrailingImpressions(days int) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(impressions), 0)
		FROM metric_samples
		WHERE date >= CURRENT_DATE - $1::int`,
		days,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("TrailingImpressions: %w", err)
	}
	return total.Int64, nil
}

// DailyTotal is one whole-dataset aggregate row
type DailyTotal struct {
	Date        time.Time `json:"date"`
	Clicks      int64     `json:"clicks"`
	Impressions int64     `json:"impressions"`
	AvgPosition float64   `json:"avg_position"`
}

// DailyTotals returns the aggregate rows for the trailing N days, newest
// first.
func (r *Repository) DailyTotals(days int) ([]DailyTotal, error) {
	rows, err := r.db.Query(`
		SELECT date, clicks, impressions, avg_position
		FROM daily_totals
		WHERE date >= CURRENT_DATE - $1::int
		ORDER BY date DESC`,
		days,
	)
	if err != nil {
		return nil, fmt.Errorf("DailyTotals: %w", err)
	}
	defer rows.Close()

	var totals []DailyTotal
	for rows.Next() {
		var t DailyTotal
		if err := rows.Scan(&t.Date, &t.Clicks, &t.Impressions, &t.AvgPosition); err != nil {
			return nil, fmt.Errorf("DailyTotals scan: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// RefreshDailyTotals recomputes the whole-dataset daily aggregates from
// the samples for the trailing N days. Idempotent upsert by date.
func (r *Repository) RefreshDailyTotals(days int) error {
	_, err := r.db.Exec(`
		INSERT INTO daily_totals (date, clicks, impressions, avg_position)
		SELECT date,
		       SUM(clicks),
		       SUM(impressions),
		       COALESCE(AVG(position) FILTER (WHERE position > 0), 0)
		FROM metric_samples
		WHERE date >= CURRENT_DATE - $1::int
		GROUP BY date
		ON CONFLICT (date) DO UPDATE SET
			clicks = EXCLUDED.clicks,
			impressions = EXCLUDED.impressions,
			avg_position = EXCLUDED.avg_position`,
		days,
	)
	if err != nil {
		return fmt.Errorf("RefreshDailyTotals: %w", err)
	}
	return nil
}
