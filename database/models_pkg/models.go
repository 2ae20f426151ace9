package models

import "time"

// Keyword represents a tracked search keyword with its lifecycle flags.
// A keyword is matched against geographic/page groups via its free-form
// match text or its target URL, and carries a 0-5 relevance score set by
// the operator.
//
// Key Fields:
//   - Text: the search query as tracked in the search console
//   - IsActive: inactive keywords are skipped by every scoring pass
//   - RelevanceScore: operator-assigned business relevance (0-5)
//   - TargetURL: page the keyword is expected to rank for (optional)
//   - MatchText: free-form text used for geographic matching when the
//     keyword text itself is not representative (optional)
type Keyword struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Text           string    `gorm:"size:255;uniqueIndex;not null" json:"text"`
	IsActive       bool      `gorm:"index;not null;default:true" json:"is_active"`
	RelevanceScore int       `gorm:"not null;default:3" json:"relevance_score"`
	TargetURL      *string   `gorm:"size:512" json:"target_url,omitempty"`
	MatchText      *string   `gorm:"size:255" json:"match_text,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Keyword
func (Keyword) TableName() string {
	return "keywords"
}

// MetricSample is the immutable daily fact for one keyword: average
// position, clicks and impressions for a single day. Position 0 means
// "not ranked" and is excluded from every ratio computation.
//
// Samples are upserted by (keyword_id, date); a later sync overwrites the
// day rather than duplicating it. All scores are recomputed from samples
// on demand, never read back from persisted score columns.
type MetricSample struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	KeywordID   int64     `gorm:"uniqueIndex:idx_keyword_date;index;not null" json:"keyword_id"`
	Date        time.Time `gorm:"uniqueIndex:idx_keyword_date;type:date;not null" json:"date"`
	Position    float64   `gorm:"type:decimal(6,2);not null" json:"position"` // 0 = unranked
	Clicks      int64     `gorm:"not null;default:0" json:"clicks"`
	Impressions int64     `gorm:"not null;default:0" json:"impressions"`
}

// TableName specifies the table name for MetricSample
func (MetricSample) TableName() string {
	return "metric_samples"
}

// CTR returns clicks/impressions as a percentage, 0 when impressions is 0.
func (s *MetricSample) CTR() float64 {
	if s.Impressions == 0 {
		return 0
	}
	return float64(s.Clicks) / float64(s.Impressions) * 100
}

// DailyTotal is a whole-dataset aggregate for one day, independent of the
// per-keyword breakdown. Used for dataset health/trend metrics, not for
// per-keyword ranking.
type DailyTotal struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Date        time.Time `gorm:"uniqueIndex;type:date;not null" json:"date"`
	Clicks      int64     `gorm:"not null;default:0" json:"clicks"`
	Impressions int64     `gorm:"not null;default:0" json:"impressions"`
	AvgPosition float64   `gorm:"type:decimal(6,2)" json:"avg_position"`
}

// TableName specifies the table name for DailyTotal
func (DailyTotal) TableName() string {
	return "daily_totals"
}

// Group kinds
const (
	GroupKindCity = "city"
	GroupKindPage = "page"
)

// GeoGroup is a named grouping key keywords are matched against: either a
// city (Name + Region, matched by normalized substring containment) or a
// page (URLPath, matched by exact normalized path).
//
// LastOptimizedAt drives the cooldown: a group optimized within the
// cooldown window is suppressed from the prioritized output regardless of
// its score.
type GeoGroup struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string     `gorm:"size:255;index;not null" json:"name"`
	Region          string     `gorm:"size:255" json:"region,omitempty"`
	Kind            string     `gorm:"size:10;index;not null" json:"kind"` // city, page
	URLPath         *string    `gorm:"size:512" json:"url_path,omitempty"`
	LastOptimizedAt *time.Time `gorm:"index" json:"last_optimized_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TableName specifies the table name for GeoGroup
func (GeoGroup) TableName() string {
	return "geo_groups"
}

// RankingSnapshot stores the JSON payload of one full ranking run. It is
// a cached view for the read API and history, never the source of truth:
// every refresh recomputes all scores from samples.
type RankingSnapshot struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ComputedAt time.Time `gorm:"index;not null" json:"computed_at"`
	Payload    []byte    `gorm:"type:jsonb;not null" json:"payload"`
}

// TableName specifies the table name for RankingSnapshot
func (RankingSnapshot) TableName() string {
	return "ranking_snapshots"
}
