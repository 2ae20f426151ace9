package keywords

import (
	"fmt"
	"time"

	models "serp-radar/database/models_pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles database operations for keywords and their metric samples
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new keyword repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetActiveKeywords retrieves all active keywords
func (r *Repository) GetActiveKeywords() ([]models.Keyword, error) {
	var kws []models.Keyword
	if err := r.db.Where("is_active = ?", true).Order("id").Find(&kws).Error; err != nil {
		return nil, fmt.Errorf("GetActiveKeywords: %w", err)
	}
	return kws, nil
}

// GetKeyword retrieves a keyword by id
func (r *Repository) GetKeyword(id int64) (*models.Keyword, error) {
	var kw models.Keyword
	err := r.db.First(&kw, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("GetKeyword: %w", err)
	}
	return &kw, nil
}

// GetLatestSamples returns the most recent sample per keyword. The order
// is made explicit (date DESC) rather than relying on any default fetch
// order; "latest position" is always the head of that explicit ordering.
func (r *Repository) GetLatestSamples(keywordIDs []int64) (map[int64]models.MetricSample, error) {
	if len(keywordIDs) == 0 {
		return map[int64]models.MetricSample{}, nil
	}

	var samples []models.MetricSample
	err := r.db.
		Where("keyword_id IN ?", keywordIDs).
		Order("keyword_id, date DESC").
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("GetLatestSamples: %w", err)
	}

	latest := make(map[int64]models.MetricSample)
	for _, s := range samples {
		if _, seen := latest[s.KeywordID]; !seen {
			latest[s.KeywordID] = s
		}
	}
	return latest, nil
}

// GetSamplesSince retrieves all samples for a keyword from a date onward,
// most recent first.
func (r *Repository) GetSamplesSince(keywordID int64, since time.Time) ([]models.MetricSample, error) {
	var samples []models.MetricSample
	err := r.db.
		Where("keyword_id = ? AND date >= ?", keywordID, since).
		Order("date DESC").
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("GetSamplesSince: %w", err)
	}
	return samples, nil
}

// UpsertSample inserts or updates a sample by (keyword_id, date). Samples
// are append-only per day; a later sync for the same day overwrites the
// metrics rather than duplicating the row.
func (r *Repository) UpsertSample(sample *models.MetricSample) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "keyword_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"position", "clicks", "impressions"}),
	}).Create(sample).Error
	if err != nil {
		return fmt.Errorf("UpsertSample: %w", err)
	}
	return nil
}

// SetRelevance updates the operator-assigned relevance score (0-5)
func (r *Repository) SetRelevance(keywordID int64, score int) error {
	err := r.db.Model(&models.Keyword{}).
		Where("id = ?", keywordID).
		Update("relevance_score", score).Error
	if err != nil {
		return fmt.Errorf("SetRelevance: %w", err)
	}
	return nil
}
