package snapshots

import (
	"fmt"
	"time"

	models "serp-radar/database/models_pkg"

	"gorm.io/gorm"
)

// Repository persists ranking snapshots. Snapshots are cached views of a
// ranking run; the samples stay the source of truth.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new snapshot repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save persists a snapshot payload
func (r *Repository) Save(computedAt time.Time, payload []byte) error {
	snap := models.RankingSnapshot{
		ComputedAt: computedAt,
		Payload:    payload,
	}
	if err := r.db.Create(&snap).Error; err != nil {
		return fmt.Errorf("Save snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot, nil when none exists yet
func (r *Repository) GetLatest() (*models.RankingSnapshot, error) {
	var snap models.RankingSnapshot
	err := r.db.Order("computed_at DESC").First(&snap).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("GetLatest snapshot: %w", err)
	}
	return &snap, nil
}

// Prune deletes snapshots older than the retention window
func (r *Repository) Prune(olderThan time.Time) error {
	err := r.db.Where("computed_at < ?", olderThan).
		Delete(&models.RankingSnapshot{}).Error
	if err != nil {
		return fmt.Errorf("Prune snapshots: %w", err)
	}
	return nil
}
