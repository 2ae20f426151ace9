package groups

import (
	"fmt"
	"time"

	models "serp-radar/database/models_pkg"

	"gorm.io/gorm"
)

// Repository handles database operations for geographic and page groups
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new group repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetGroupsByKind retrieves all groups of one kind (city or page)
func (r *Repository) GetGroupsByKind(kind string) ([]models.GeoGroup, error) {
	var groups []models.GeoGroup
	if err := r.db.Where("kind = ?", kind).Order("id").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("GetGroupsByKind: %w", err)
	}
	return groups, nil
}

// GetGroup retrieves a group by id
func (r *Repository) GetGroup(id int64) (*models.GeoGroup, error) {
	var group models.GeoGroup
	err := r.db.First(&group, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("GetGroup: %w", err)
	}
	return &group, nil
}

// MarkOptimized stamps the group's cooldown. The group disappears from
// prioritized output until the cooldown window elapses.
func (r *Repository) MarkOptimized(id int64, at time.Time) error {
	result := r.db.Model(&models.GeoGroup{}).
		Where("id = ?", id).
		Update("last_optimized_at", at)
	if result.Error != nil {
		return fmt.Errorf("MarkOptimized: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
