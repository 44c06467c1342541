package repository

import (
	"github.com/alfredflix/alfredflix/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// watchProgressRepository implements the WatchProgressRepository interface
type watchProgressRepository struct {
	db *gorm.DB
}

// NewWatchProgressRepository creates a new watch progress repository instance
func NewWatchProgressRepository(db *gorm.DB) WatchProgressRepository {
	return &watchProgressRepository{db: db}
}

// Upsert writes the playback position, overwriting any earlier row for the
// same user and item. Players report progress every few seconds, so this is
// the hottest write path and must stay a single statement.
func (r *watchProgressRepository) Upsert(progress *models.WatchProgress) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "jellyfin_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"position_ticks", "total_ticks", "is_watched", "updated_at"}),
	}).Create(progress).Error
}

// GetByUserAndItem retrieves the stored position for one user and item
func (r *watchProgressRepository) GetByUserAndItem(userID uint, itemID string) (*models.WatchProgress, error) {
	var progress models.WatchProgress
	err := r.db.Where("user_id = ? AND jellyfin_item_id = ?", userID, itemID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// ListByUser retrieves a user's progress entries, most recently updated first
func (r *watchProgressRepository) ListByUser(userID uint, offset, limit int) ([]models.WatchProgress, error) {
	var entries []models.WatchProgress
	err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}

// CountByUser returns the number of progress entries for a user
func (r *watchProgressRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.WatchProgress{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteByUserAndItem removes the stored position for one user and item
func (r *watchProgressRepository) DeleteByUserAndItem(userID uint, itemID string) error {
	return r.db.Where("user_id = ? AND jellyfin_item_id = ?", userID, itemID).Delete(&models.WatchProgress{}).Error
}
