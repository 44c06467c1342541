package repository

import (
	"fmt"
	"time"

	"github.com/alfredflix/alfredflix/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// signupRepository implements the SignupRepository interface
type signupRepository struct {
	db *gorm.DB
}

// NewSignupRepository creates a new signup completion repository instance
func NewSignupRepository(db *gorm.DB) SignupRepository {
	return &signupRepository{db: db}
}

// CreateCompletionIfNotExists inserts the completion record unless one with
// the same payment confirmation id already exists. The unique index plus ON
// CONFLICT DO NOTHING makes the check-and-insert a single atomic statement,
// so a retried completion observes created == false and skips side effects.
func (r *signupRepository) CreateCompletionIfNotExists(completion *models.SignupCompletion) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_confirmation_id"}},
		DoNothing: true,
	}).Create(completion)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record signup completion: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetCompletionByConfirmationID retrieves a completion by payment confirmation id
func (r *signupRepository) GetCompletionByConfirmationID(confirmationID string) (*models.SignupCompletion, error) {
	var completion models.SignupCompletion
	err := r.db.Where("payment_confirmation_id = ?", confirmationID).First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

// Count returns the total number of completed signups
func (r *signupRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.SignupCompletion{}).Count(&count).Error
	return count, err
}

// GetDailyStats returns daily completed-signup counts for a date range
func (r *signupRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	err := r.db.Model(&models.SignupCompletion{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get daily signup stats: %w", err)
	}

	dailyStats := make([]models.DailyStats, len(results))
	for i, result := range results {
		dailyStats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}

	return dailyStats, nil
}
