package repository

import (
	"github.com/alfredflix/alfredflix/app/models"
	"gorm.io/gorm"
)

// contactRepository implements the ContactRepository interface
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact message repository instance
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create creates a new contact message in the database
func (r *contactRepository) Create(message *models.ContactMessage) error {
	return r.db.Create(message).Error
}

// GetByID retrieves a contact message by its ID
func (r *contactRepository) GetByID(id uint) (*models.ContactMessage, error) {
	var message models.ContactMessage
	err := r.db.First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// List retrieves a paginated list of contact messages, newest first
func (r *contactRepository) List(offset, limit int) ([]models.ContactMessage, error) {
	var messages []models.ContactMessage
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&messages).Error
	return messages, err
}

// ListByStatus retrieves contact messages with a given status
func (r *contactRepository) ListByStatus(status string, offset, limit int) ([]models.ContactMessage, error) {
	var messages []models.ContactMessage
	err := r.db.Where("status = ?", status).Order("created_at DESC").Offset(offset).Limit(limit).Find(&messages).Error
	return messages, err
}

// Count returns the total number of contact messages
func (r *contactRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.ContactMessage{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of contact messages with the given status
func (r *contactRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ContactMessage{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// UpdateStatus transitions a contact message to a new status
func (r *contactRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.ContactMessage{}).Where("id = ?", id).Update("status", status).Error
}

// Delete removes a contact message by its ID
func (r *contactRepository) Delete(id uint) error {
	return r.db.Delete(&models.ContactMessage{}, id).Error
}
