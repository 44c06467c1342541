package repository

import (
	"github.com/alfredflix/alfredflix/app/models"
	"gorm.io/gorm"
)

// settingRepository exposes the storefront settings as a typed snapshot.
// The settings table stores key/value rows; the models package folds them
// into AppSettings and keeps the in-memory copy every request reads.
type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new setting repository instance
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get returns the current settings snapshot.
func (r *settingRepository) Get() (*models.AppSettings, error) {
	return models.GetAppSettings(), nil
}

// Save validates and persists the settings, then swaps the snapshot.
func (r *settingRepository) Save(settings *models.AppSettings) error {
	return models.SaveSettings(r.db, settings)
}

// Reload re-reads the settings rows from the database into the snapshot.
// Called at startup and after out-of-band changes such as migrations.
func (r *settingRepository) Reload() error {
	return models.LoadSettings(r.db)
}

// SetSignupEnabled flips the signup kill switch while keeping the rest of
// the settings intact.
func (r *settingRepository) SetSignupEnabled(enabled bool) error {
	current := models.GetAppSettings()
	return models.SaveSettings(r.db, &models.AppSettings{
		SiteTitle:     current.SiteTitle,
		SupportEmail:  current.SupportEmail,
		SignupEnabled: enabled,
	})
}
