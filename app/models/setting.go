package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Setting represents a system setting
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key" validate:"required,min=1,max=255"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:50;not null" json:"type" validate:"required"` // string, boolean, integer, float
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppSettings represents the application settings structure
type AppSettings struct {
	SiteTitle     string `json:"site_title" validate:"required,min=1,max=255"`
	SupportEmail  string `json:"support_email" validate:"omitempty,email"`
	SignupEnabled bool   `json:"signup_enabled"`
	mu            sync.RWMutex
}

// Global settings instance
var (
	appSettings *AppSettings
	settingsMu  sync.RWMutex
)

// GetAppSettings returns the current application settings
func GetAppSettings() *AppSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if appSettings == nil {
		return &AppSettings{
			SiteTitle:     "AlfredFlix",
			SignupEnabled: true,
		}
	}
	return appSettings
}

// LoadSettings loads settings from database into memory
func LoadSettings(db *gorm.DB) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	// Initialize with defaults
	appSettings = &AppSettings{
		SiteTitle:     "AlfredFlix",
		SupportEmail:  "support@alfredflix.example",
		SignupEnabled: true,
	}

	// Load settings from database
	var settings []Setting
	if err := db.Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Apply loaded settings
	for _, setting := range settings {
		switch setting.Key {
		case "site_title":
			appSettings.SiteTitle = setting.Value
		case "support_email":
			appSettings.SupportEmail = setting.Value
		case "signup_enabled":
			appSettings.SignupEnabled = setting.Value == "true"
		}
	}

	return nil
}

// SaveSettings saves current settings to database
func SaveSettings(db *gorm.DB, settings *AppSettings) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	v := validator.New()
	if err := v.Struct(settings); err != nil {
		return err
	}

	pairs := map[string]string{
		"site_title":     settings.SiteTitle,
		"support_email":  settings.SupportEmail,
		"signup_enabled": fmt.Sprintf("%t", settings.SignupEnabled),
	}
	types := map[string]string{
		"site_title":     "string",
		"support_email":  "string",
		"signup_enabled": "boolean",
	}

	for key, value := range pairs {
		setting := Setting{Key: key, Value: value, Type: types[key]}
		if err := db.Where("setting_key = ?", key).
			Assign(map[string]interface{}{"value": value, "type": types[key]}).
			FirstOrCreate(&setting).Error; err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
		if err := db.Model(&Setting{}).Where("setting_key = ?", key).
			Update("value", value).Error; err != nil {
			return fmt.Errorf("failed to update setting %s: %w", key, err)
		}
	}

	appSettings = settings
	return nil
}

// IsSignupEnabled reports whether new signups are currently accepted.
func (s *AppSettings) IsSignupEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SignupEnabled
}

// GetSupportEmail returns the configured support contact address.
func (s *AppSettings) GetSupportEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SupportEmail
}
