package repository

import (
	"time"

	"github.com/alfredflix/alfredflix/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	Search(query string) ([]models.User, error)
	AddReferralCredit(userID uint, amountCents int64) (bool, error)
	CountReferrals(userID uint) (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// CouponRepository defines the interface for coupon-related database operations
type CouponRepository interface {
	Create(coupon *models.Coupon) error
	GetByID(id uint) (*models.Coupon, error)
	GetByCode(code string) (*models.Coupon, error)
	Update(coupon *models.Coupon) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Coupon, error)
	Count() (int64, error)
	IncrementUse(couponID uint) (bool, error)
	HasRedemption(couponID uint, email string) (bool, error)
	CreateRedemption(redemption *models.CouponRedemption) error
	ListRedemptions(couponID uint) ([]models.CouponRedemption, error)
}

// SignupRepository records finalized signups for idempotent completion
type SignupRepository interface {
	CreateCompletionIfNotExists(completion *models.SignupCompletion) (bool, error)
	GetCompletionByConfirmationID(confirmationID string) (*models.SignupCompletion, error)
	Count() (int64, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// ContactRepository defines the interface for contact message operations
type ContactRepository interface {
	Create(message *models.ContactMessage) error
	GetByID(id uint) (*models.ContactMessage, error)
	List(offset, limit int) ([]models.ContactMessage, error)
	ListByStatus(status string, offset, limit int) ([]models.ContactMessage, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
}

// WatchProgressRepository defines the interface for playback position tracking
type WatchProgressRepository interface {
	Upsert(progress *models.WatchProgress) error
	GetByUserAndItem(userID uint, itemID string) (*models.WatchProgress, error)
	ListByUser(userID uint, offset, limit int) ([]models.WatchProgress, error)
	CountByUser(userID uint) (int64, error)
	DeleteByUserAndItem(userID uint, itemID string) error
}

// SettingRepository exposes the storefront settings snapshot
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
	Reload() error
	SetSignupEnabled(enabled bool) error
}

// QueueRepository inspects provisioning job state in the cache
type QueueRepository interface {
	ListJobKeys() ([]string, error)
	GetJobData(key string) (string, error)
	GetJobTTL(key string) (time.Duration, error)
	DeleteJobs(keys []string) (int64, error)
	QueueDepths() (pending int64, processing int64, err error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User          UserRepository
	Coupon        CouponRepository
	Signup        SignupRepository
	Contact       ContactRepository
	WatchProgress WatchProgressRepository
	Setting       SettingRepository
	Queue         QueueRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Coupon:        NewCouponRepository(db),
		Signup:        NewSignupRepository(db),
		Contact:       NewContactRepository(db),
		WatchProgress: NewWatchProgressRepository(db),
		Setting:       NewSettingRepository(db),
		Queue:         NewQueueRepository(),
	}
}
