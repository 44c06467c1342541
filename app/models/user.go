package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"

	STATUS_ACTIVE               = "active"
	STATUS_SUSPENDED            = "suspended"
	STATUS_PROVISIONING_PENDING = "provisioning_pending"

	// Referral credit bookkeeping, in minor currency units.
	// A referrer earns 500 cents per completed referral, capped at three.
	ReferralCreditPerSignupCents int64 = 500
	ReferralCreditCapCents       int64 = 1500
)

type User struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Username             string         `gorm:"uniqueIndex;type:varchar(150) CHARACTER SET utf8 COLLATE utf8_bin" json:"username" validate:"required,min=3,max=150"`
	Email                string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password             string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role                 string         `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Status               string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active suspended provisioning_pending"`
	PlanType             string         `gorm:"type:varchar(50);default:'standard'" json:"plan_type" validate:"oneof=standard premium"`
	JellyfinUserID       string         `gorm:"type:varchar(100);default:null;index" json:"-"`
	StripeCustomerID     string         `gorm:"type:varchar(100);default:null" json:"-"`
	StripeSubscriptionID string         `gorm:"type:varchar(100);default:null" json:"-"`
	ReferralCreditCents  int64          `gorm:"not null;default:0" json:"referral_credit_cents"`
	ReferredByID         *uint          `gorm:"default:null;index" json:"-"`
	SignupCouponID       *uint          `gorm:"default:null" json:"-"`
	ExpiresAt            *time.Time     `gorm:"type:timestamp;default:null" json:"expires_at"`
	LastLoginAt          *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds a validated user record with a hashed password.
// Validation runs against the raw password so the length rule applies to
// what the member typed, not the bcrypt hash.
func CreateUser(username, email, password, planType string) (*User, error) {
	u := &User{
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: password,
		Role:     ROLE_USER,
		Status:   STATUS_ACTIVE,
		PlanType: planType,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.Password = pw

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// ReferralExhausted reports whether the user's referral code can no longer
// be redeemed because the credit cap has been reached.
func (u *User) ReferralExhausted() bool {
	return u.ReferralCreditCents >= ReferralCreditCapCents
}

// RemainingReferralSlots returns how many more signups this user's code can
// still be applied to before hitting the credit cap.
func (u *User) RemainingReferralSlots() int {
	remaining := (ReferralCreditCapCents - u.ReferralCreditCents) / ReferralCreditPerSignupCents
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// TotalReferrals derives the number of credited referrals from accumulated credit.
func (u *User) TotalReferrals() int {
	return int(u.ReferralCreditCents / ReferralCreditPerSignupCents)
}
