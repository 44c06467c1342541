package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	DISCOUNT_TYPE_PERCENT    = "percent"
	DISCOUNT_TYPE_AMOUNT     = "amount"
	DISCOUNT_TYPE_FREE_MONTH = "free_month"
)

// Coupon is an admin-defined discount rule, looked up by code at signup.
type Coupon struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Code            string         `gorm:"uniqueIndex;type:varchar(100) CHARACTER SET utf8 COLLATE utf8_bin" json:"code" validate:"required,min=2,max=100"`
	Name            string         `gorm:"type:varchar(150)" json:"name" validate:"required,max=150"`
	DiscountType    string         `gorm:"type:varchar(50)" json:"discount_type" validate:"oneof=percent amount free_month"`
	DiscountValue   int64          `gorm:"not null;default:0" json:"discount_value" validate:"min=0"`
	IsActive        bool           `gorm:"not null;default:true" json:"is_active"`
	OneTimeUse      bool           `gorm:"not null;default:false" json:"one_time_use"`
	NewAccountsOnly bool           `gorm:"not null;default:false" json:"new_accounts_only"`
	MaxUses         *int64         `gorm:"default:null" json:"max_uses"`
	CurrentUses     int64          `gorm:"not null;default:0" json:"current_uses"`
	ExpiresAt       *time.Time     `gorm:"type:timestamp;default:null" json:"expires_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Coupon) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// IsExpired reports whether the coupon has an expiry in the past.
// An expired coupon is invalid regardless of IsActive.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// IsExhausted reports whether the usage limit has been reached.
func (c *Coupon) IsExhausted() bool {
	return c.MaxUses != nil && c.CurrentUses >= *c.MaxUses
}

// Redeemable reports whether the coupon can still be applied at the given time.
func (c *Coupon) Redeemable(now time.Time) bool {
	return c.IsActive && !c.IsExpired(now) && !c.IsExhausted()
}

// DisplayDiscount renders the discount for admin listings and receipts.
func (c *Coupon) DisplayDiscount() string {
	switch c.DiscountType {
	case DISCOUNT_TYPE_PERCENT:
		return fmt.Sprintf("%d%% off", c.DiscountValue)
	case DISCOUNT_TYPE_AMOUNT:
		return fmt.Sprintf("$%.2f off", float64(c.DiscountValue)/100)
	case DISCOUNT_TYPE_FREE_MONTH:
		return "Free first month"
	}
	return ""
}
