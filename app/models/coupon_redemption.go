package models

import "time"

// CouponRedemption records a single successful coupon redemption. The unique
// (coupon_id, redeemer_email) index is what enforces one-time-use coupons per
// person rather than per global counter; email is the key because the account
// does not exist yet while the coupon is being validated.
type CouponRedemption struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	CouponID              uint      `gorm:"not null;index:ux_coupon_redemptions_coupon_email,unique,priority:1" json:"coupon_id"`
	RedeemerEmail         string    `gorm:"type:varchar(200);not null;index:ux_coupon_redemptions_coupon_email,unique,priority:2" json:"redeemer_email"`
	PaymentConfirmationID string    `gorm:"type:varchar(191);not null;index" json:"payment_confirmation_id"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
}
