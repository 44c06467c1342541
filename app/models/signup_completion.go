package models

import "time"

// SignupCompletion is the idempotency ledger for finalized signups. One row
// per payment confirmation id; a retried completion with the same id finds
// the existing row and must not reapply discount side effects.
type SignupCompletion struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	PaymentConfirmationID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"payment_confirmation_id"`
	UserID                uint      `gorm:"not null;index" json:"user_id"`
	CouponID              *uint     `gorm:"default:null" json:"coupon_id,omitempty"`
	ReferrerID            *uint     `gorm:"default:null" json:"referrer_id,omitempty"`
	AmountCents           int64     `gorm:"not null;default:0" json:"amount_cents"`
	CreatedAt             time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
