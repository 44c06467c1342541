package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/alfredflix/alfredflix/app/models"
)

// ReferralFinalCents is the flat first-month price for referred signups.
const ReferralFinalCents int64 = 100

// UserStore is the slice of the user repository the resolver needs.
type UserStore interface {
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

// CouponStore is the slice of the coupon repository the resolver needs.
type CouponStore interface {
	GetByCode(code string) (*models.Coupon, error)
	HasRedemption(couponID uint, email string) (bool, error)
}

// Result is the outcome of validating a discount code. Invalid codes are a
// normal business outcome and carry a user-facing message; transport-level
// failures surface as errors instead.
type Result struct {
	Valid      bool        `json:"valid"`
	Message    string      `json:"message,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

func invalid(message string) Result {
	return Result{Valid: false, Message: message}
}

// Resolver validates referral and coupon codes and prices them against a plan.
type Resolver struct {
	users   UserStore
	coupons CouponStore
	now     func() time.Time
}

// NewResolver creates a resolver backed by the given stores.
func NewResolver(users UserStore, coupons CouponStore) *Resolver {
	return &Resolver{
		users:   users,
		coupons: coupons,
		now:     time.Now,
	}
}

// Resolve validates the supplied codes against the plan and returns the
// priced resolution. A referral code wins when both codes are supplied.
// No codes means a valid result with a nil resolution: full price.
func (r *Resolver) Resolve(ctx context.Context, plan Plan, referralCode, couponCode, signupUsername, signupEmail string) (Result, error) {
	if !plan.Valid() {
		return Result{}, ErrUnknownPlan
	}

	referralCode = strings.TrimSpace(referralCode)
	couponCode = strings.TrimSpace(couponCode)

	if referralCode != "" {
		return r.ResolveReferral(ctx, plan, referralCode, signupUsername)
	}
	if couponCode != "" {
		return r.ResolveCoupon(ctx, plan, couponCode, signupEmail)
	}
	return Result{Valid: true}, nil
}

// ResolveReferral validates a referral code (the referrer's username) and
// prices the flat first-month referral rate.
func (r *Resolver) ResolveReferral(ctx context.Context, plan Plan, referralCode, signupUsername string) (Result, error) {
	referrer, err := r.users.GetByUsername(referralCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("Referral code not found"), nil
		}
		return Result{}, fmt.Errorf("failed to look up referral code: %w", err)
	}

	if strings.EqualFold(referrer.Username, strings.TrimSpace(signupUsername)) {
		return invalid("You cannot use your own referral code"), nil
	}
	if !referrer.IsActive() {
		return invalid("Referral code not found"), nil
	}
	if referrer.ReferralExhausted() {
		return invalid("This referral code has reached its limit"), nil
	}

	base := plan.BasePriceCents()
	resolution := &Resolution{
		Kind:          DiscountAmount,
		Source:        SourceReferral,
		Description:   fmt.Sprintf("Referred by %s: first month for $%.2f", referrer.Username, float64(ReferralFinalCents)/100),
		OriginalCents: base,
		DiscountCents: base - ReferralFinalCents,
		FinalCents:    ReferralFinalCents,
		ReferrerID:    &referrer.ID,
	}
	return Result{Valid: true, Resolution: resolution}, nil
}

// ResolveCoupon validates a coupon code and prices its discount.
func (r *Resolver) ResolveCoupon(ctx context.Context, plan Plan, couponCode, signupEmail string) (Result, error) {
	coupon, err := r.coupons.GetByCode(couponCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid("Coupon code not found"), nil
		}
		return Result{}, fmt.Errorf("failed to look up coupon code: %w", err)
	}

	now := r.now()
	if !coupon.IsActive {
		return invalid("This coupon is no longer active"), nil
	}
	if coupon.IsExpired(now) {
		return invalid("This coupon has expired"), nil
	}
	if coupon.IsExhausted() {
		return invalid("This coupon has reached its usage limit"), nil
	}

	email := strings.ToLower(strings.TrimSpace(signupEmail))
	if coupon.OneTimeUse && email != "" {
		redeemed, err := r.coupons.HasRedemption(coupon.ID, email)
		if err != nil {
			return Result{}, fmt.Errorf("failed to check coupon redemption: %w", err)
		}
		if redeemed {
			return invalid("This coupon has already been redeemed"), nil
		}
	}
	if coupon.NewAccountsOnly && email != "" {
		_, err := r.users.GetByEmail(email)
		if err == nil {
			return invalid("This coupon is valid for new accounts only"), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, fmt.Errorf("failed to check existing account: %w", err)
		}
	}

	base := plan.BasePriceCents()
	discount := Discount{Kind: DiscountKind(coupon.DiscountType), Value: coupon.DiscountValue}
	discountCents, finalCents := discount.Apply(base)

	resolution := &Resolution{
		Kind:          discount.Kind,
		Source:        SourceCoupon,
		Description:   fmt.Sprintf("%s: %s", coupon.Name, coupon.DisplayDiscount()),
		OriginalCents: base,
		DiscountCents: discountCents,
		FinalCents:    finalCents,
		CouponID:      &coupon.ID,
	}
	return Result{Valid: true, Resolution: resolution}, nil
}
