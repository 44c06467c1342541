package billing

import (
	"github.com/alfredflix/alfredflix/app/models"
)

// DiscountKind tags the discount shape. Referrals resolve to an amount
// discount whose value is computed from the plan price, so the kinds here
// match the coupon discount types one to one.
type DiscountKind string

const (
	DiscountPercent   DiscountKind = models.DISCOUNT_TYPE_PERCENT
	DiscountAmount    DiscountKind = models.DISCOUNT_TYPE_AMOUNT
	DiscountFreeMonth DiscountKind = models.DISCOUNT_TYPE_FREE_MONTH
)

// Discount is a single discount rule: a kind plus its value. Value is a
// whole percentage for percent discounts and cents for amount discounts;
// free month ignores it.
type Discount struct {
	Kind  DiscountKind
	Value int64
}

// Resolution is the priced outcome of applying a discount to a plan.
// OriginalCents - DiscountCents == FinalCents always holds and FinalCents
// is never negative.
type Resolution struct {
	Kind          DiscountKind `json:"kind"`
	Source        string       `json:"source"`
	Description   string       `json:"description"`
	OriginalCents int64        `json:"original_cents"`
	DiscountCents int64        `json:"discount_cents"`
	FinalCents    int64        `json:"final_cents"`
	CouponID      *uint        `json:"-"`
	ReferrerID    *uint        `json:"-"`
}

// Discount sources recorded on a Resolution.
const (
	SourceReferral = "referral"
	SourceCoupon   = "coupon"
)

// Apply computes the discounted price for a base amount. Percent discounts
// round half up on the discounted cents; amount discounts never push the
// final price below zero.
func (d Discount) Apply(baseCents int64) (discountCents, finalCents int64) {
	switch d.Kind {
	case DiscountPercent:
		discountCents = (baseCents*d.Value + 50) / 100
		if discountCents > baseCents {
			discountCents = baseCents
		}
	case DiscountAmount:
		discountCents = d.Value
		if discountCents > baseCents {
			discountCents = baseCents
		}
	case DiscountFreeMonth:
		discountCents = baseCents
	}
	if discountCents < 0 {
		discountCents = 0
	}
	return discountCents, baseCents - discountCents
}
