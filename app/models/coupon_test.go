package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCouponIsExpired(t *testing.T) {
	now := time.Now()

	c := &Coupon{}
	assert.False(t, c.IsExpired(now), "no expiry means never expired")

	past := now.Add(-time.Hour)
	c.ExpiresAt = &past
	assert.True(t, c.IsExpired(now))

	future := now.Add(time.Hour)
	c.ExpiresAt = &future
	assert.False(t, c.IsExpired(now))
}

func TestCouponIsExhausted(t *testing.T) {
	c := &Coupon{CurrentUses: 100}
	assert.False(t, c.IsExhausted(), "no limit means never exhausted")

	limit := int64(100)
	c.MaxUses = &limit
	assert.True(t, c.IsExhausted())

	c.CurrentUses = 99
	assert.False(t, c.IsExhausted())
}

func TestCouponRedeemable(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	limit := int64(10)

	c := &Coupon{IsActive: true, MaxUses: &limit, CurrentUses: 5, ExpiresAt: &future}
	assert.True(t, c.Redeemable(now))

	c.IsActive = false
	assert.False(t, c.Redeemable(now))
}

func TestCouponDisplayDiscount(t *testing.T) {
	tests := []struct {
		coupon Coupon
		want   string
	}{
		{Coupon{DiscountType: DISCOUNT_TYPE_PERCENT, DiscountValue: 25}, "25% off"},
		{Coupon{DiscountType: DISCOUNT_TYPE_AMOUNT, DiscountValue: 500}, "$5.00 off"},
		{Coupon{DiscountType: DISCOUNT_TYPE_FREE_MONTH}, "Free first month"},
		{Coupon{DiscountType: "bogus"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.coupon.DisplayDiscount())
	}
}
