package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredflix/alfredflix/app/models"
)

func newTestResolver(users *fakeUserStore, coupons *fakeCouponStore) *Resolver {
	return NewResolver(users, coupons)
}

func TestResolveNoCodesFullPrice(t *testing.T) {
	r := newTestResolver(newFakeUserStore(), newFakeCouponStore())

	result, err := r.Resolve(context.Background(), PlanStandard, "", "", "newbie", "newbie@example.com")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Nil(t, result.Resolution)
}

func TestResolveReferralFlatFirstMonth(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{Username: "alice", Email: "alice@example.com", Status: models.STATUS_ACTIVE})
	r := newTestResolver(users, newFakeCouponStore())

	result, err := r.Resolve(context.Background(), PlanStandard, "alice", "", "bob", "bob@example.com")
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.NotNil(t, result.Resolution)
	assert.Equal(t, int64(999), result.Resolution.OriginalCents)
	assert.Equal(t, int64(100), result.Resolution.FinalCents)
	assert.Equal(t, int64(899), result.Resolution.DiscountCents)
	assert.Equal(t, SourceReferral, result.Resolution.Source)
	require.NotNil(t, result.Resolution.ReferrerID)
}

func TestResolveReferralCaseInsensitive(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{Username: "Alice", Email: "alice@example.com", Status: models.STATUS_ACTIVE})
	r := newTestResolver(users, newFakeCouponStore())

	result, err := r.Resolve(context.Background(), PlanPremium, "aLiCe", "", "bob", "bob@example.com")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.NotNil(t, result.Resolution)
	assert.Equal(t, int64(100), result.Resolution.FinalCents)
}

func TestResolveReferralUnknownCode(t *testing.T) {
	r := newTestResolver(newFakeUserStore(), newFakeCouponStore())

	result, err := r.Resolve(context.Background(), PlanStandard, "nobody", "", "bob", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Message)
}

func TestResolveReferralSelfReferral(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{Username: "alice", Email: "alice@example.com", Status: models.STATUS_ACTIVE})
	r := newTestResolver(users, newFakeCouponStore())

	result, err := r.Resolve(context.Background(), PlanStandard, "alice", "", "Alice", "alice2@example.com")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestResolveReferralExhaustedReferrer(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{
		Username:            "alice",
		Email:               "alice@example.com",
		Status:              models.STATUS_ACTIVE,
		ReferralCreditCents: models.ReferralCreditCapCents,
	})
	r := newTestResolver(users, newFakeCouponStore())

	result, err := r.Resolve(context.Background(), PlanStandard, "alice", "", "bob", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestResolveReferralWinsOverCoupon(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{Username: "alice", Email: "alice@example.com", Status: models.STATUS_ACTIVE})
	coupons := newFakeCouponStore()
	coupons.add(&models.Coupon{Code: "DEMO10", Name: "Demo", DiscountType: models.DISCOUNT_TYPE_PERCENT, DiscountValue: 10, IsActive: true})
	r := newTestResolver(users, coupons)

	result, err := r.Resolve(context.Background(), PlanStandard, "alice", "DEMO10", "bob", "bob@example.com")
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.NotNil(t, result.Resolution)
	assert.Equal(t, SourceReferral, result.Resolution.Source)
	assert.Equal(t, int64(100), result.Resolution.FinalCents)
}

func TestResolveCouponPercent(t *testing.T) {
	coupons := newFakeCouponStore()
	coupons.add(&models.Coupon{Code: "DEMO10", Name: "Demo", DiscountType: models.DISCOUNT_TYPE_PERCENT, DiscountValue: 10, IsActive: true})
	r := newTestResolver(newFakeUserStore(), coupons)

	result, err := r.Resolve(context.Background(), PlanPremium, "", "DEMO10", "bob", "bob@example.com")
	require.NoError(t, err)
	require.True(t, result.Valid)
	require.NotNil(t, result.Resolution)
	assert.Equal(t, int64(1349), result.Resolution.FinalCents)
	assert.Equal(t, SourceCoupon, result.Resolution.Source)
}

func TestResolveCouponAmountFloorsAtZero(t *testing.T) {
	coupons := newFakeCouponStore()
	coupons.add(&models.Coupon{Code: "BIG", Name: "Big", DiscountType: models.DISCOUNT_TYPE_AMOUNT, DiscountValue: 1500, IsActive: true})
	r := newTestResolver(newFakeUserStore(), coupons)

	result, err := r.Resolve(context.Background(), PlanStandard, "", "BIG", "bob", "bob@example.com")
	require.NoError(t, err)
	require.True(t, result.Valid)
	assert.Equal(t, int64(0), result.Resolution.FinalCents)
	assert.Equal(t, int64(999), result.Resolution.DiscountCents)
}

func TestResolveCouponFreeMonth(t *testing.T) {
	coupons := newFakeCouponStore()
	coupons.add(&models.Coupon{Code: "FREEBIE", Name: "Freebie", DiscountType: models.DISCOUNT_TYPE_FREE_MONTH, IsActive: true})
	r := newTestResolver(newFakeUserStore(), coupons)

	result, err := r.Resolve(context.Background(), PlanPremium, "", "FREEBIE", "bob", "bob@example.com")
	require.NoError(t, err)
	require.True(t, result.Valid)
	assert.Equal(t, int64(0), result.Resolution.FinalCents)
}

func TestResolveCouponRejections(t *testing.T) {
	maxUses := int64(1)
	expired := time.Now().Add(-time.Hour)
	coupons := newFakeCouponStore()
	coupons.add(&models.Coupon{Code: "INACTIVE", Name: "n", DiscountType: models.DISCOUNT_TYPE_PERCENT, DiscountValue: 10, IsActive: false})
	coupons.add(&models.Coupon{Code: "EXPIRED", Name: "n", DiscountType: models.DISCOUNT_TYPE_PERCENT, DiscountValue: 10, IsActive: true, ExpiresAt: &expired})
	coupons.add(&models.Coupon{Code: "USEDUP", Name: "n", DiscountType: models.DISCOUNT_TYPE_PERCENT, DiscountValue: 10, IsActive: true, MaxUses: &maxUses, CurrentUses: 1})
	r := newTestResolver(newFakeUserStore(), coupons)

	for _, code := range []string{"MISSING", "INACTIVE", "EXPIRED", "USEDUP"} {
		result, err := r.Resolve(context.Background(), PlanStandard, "", code, "bob", "bob@example.com")
		require.NoError(t, err, code)
		assert.False(t, result.Valid, "coupon %s should be rejected", code)
	}
}

func TestResolveCouponOneTimeUsePerEmail(t *testing.T) {
	coupons := newFakeCouponStore()
	coupon := coupons.add(&models.Coupon{Code: "ONCE", Name: "Once", DiscountType: models.DISCOUNT_TYPE_AMOUNT, DiscountValue: 500, IsActive: true, OneTimeUse: true})
	require.NoError(t, coupons.CreateRedemption(&models.CouponRedemption{CouponID: coupon.ID, RedeemerEmail: "bob@example.com"}))
	r := newTestResolver(newFakeUserStore(), coupons)

	result, err := r.Resolve(context.Background(), PlanStandard, "", "ONCE", "bob", "BOB@example.com")
	require.NoError(t, err)
	assert.False(t, result.Valid)

	// A different redeemer is still fine
	result, err = r.Resolve(context.Background(), PlanStandard, "", "ONCE", "carol", "carol@example.com")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestResolveCouponNewAccountsOnly(t *testing.T) {
	users := newFakeUserStore()
	users.add(&models.User{Username: "bob", Email: "bob@example.com", Status: models.STATUS_ACTIVE})
	coupons := newFakeCouponStore()
	coupons.add(&models.Coupon{Code: "FRESH", Name: "Fresh", DiscountType: models.DISCOUNT_TYPE_PERCENT, DiscountValue: 20, IsActive: true, NewAccountsOnly: true})
	r := newTestResolver(users, coupons)

	result, err := r.Resolve(context.Background(), PlanStandard, "", "FRESH", "bob2", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, result.Valid)

	result, err = r.Resolve(context.Background(), PlanStandard, "", "FRESH", "carol", "carol@example.com")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}
