package billing

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredflix/alfredflix/app/models"
)

type completionFixture struct {
	users       *fakeUserStore
	coupons     *fakeCouponStore
	completions *fakeCompletionStore
	provider    *fakeProvider
	provisioner *fakeProvisioner
	queue       *fakeQueue
	handler     *CompletionHandler
}

func newCompletionFixture() *completionFixture {
	f := &completionFixture{
		users:       newFakeUserStore(),
		coupons:     newFakeCouponStore(),
		completions: newFakeCompletionStore(),
		provider:    newFakeProvider(),
		provisioner: &fakeProvisioner{},
		queue:       &fakeQueue{},
	}
	resolver := NewResolver(f.users, f.coupons)
	f.handler = NewCompletionHandler(f.users, f.coupons, f.completions, resolver, f.provider, f.provisioner, f.queue, nil)
	return f
}

func baseRequest() SignupRequest {
	return SignupRequest{
		Username:              "bob",
		Email:                 "bob@example.com",
		Password:              "hunter22",
		Plan:                  "standard",
		PaymentConfirmationID: "pi_abc",
	}
}

func TestCompleteFullPriceSignup(t *testing.T) {
	f := newCompletionFixture()
	f.provider.succeeded("pi_abc", 999)

	result, err := f.handler.Complete(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.False(t, result.AlreadyCompleted)
	assert.True(t, result.Provisioned)
	assert.Equal(t, int64(999), result.AmountCents)
	assert.Equal(t, "bob", result.User.Username)
	assert.Equal(t, models.STATUS_ACTIVE, result.User.Status)
	assert.Equal(t, "jf-bob", result.User.JellyfinUserID)
	assert.True(t, result.User.CheckPassword("hunter22"))
}

func TestCompleteIsIdempotent(t *testing.T) {
	f := newCompletionFixture()
	f.provider.succeeded("pi_abc", 999)

	first, err := f.handler.Complete(context.Background(), baseRequest())
	require.NoError(t, err)

	second, err := f.handler.Complete(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, first.AmountCents, second.AmountCents)
	assert.Equal(t, 1, f.provisioner.calls)
}

func TestCompleteReferralGrantsCredit(t *testing.T) {
	f := newCompletionFixture()
	referrer := f.users.add(&models.User{Username: "alice", Email: "alice@example.com", Status: models.STATUS_ACTIVE})
	f.provider.succeeded("pi_abc", 100)

	req := baseRequest()
	req.ReferralCode = "alice"
	result, err := f.handler.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.AmountCents)
	assert.Equal(t, models.ReferralCreditPerSignupCents, referrer.ReferralCreditCents)
	require.NotNil(t, result.User.ReferredByID)
	assert.Equal(t, referrer.ID, *result.User.ReferredByID)
}

func TestCompleteReferralCreditClampsAtCap(t *testing.T) {
	f := newCompletionFixture()
	referrer := f.users.add(&models.User{
		Username:            "alice",
		Email:               "alice@example.com",
		Status:              models.STATUS_ACTIVE,
		ReferralCreditCents: models.ReferralCreditCapCents - models.ReferralCreditPerSignupCents,
	})
	f.provider.succeeded("pi_abc", 100)

	req := baseRequest()
	req.ReferralCode = "alice"
	_, err := f.handler.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.ReferralCreditCapCents, referrer.ReferralCreditCents)

	// The code is now exhausted; the next referred signup is rejected.
	f.provider.succeeded("pi_def", 100)
	req2 := baseRequest()
	req2.Username = "carol"
	req2.Email = "carol@example.com"
	req2.ReferralCode = "alice"
	req2.PaymentConfirmationID = "pi_def"
	_, err = f.handler.Complete(context.Background(), req2)
	var codeErr *CodeError
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, models.ReferralCreditCapCents, referrer.ReferralCreditCents)
}

func TestCompleteCouponBurnsUsageAndRecordsRedemption(t *testing.T) {
	f := newCompletionFixture()
	maxUses := int64(1)
	coupon := f.coupons.add(&models.Coupon{Code: "ONCE", Name: "Once", DiscountType: models.DISCOUNT_TYPE_AMOUNT, DiscountValue: 500, IsActive: true, OneTimeUse: true, MaxUses: &maxUses})
	f.provider.succeeded("pi_abc", 499)

	req := baseRequest()
	req.CouponCode = "ONCE"
	result, err := f.handler.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(499), result.AmountCents)
	assert.Equal(t, int64(1), coupon.CurrentUses)

	redeemed, err := f.coupons.HasRedemption(coupon.ID, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, redeemed)

	// Usage limit reached; the next signup with the same code is rejected.
	f.provider.succeeded("pi_def", 499)
	req2 := baseRequest()
	req2.Username = "carol"
	req2.Email = "carol@example.com"
	req2.CouponCode = "ONCE"
	req2.PaymentConfirmationID = "pi_def"
	_, err = f.handler.Complete(context.Background(), req2)
	var codeErr *CodeError
	require.ErrorAs(t, err, &codeErr)
}

func TestCompleteRejectsExistingAccount(t *testing.T) {
	f := newCompletionFixture()
	f.users.add(&models.User{Username: "bob", Email: "bob@example.com", Status: models.STATUS_ACTIVE})
	f.provider.succeeded("pi_abc", 999)

	_, err := f.handler.Complete(context.Background(), baseRequest())
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestCompleteResumesInterruptedSignup(t *testing.T) {
	f := newCompletionFixture()
	f.provider.succeeded("pi_abc", 999)
	f.completions.failNext = fmt.Errorf("connection reset")

	// The first attempt dies after the account insert but before the
	// completion record is written.
	_, err := f.handler.Complete(context.Background(), baseRequest())
	require.Error(t, err)
	_, err = f.users.GetByUsername("bob")
	require.NoError(t, err)

	// The retry with the same credentials must finish the signup instead
	// of reporting the account as taken.
	result, err := f.handler.Complete(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.False(t, result.AlreadyCompleted)
	assert.True(t, result.Provisioned)
	assert.Equal(t, "bob", result.User.Username)
	assert.Len(t, f.users.users, 1)
}

func TestCompleteInterruptedSignupRequiresMatchingCredentials(t *testing.T) {
	f := newCompletionFixture()
	f.provider.succeeded("pi_abc", 999)
	f.completions.failNext = fmt.Errorf("connection reset")

	_, err := f.handler.Complete(context.Background(), baseRequest())
	require.Error(t, err)

	// A different caller hitting the same username gets the conflict, not
	// the half-finished account.
	req := baseRequest()
	req.Password = "other-password"
	_, err = f.handler.Complete(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestCompleteRejectsShortPassword(t *testing.T) {
	f := newCompletionFixture()
	f.provider.succeeded("pi_abc", 999)

	req := baseRequest()
	req.Password = "abc"
	_, err := f.handler.Complete(context.Background(), req)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	_, err = f.users.GetByUsername("bob")
	assert.Error(t, err)
}

func TestCompleteRejectsMismatchedPaymentAmount(t *testing.T) {
	f := newCompletionFixture()
	f.users.add(&models.User{Username: "alice", Email: "alice@example.com", Status: models.STATUS_ACTIVE})

	// The intent was captured at full price, but the referral prices the
	// first month at 100 cents. The stale confirmation does not pay for
	// this signup.
	f.provider.succeeded("pi_abc", 999)

	req := baseRequest()
	req.ReferralCode = "alice"
	_, err := f.handler.Complete(context.Background(), req)
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
}

func TestCompleteRejectsUnconfirmedPayment(t *testing.T) {
	f := newCompletionFixture()
	intent, err := f.provider.CreateIntent(context.Background(), 999, DefaultCurrency, nil)
	require.NoError(t, err)

	req := baseRequest()
	req.PaymentConfirmationID = intent.ID
	_, err = f.handler.Complete(context.Background(), req)
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
}

func TestCompleteZeroAmountSkipsPaymentCheck(t *testing.T) {
	f := newCompletionFixture()
	f.coupons.add(&models.Coupon{Code: "FREEBIE", Name: "Freebie", DiscountType: models.DISCOUNT_TYPE_FREE_MONTH, IsActive: true})

	req := baseRequest()
	req.CouponCode = "FREEBIE"
	req.PaymentConfirmationID = "seti_xyz"
	result, err := f.handler.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.AmountCents)
}

func TestCompleteProvisioningFailureParksUser(t *testing.T) {
	f := newCompletionFixture()
	f.provisioner.fail = true
	f.provider.succeeded("pi_abc", 999)

	result, err := f.handler.Complete(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.False(t, result.Provisioned)
	assert.Equal(t, models.STATUS_PROVISIONING_PENDING, result.User.Status)
	require.Len(t, f.queue.enqueued, 1)
	assert.Equal(t, result.User.ID, f.queue.enqueued[0])
}

func TestCompleteUnknownPlanRejected(t *testing.T) {
	f := newCompletionFixture()
	req := baseRequest()
	req.Plan = "gold"
	_, err := f.handler.Complete(context.Background(), req)
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestCreateIntentUsesResolvedAmount(t *testing.T) {
	f := newCompletionFixture()
	f.users.add(&models.User{Username: "alice", Email: "alice@example.com", Status: models.STATUS_ACTIVE})
	builder := NewIntentBuilder(NewResolver(f.users, f.coupons), f.provider)

	intent, err := builder.CreateIntent(context.Background(), PlanPremium, "alice", "", "bob", "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(100), intent.AmountCents)
	assert.NotEmpty(t, intent.ClientSecret)
	require.NotNil(t, intent.Resolution)
	assert.Equal(t, int64(1399), intent.Resolution.DiscountCents)
}

func TestCreateIntentInvalidCode(t *testing.T) {
	f := newCompletionFixture()
	builder := NewIntentBuilder(NewResolver(f.users, f.coupons), f.provider)

	_, err := builder.CreateIntent(context.Background(), PlanStandard, "nobody", "", "bob", "bob@example.com")
	var codeErr *CodeError
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, 0, f.provider.created)
}

func TestConcurrentCouponUseRespectsLimit(t *testing.T) {
	f := newCompletionFixture()
	maxUses := int64(1)
	coupon := f.coupons.add(&models.Coupon{Code: "ONCE", Name: "Once", DiscountType: models.DISCOUNT_TYPE_AMOUNT, DiscountValue: 500, IsActive: true, MaxUses: &maxUses})

	const racers = 16
	var applied int64
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.coupons.IncrementUse(coupon.ID)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&applied, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), applied)
	assert.Equal(t, int64(1), coupon.CurrentUses)
}

func TestConcurrentReferralCreditRespectsCap(t *testing.T) {
	f := newCompletionFixture()
	referrer := f.users.add(&models.User{Username: "alice", Email: "alice@example.com", Status: models.STATUS_ACTIVE})

	const racers = 16
	var granted int64
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.users.AddReferralCredit(referrer.ID, models.ReferralCreditPerSignupCents)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&granted, 1)
			}
		}()
	}
	wg.Wait()

	// The cap admits exactly three credits no matter how many signups race.
	assert.Equal(t, int64(3), granted)
	assert.Equal(t, models.ReferralCreditCapCents, referrer.ReferralCreditCents)
}
