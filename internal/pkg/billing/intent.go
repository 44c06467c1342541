package billing

import (
	"context"
	"fmt"

	"github.com/alfredflix/alfredflix/internal/pkg/payment"
)

// DefaultCurrency is the only currency the storefront charges in.
const DefaultCurrency = "usd"

// CodeError reports an invalid referral or coupon code during checkout.
// It is a business rejection, not a system failure.
type CodeError struct {
	Message string
}

func (e *CodeError) Error() string {
	return e.Message
}

// Intent is a priced, confirmable checkout for one signup.
type Intent struct {
	IntentID     string      `json:"intent_id"`
	ClientSecret string      `json:"client_secret"`
	AmountCents  int64       `json:"amount_cents"`
	Currency     string      `json:"currency"`
	Resolution   *Resolution `json:"resolution,omitempty"`
}

// IntentBuilder resolves discounts and creates payment intents. It is
// stateless; nothing is persisted until the client confirms and calls
// signup completion.
type IntentBuilder struct {
	resolver *Resolver
	provider payment.Provider
}

// NewIntentBuilder creates an intent builder.
func NewIntentBuilder(resolver *Resolver, provider payment.Provider) *IntentBuilder {
	return &IntentBuilder{resolver: resolver, provider: provider}
}

// CreateIntent prices the signup and asks the payment provider for a
// confirmable intent. Zero-amount checkouts still produce an intent so the
// client flow is uniform.
func (b *IntentBuilder) CreateIntent(ctx context.Context, plan Plan, referralCode, couponCode, signupUsername, signupEmail string) (*Intent, error) {
	result, err := b.resolver.Resolve(ctx, plan, referralCode, couponCode, signupUsername, signupEmail)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &CodeError{Message: result.Message}
	}

	amount := plan.BasePriceCents()
	if result.Resolution != nil {
		amount = result.Resolution.FinalCents
	}

	metadata := map[string]string{
		"plan":     string(plan),
		"username": signupUsername,
		"email":    signupEmail,
	}
	if referralCode != "" {
		metadata["referral_code"] = referralCode
	}
	if couponCode != "" {
		metadata["coupon_code"] = couponCode
	}

	intent, err := b.provider.CreateIntent(ctx, amount, DefaultCurrency, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Intent{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  amount,
		Currency:     intent.Currency,
		Resolution:   result.Resolution,
	}, nil
}
