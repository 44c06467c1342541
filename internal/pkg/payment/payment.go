package payment

import "context"

// Intent is a confirmable payment the client finishes with the provider's
// browser SDK. ClientSecret is handed to the client, ID is what comes back
// as the payment confirmation id on signup completion.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// Provider abstracts the payment processor so billing logic and tests do not
// depend on the Stripe SDK.
type Provider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}
