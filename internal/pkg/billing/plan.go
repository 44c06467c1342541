package billing

import (
	"errors"
	"strings"

	"github.com/alfredflix/alfredflix/internal/pkg/entitlements"
)

// Plan is a subscription tier. Prices are monthly, in minor currency units.
type Plan string

const (
	PlanStandard Plan = Plan(entitlements.PlanStandard)
	PlanPremium  Plan = Plan(entitlements.PlanPremium)

	PlanStandardPriceCents int64 = 999
	PlanPremiumPriceCents  int64 = 1499
)

// ErrUnknownPlan is returned when a request names a tier that does not exist.
var ErrUnknownPlan = errors.New("unknown plan")

// ParsePlan normalizes raw plan input and rejects unknown tiers.
func ParsePlan(raw string) (Plan, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(PlanStandard):
		return PlanStandard, nil
	case string(PlanPremium):
		return PlanPremium, nil
	default:
		return "", ErrUnknownPlan
	}
}

// BasePriceCents returns the undiscounted monthly price for the plan.
func (p Plan) BasePriceCents() int64 {
	switch p {
	case PlanPremium:
		return PlanPremiumPriceCents
	default:
		return PlanStandardPriceCents
	}
}

// Valid reports whether the plan is a known tier.
func (p Plan) Valid() bool {
	return p == PlanStandard || p == PlanPremium
}
