package entitlements

import "strings"

type Plan string

const (
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Entitlements describes what a subscription tier unlocks on the streaming side.
type Entitlements struct {
	MaxStreams  int    `json:"max_streams"`
	MaxQuality  string `json:"max_quality"`
	EarlyAccess bool   `json:"early_access"`
}

// ForPlan returns the streaming entitlements for a given plan.
// Unknown tiers fall back to the standard plan.
func ForPlan(plan Plan) Entitlements {
	switch Plan(strings.ToLower(strings.TrimSpace(string(plan)))) {
	case PlanPremium:
		return Entitlements{
			MaxStreams:  4,
			MaxQuality:  "4k",
			EarlyAccess: true,
		}
	default:
		return Entitlements{
			MaxStreams:  2,
			MaxQuality:  "1080p",
			EarlyAccess: false,
		}
	}
}
