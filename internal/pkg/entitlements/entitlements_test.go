package entitlements

import "testing"

func TestForPlan(t *testing.T) {
	standard := ForPlan(PlanStandard)
	if standard.MaxStreams != 2 || standard.MaxQuality != "1080p" || standard.EarlyAccess {
		t.Fatalf("unexpected standard entitlements: %+v", standard)
	}

	premium := ForPlan(PlanPremium)
	if premium.MaxStreams != 4 || premium.MaxQuality != "4k" || !premium.EarlyAccess {
		t.Fatalf("unexpected premium entitlements: %+v", premium)
	}
}

func TestForPlanFallsBackToStandard(t *testing.T) {
	if got := ForPlan("gold"); got != ForPlan(PlanStandard) {
		t.Fatalf("unknown plan should map to standard, got %+v", got)
	}
	if got := ForPlan(" PREMIUM "); got != ForPlan(PlanPremium) {
		t.Fatalf("plan parsing should be case and space insensitive, got %+v", got)
	}
}
