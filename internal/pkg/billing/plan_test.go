package billing

import "testing"

func TestParsePlan(t *testing.T) {
	tests := []struct {
		in      string
		want    Plan
		wantErr bool
	}{
		{in: "standard", want: PlanStandard},
		{in: "premium", want: PlanPremium},
		{in: "  Premium ", want: PlanPremium},
		{in: "STANDARD", want: PlanStandard},
		{in: "gold", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePlan(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParsePlan(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePlan(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParsePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBasePriceCents(t *testing.T) {
	if got := PlanStandard.BasePriceCents(); got != 999 {
		t.Fatalf("standard price = %d, want 999", got)
	}
	if got := PlanPremium.BasePriceCents(); got != 1499 {
		t.Fatalf("premium price = %d, want 1499", got)
	}
}
