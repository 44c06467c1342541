package billing

import "testing"

func TestDiscountApply(t *testing.T) {
	tests := []struct {
		name         string
		discount     Discount
		base         int64
		wantDiscount int64
		wantFinal    int64
	}{
		{name: "ten percent of standard", discount: Discount{Kind: DiscountPercent, Value: 10}, base: 999, wantDiscount: 100, wantFinal: 899},
		{name: "ten percent of premium", discount: Discount{Kind: DiscountPercent, Value: 10}, base: 1499, wantDiscount: 150, wantFinal: 1349},
		{name: "hundred percent", discount: Discount{Kind: DiscountPercent, Value: 100}, base: 999, wantDiscount: 999, wantFinal: 0},
		{name: "five dollars off", discount: Discount{Kind: DiscountAmount, Value: 500}, base: 999, wantDiscount: 500, wantFinal: 499},
		{name: "amount exceeds base floors at zero", discount: Discount{Kind: DiscountAmount, Value: 1500}, base: 999, wantDiscount: 999, wantFinal: 0},
		{name: "free month", discount: Discount{Kind: DiscountFreeMonth}, base: 1499, wantDiscount: 1499, wantFinal: 0},
		{name: "zero percent", discount: Discount{Kind: DiscountPercent, Value: 0}, base: 999, wantDiscount: 0, wantFinal: 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDiscount, gotFinal := tt.discount.Apply(tt.base)
			if gotDiscount != tt.wantDiscount || gotFinal != tt.wantFinal {
				t.Fatalf("Apply(%d) = (%d, %d), want (%d, %d)", tt.base, gotDiscount, gotFinal, tt.wantDiscount, tt.wantFinal)
			}
			if gotFinal < 0 {
				t.Fatalf("final price must never be negative, got %d", gotFinal)
			}
			if gotDiscount+gotFinal != tt.base {
				t.Fatalf("discount %d + final %d != base %d", gotDiscount, gotFinal, tt.base)
			}
		})
	}
}
