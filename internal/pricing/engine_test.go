package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"pos-system/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(name string, price string, qty int, cat models.Category) models.LineItem {
	return models.LineItem{Name: name, UnitPrice: dec(price), Quantity: qty, Category: cat}
}

func TestCompute_ReferenceScenario(t *testing.T) {
	// Latte 2.20 x2 + Tiramisu 5.25 x1, 10% discount, 1.00 service charge,
	// 15% tax on the discounted subtotal.
	lines := []models.LineItem{
		line("Latte", "2.20", 2, models.CategoryDrinks),
		line("Tiramisu", "5.25", 1, models.CategoryDesserts),
	}
	params := Params{
		DiscountPercent: dec("10"),
		ServiceCharge:   dec("1.00"),
		TaxRate:         dec("0.15"),
	}

	result := Compute(lines, params)

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"subtotal", result.Subtotal, "9.65"},
		{"discount", result.DiscountAmount, "0.97"},
		{"service charge", result.ServiceCharge, "1.00"},
		{"tax", result.TaxAmount, "1.30"},
		{"total", result.Total, "10.98"},
		{"drinks", result.CostOfDrinks, "4.40"},
		{"cakes", result.CostOfCakes, "0"},
		{"other", result.OtherCategoryCost, "5.25"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestCompute_SubtotalIsOrderIndependent(t *testing.T) {
	a := []models.LineItem{
		line("Latte", "2.20", 2, models.CategoryDrinks),
		line("Carrot Cake", "3.10", 3, models.CategoryCakes),
		line("Lamb Shank", "14.50", 1, models.CategoryMainCourse),
	}
	b := []models.LineItem{a[2], a[0], a[1]}

	params := Params{DiscountPercent: dec("5"), ServiceCharge: dec("0.50"), TaxRate: dec("0.15")}

	ra := Compute(a, params)
	rb := Compute(b, params)

	if !ra.Subtotal.Equal(rb.Subtotal) {
		t.Fatalf("subtotal changed with line order: %s vs %s", ra.Subtotal, rb.Subtotal)
	}
	if !ra.Total.Equal(rb.Total) {
		t.Fatalf("total changed with line order: %s vs %s", ra.Total, rb.Total)
	}
}

func TestCompute_ZeroDiscountIdentity(t *testing.T) {
	lines := []models.LineItem{line("Latte", "2.20", 1, models.CategoryDrinks)}
	result := Compute(lines, Params{TaxRate: dec("0.15")})

	if !result.DiscountAmount.IsZero() {
		t.Fatalf("expected zero discount amount, got %s", result.DiscountAmount)
	}
	if !result.Subtotal.Equal(dec("2.20")) {
		t.Fatalf("subtotal = %s, want 2.20", result.Subtotal)
	}
}

func TestCompute_NegativeTotalIsPreserved(t *testing.T) {
	// Discount above subtotal: the engine must not clamp.
	lines := []models.LineItem{line("Espresso", "2.00", 1, models.CategoryDrinks)}
	params := Params{
		DiscountPercent: dec("100"),
		ServiceCharge:   dec("-5.00"),
		TaxRate:         decimal.Zero,
	}

	result := Compute(lines, params)
	if !result.Total.Equal(dec("-5.00")) {
		t.Fatalf("total = %s, want -5.00", result.Total)
	}
}

func TestCompute_EmptyLines(t *testing.T) {
	result := Compute(nil, Params{DiscountPercent: dec("10"), TaxRate: dec("0.15")})
	if !result.Subtotal.IsZero() || !result.Total.IsZero() {
		t.Fatalf("expected zero result for empty lines, got subtotal=%s total=%s", result.Subtotal, result.Total)
	}
}

func TestCompute_RoundingHalfUp(t *testing.T) {
	// 3 x 1.115 = 3.345 -> subtotal rounds to 3.35, tax 15% of 3.345 -> 0.50
	lines := []models.LineItem{line("Odd Priced", "1.115", 3, models.CategorySpecials)}
	result := Compute(lines, Params{TaxRate: dec("0.15")})

	if !result.Subtotal.Equal(dec("3.35")) {
		t.Fatalf("subtotal = %s, want 3.35", result.Subtotal)
	}
	if !result.TaxAmount.Equal(dec("0.50")) {
		t.Fatalf("tax = %s, want 0.50", result.TaxAmount)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10", "10"},
		{" 2.50 ", "2.50"},
		{"", "0"},
		{"abc", "0"},
		{"12.3.4", "0"},
		{"-4", "-4"},
	}
	for _, tt := range tests {
		got := ParseAmount(tt.input)
		if !got.Equal(dec(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"3", 3},
		{"0", 0},
		{"", 0},
		{"two", 0},
		{"-1", 0},
		{"2.5", 0},
	}
	for _, tt := range tests {
		if got := ParseQuantity(tt.input); got != tt.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestCompute_InvalidInputMatchesZeroSubstitution(t *testing.T) {
	// An unparsable discount must yield the same result as discount 0.
	lines := []models.LineItem{line("Latte", "2.20", 2, models.CategoryDrinks)}

	withGarbage := Compute(lines, Params{DiscountPercent: ParseAmount("oops"), TaxRate: dec("0.15")})
	withZero := Compute(lines, Params{DiscountPercent: decimal.Zero, TaxRate: dec("0.15")})

	if !withGarbage.Total.Equal(withZero.Total) {
		t.Fatalf("garbage discount total %s != zero discount total %s", withGarbage.Total, withZero.Total)
	}
}

func TestValidateDiscountPercent(t *testing.T) {
	if err := ValidateDiscountPercent(dec("50")); err != nil {
		t.Fatalf("unexpected error for 50: %v", err)
	}
	if err := ValidateDiscountPercent(dec("-1")); err == nil {
		t.Fatalf("expected error for -1")
	}
	if err := ValidateDiscountPercent(dec("100.01")); err == nil {
		t.Fatalf("expected error for 100.01")
	}
}

func TestDefaultServiceCharge(t *testing.T) {
	got := DefaultServiceCharge(dec("8.68"), dec("0.10"))
	if !got.Equal(dec("0.87")) {
		t.Fatalf("DefaultServiceCharge = %s, want 0.87", got)
	}
}
