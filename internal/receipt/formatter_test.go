package receipt

import (
	"strings"
	"testing"
	"unicode/utf8"

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

func sampleInputs() (models.PricingResult, Meta, []models.LineItem) {
	result := models.PricingResult{
		Subtotal:        dec("9.65"),
		DiscountPercent: dec("10"),
		DiscountAmount:  dec("0.97"),
		ServiceCharge:   dec("1.00"),
		TaxAmount:       dec("1.30"),
		Total:           dec("10.98"),
	}
	table := 4
	meta := Meta{
		RestaurantName: "The Golden Fork",
		Currency:       "£",
		ReceiptRef:     "REC_20260901_001",
		Date:           "2026-09-01",
		Time:           "12:30:05",
		CustomerName:   "Alice Smith",
		CustomerPhone:  "07700900123",
		PaymentMethod:  models.PaymentCard,
		OrderType:      models.DineIn,
		TableNumber:    &table,
		ServedBy:       "sam",
	}
	lines := []models.LineItem{
		{Name: "Latte", Quantity: 2, UnitPrice: dec("2.20"), Category: models.CategoryDrinks},
		{Name: "Tiramisu", Quantity: 1, UnitPrice: dec("5.25"), Category: models.CategoryDesserts},
	}
	return result, meta, lines
}

func TestRender_Deterministic(t *testing.T) {
	result, meta, lines := sampleInputs()

	first := Render(result, meta, lines)
	second := Render(result, meta, lines)

	if first != second {
		t.Fatalf("identical inputs produced different receipts")
	}
}

func TestRender_Contents(t *testing.T) {
	result, meta, lines := sampleInputs()
	out := Render(result, meta, lines)

	for _, want := range []string{
		"The Golden Fork",
		"REC_20260901_001",
		"Latte",
		"Tiramisu",
		"£9.65",
		"-£0.97",
		"£1.00",
		"£1.30",
		"£10.98",
		"Discount (10%)",
		"Payment:  Card",
		"Table: 4",
		"2026-09-01 12:30:05",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("receipt missing %q\n%s", want, out)
		}
	}
}

func TestRender_ZeroDiscountOmitsDiscountLine(t *testing.T) {
	result, meta, lines := sampleInputs()
	result.DiscountAmount = decimal.Zero
	result.DiscountPercent = decimal.Zero

	out := Render(result, meta, lines)
	if strings.Contains(out, "Discount") {
		t.Fatalf("zero discount should not print a discount line\n%s", out)
	}
}

func TestRender_DoesNotMutateResult(t *testing.T) {
	result, meta, lines := sampleInputs()
	before := result

	Render(result, meta, lines)

	if !result.Total.Equal(before.Total) || !result.DiscountAmount.Equal(before.DiscountAmount) {
		t.Fatalf("Render mutated the pricing result")
	}
}

func TestRender_NonASCIINames(t *testing.T) {
	result, meta, lines := sampleInputs()
	meta.RestaurantName = "Chez Núñez"
	lines[0].Name = "Café Crème Brûlée Deluxe"

	out := Render(result, meta, lines)

	if !utf8.ValidString(out) {
		t.Fatalf("receipt contains invalid UTF-8\n%s", out)
	}

	// 10 runes centered in 42 columns: 16 leading spaces, not the 15 that
	// byte counting would give.
	if !strings.Contains(out, strings.Repeat(" ", 16)+"Chez Núñez") {
		t.Errorf("accented restaurant name mis-centered\n%s", out)
	}

	// The 24-rune item name is cut at 20 runes, on a rune boundary.
	if !strings.Contains(out, "Café Crème Brûlée De ") {
		t.Errorf("accented item name not truncated at 20 runes\n%s", out)
	}
}

func TestRenderOrder_Replay(t *testing.T) {
	o := &models.Order{
		ReceiptRef:    "REC_20260901_002",
		OrderDate:     "2026-09-01",
		OrderTime:     "18:45:00",
		CustomerName:  "Bob",
		CustomerPhone: "07700900456",
		PaymentMethod: models.PaymentCash,
		OrderType:     models.Takeaway,
		Items: []models.LineItem{
			{Name: "Espresso", Quantity: 1, UnitPrice: dec("2.00")},
		},
		Subtotal:  dec("2.00"),
		TaxPaid:   dec("0.30"),
		TotalCost: dec("2.30"),
	}

	first := RenderOrder(o, "The Golden Fork", "£")
	second := RenderOrder(o, "The Golden Fork", "£")

	if first != second {
		t.Fatalf("replay produced different receipts for the same record")
	}
	if !strings.Contains(first, "REC_20260901_002") {
		t.Fatalf("replayed receipt missing reference\n%s", first)
	}
}
