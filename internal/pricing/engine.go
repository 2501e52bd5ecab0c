// Package pricing converts selected line items plus operator-entered
// discount, service-charge and tax parameters into the final monetary
// breakdown for an order. Pure computation: no I/O, no clock reads, safe to
// call on every keystroke.
package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pos-system/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)
)

// Params carries the operator-entered pricing parameters.
//
// ServiceCharge is the flat amount added to the order; the configured
// service-charge rate only prefills it (see DefaultServiceCharge). TaxRate
// applies to the post-discount subtotal — the single charge base for every
// derived amount.
type Params struct {
	DiscountPercent decimal.Decimal
	ServiceCharge   decimal.Decimal
	TaxRate         decimal.Decimal
}

// Compute derives the full pricing breakdown for the given lines.
//
// Every monetary field is rounded to 2 decimal places (half away from zero).
// The total is NOT clamped: a discount above the subtotal yields a negative
// total, and callers are expected to warn rather than alter the figure.
func Compute(lines []models.LineItem, p Params) models.PricingResult {
	subtotal := decimal.Zero
	drinks := decimal.Zero
	cakes := decimal.Zero
	other := decimal.Zero

	for _, line := range lines {
		lineTotal := line.LineTotal()
		subtotal = subtotal.Add(lineTotal)

		switch line.Category {
		case models.CategoryDrinks:
			drinks = drinks.Add(lineTotal)
		case models.CategoryCakes:
			cakes = cakes.Add(lineTotal)
		default:
			other = other.Add(lineTotal)
		}
	}

	// Rounding happens field by field so that the persisted identity
	// total = subtotal - discount + service charge + tax holds exactly.
	subtotal = round2(subtotal)
	discountAmount := round2(subtotal.Mul(p.DiscountPercent).Div(hundred))

	// chargeBase is the post-discount subtotal: the one base both the tax
	// and the default service charge are computed on.
	chargeBase := subtotal.Sub(discountAmount)

	serviceCharge := round2(p.ServiceCharge)
	taxAmount := round2(chargeBase.Mul(p.TaxRate))
	total := chargeBase.Add(serviceCharge).Add(taxAmount)

	return models.PricingResult{
		CostOfDrinks:      round2(drinks),
		CostOfCakes:       round2(cakes),
		OtherCategoryCost: round2(other),
		Subtotal:          subtotal,
		DiscountPercent:   p.DiscountPercent,
		DiscountAmount:    discountAmount,
		ServiceCharge:     serviceCharge,
		TaxAmount:         taxAmount,
		Total:             total,
	}
}

// DefaultServiceCharge derives the prefilled flat service charge from the
// configured rate, applied to the post-discount subtotal.
func DefaultServiceCharge(chargeBase, rate decimal.Decimal) decimal.Decimal {
	return round2(chargeBase.Mul(rate))
}

// ParseAmount parses operator-entered monetary or percentage text. Unparsable
// input degrades to zero so a live recompute never raises mid-keystroke.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseQuantity parses operator-entered quantity text. Unparsable or negative
// input degrades to zero, which prices the line at nothing.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ValidateDiscountPercent rejects discounts outside [0,100]. Callers validate
// before Compute; the engine itself never clamps.
func ValidateDiscountPercent(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(hundred) {
		return models.ValidationError{Field: "discount_percent", Message: "discount percent must be between 0 and 100"}
	}
	return nil
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
