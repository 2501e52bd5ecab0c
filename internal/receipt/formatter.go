// Package receipt renders a priced order into a fixed-width text receipt.
// Rendering is deterministic: timestamps come from the caller, so identical
// input always produces byte-identical output.
package receipt

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pos-system/internal/models"
)

const width = 42

// Meta carries the order metadata printed around the totals block.
type Meta struct {
	RestaurantName string
	Currency       string
	ReceiptRef     string
	Date           string
	Time           string
	CustomerName   string
	CustomerPhone  string
	PaymentMethod  models.PaymentMethod
	OrderType      models.OrderType
	TableNumber    *int
	ServedBy       string
}

// Render produces the receipt text for a pricing result plus metadata.
// It never mutates its inputs.
func Render(result models.PricingResult, meta Meta, lines []models.LineItem) string {
	var b strings.Builder

	rule := strings.Repeat("=", width)
	thinRule := strings.Repeat("-", width)

	b.WriteString(center(meta.RestaurantName) + "\n")
	b.WriteString(rule + "\n")

	b.WriteString(fmt.Sprintf("Customer: %s\n", meta.CustomerName))
	if meta.CustomerPhone != "" {
		b.WriteString(fmt.Sprintf("Phone:    %s\n", meta.CustomerPhone))
	}
	b.WriteString(fmt.Sprintf("Type:     %s", meta.OrderType))
	if meta.TableNumber != nil {
		b.WriteString(fmt.Sprintf("   Table: %d", *meta.TableNumber))
	}
	b.WriteString("\n")
	if meta.ServedBy != "" {
		b.WriteString(fmt.Sprintf("Served by: %s\n", meta.ServedBy))
	}

	b.WriteString(thinRule + "\n")
	b.WriteString(fmt.Sprintf("%-20s %3s %8s %8s\n", "Item", "Qty", "Price", "Total"))
	for _, line := range lines {
		b.WriteString(fmt.Sprintf("%-20s %3d %8s %8s\n",
			truncate(line.Name, 20),
			line.Quantity,
			line.UnitPrice.StringFixed(2),
			line.LineTotal().Round(2).StringFixed(2),
		))
	}

	b.WriteString(thinRule + "\n")
	writeAmount(&b, "Subtotal", meta.Currency, result.Subtotal)
	if !result.DiscountAmount.IsZero() {
		label := fmt.Sprintf("Discount (%s%%)", result.DiscountPercent.String())
		writeAmount(&b, label, meta.Currency, result.DiscountAmount.Neg())
	}
	if !result.ServiceCharge.IsZero() {
		writeAmount(&b, "Service charge", meta.Currency, result.ServiceCharge)
	}
	writeAmount(&b, "Tax", meta.Currency, result.TaxAmount)
	b.WriteString(thinRule + "\n")
	writeAmount(&b, "TOTAL", meta.Currency, result.Total)
	b.WriteString(fmt.Sprintf("Payment:  %s\n", meta.PaymentMethod))

	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("Receipt:  %s\n", meta.ReceiptRef))
	b.WriteString(fmt.Sprintf("Date:     %s %s\n", meta.Date, meta.Time))
	b.WriteString(center("Thank you for dining with us!") + "\n")

	return b.String()
}

// RenderOrder re-renders the receipt from a persisted order record
// (receipt replay). The stored item order is preserved.
func RenderOrder(o *models.Order, restaurantName, currency string) string {
	meta := Meta{
		RestaurantName: restaurantName,
		Currency:       currency,
		ReceiptRef:     o.ReceiptRef,
		Date:           o.OrderDate,
		Time:           o.OrderTime,
		CustomerName:   o.CustomerName,
		CustomerPhone:  o.CustomerPhone,
		PaymentMethod:  o.PaymentMethod,
		OrderType:      o.OrderType,
		TableNumber:    o.TableNumber,
		ServedBy:       o.ServedBy,
	}
	return Render(o.Result(), meta, o.Items)
}

// writeAmount writes a label with a right-aligned currency amount.
// Negative amounts carry the sign before the currency symbol.
func writeAmount(b *strings.Builder, label, currency string, amount decimal.Decimal) {
	formatted := currency + amount.StringFixed(2)
	if amount.IsNegative() {
		formatted = "-" + currency + amount.Abs().StringFixed(2)
	}
	pad := width - len(label) - len([]rune(formatted))
	if pad < 1 {
		pad = 1
	}
	b.WriteString(label + strings.Repeat(" ", pad) + formatted + "\n")
}

// center and truncate count runes, not bytes: accented names must not
// shift the layout or be cut mid-sequence.
func center(s string) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	pad := (width - n) / 2
	return strings.Repeat(" ", pad) + s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
