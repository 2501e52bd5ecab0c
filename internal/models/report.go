package models

import "github.com/shopspring/decimal"

// PaymentBreakdown is the per-payment-method slice of a daily report
type PaymentBreakdown struct {
	Method PaymentMethod   `json:"payment_method"`
	Orders int             `json:"orders"`
	Taken  decimal.Decimal `json:"taken"`
}

// DailyReport aggregates the day's non-cancelled orders
type DailyReport struct {
	Date          string             `json:"date"`
	OrdersCount   int                `json:"orders_count"`
	GrossSales    decimal.Decimal    `json:"gross_sales"`
	TotalDiscount decimal.Decimal    `json:"total_discount"`
	TotalService  decimal.Decimal    `json:"total_service_charge"`
	TotalTax      decimal.Decimal    `json:"total_tax"`
	TotalTaken    decimal.Decimal    `json:"total_taken"`
	Payments      []PaymentBreakdown `json:"payments"`
}

// UpdateStatusRequest carries a status change for a saved order
type UpdateStatusRequest struct {
	Status    string `json:"status"`
	ChangedBy string `json:"changed_by"`
}

// ReceiptResponse is the replayed or stored receipt for an order
type ReceiptResponse struct {
	ReceiptRef string `json:"receipt_ref"`
	Body       string `json:"body"`
	PrintedBy  string `json:"printed_by,omitempty"`
	PrintedAt  string `json:"printed_at,omitempty"`
}
