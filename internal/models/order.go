package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType represents how an order is fulfilled
type OrderType string

const (
	DineIn   OrderType = "Dine-in"
	Takeaway OrderType = "Takeaway"
	Delivery OrderType = "Delivery"
)

// OrderStatus represents the lifecycle state of a saved order
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

// PaymentMethod represents how an order was paid
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "Cash"
	PaymentCard    PaymentMethod = "Card"
	PaymentDigital PaymentMethod = "Digital"
)

// Category classifies a menu entry. Orders persist a per-category cost
// breakdown only for drinks and cakes; everything else folds into a
// catch-all bucket (a quirk of the stored schema, kept for compatibility).
type Category string

const (
	CategoryDrinks     Category = "drinks"
	CategoryCakes      Category = "cakes"
	CategoryAppetizers Category = "appetizers"
	CategoryMainCourse Category = "main_course"
	CategoryDesserts   Category = "desserts"
	CategorySpecials   Category = "specials"
)

// LineItem is one menu entry selected for an order, with quantity.
// The serialized form is exactly {name, qty, unit_price}; the category is
// resolved from the menu catalog and never stored with the order.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Category  Category        `json:"-"`
}

// LineTotal returns unit price times quantity, unrounded.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// PricingResult holds every derived monetary field for one order.
// All fields are rounded to 2 decimal places at the point of computation.
type PricingResult struct {
	CostOfDrinks      decimal.Decimal `json:"cost_of_drinks"`
	CostOfCakes       decimal.Decimal `json:"cost_of_cakes"`
	OtherCategoryCost decimal.Decimal `json:"other_category_cost"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	DiscountAmount    decimal.Decimal `json:"discount"`
	ServiceCharge     decimal.Decimal `json:"service_charge"`
	TaxAmount         decimal.Decimal `json:"tax_paid"`
	Total             decimal.Decimal `json:"total_cost"`
}

// Order is the persisted order record, one row per saved order.
type Order struct {
	ID            int             `json:"id,omitempty" db:"id"`
	ReceiptRef    string          `json:"receipt_ref" db:"receipt_ref"`
	OrderDate     string          `json:"order_date" db:"order_date"`
	OrderTime     string          `json:"order_time" db:"order_time"`
	CustomerName  string          `json:"customer_name" db:"customer_name"`
	CustomerPhone string          `json:"customer_phone" db:"customer_phone"`
	CustomerEmail string          `json:"customer_email,omitempty" db:"customer_email"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	Items         []LineItem      `json:"items"`
	CostOfDrinks  decimal.Decimal `json:"cost_of_drinks" db:"cost_of_drinks"`
	CostOfCakes   decimal.Decimal `json:"cost_of_cakes" db:"cost_of_cakes"`
	ServiceCharge decimal.Decimal `json:"service_charge" db:"service_charge"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	DiscountPct   decimal.Decimal `json:"discount_percent" db:"discount_percent"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxPaid       decimal.Decimal `json:"tax_paid" db:"tax_paid"`
	TotalCost     decimal.Decimal `json:"total_cost" db:"total_cost"`
	Status        OrderStatus     `json:"status" db:"status"`
	ServedBy      string          `json:"served_by,omitempty" db:"served_by"`
	TableNumber   *int            `json:"table_number,omitempty" db:"table_number"`
	OrderType     OrderType       `json:"order_type" db:"order_type"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time       `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// Result reconstructs the pricing result from the persisted columns.
// The catch-all category bucket is derived, not stored.
func (o *Order) Result() PricingResult {
	return PricingResult{
		CostOfDrinks:      o.CostOfDrinks,
		CostOfCakes:       o.CostOfCakes,
		OtherCategoryCost: o.Subtotal.Sub(o.CostOfDrinks).Sub(o.CostOfCakes),
		Subtotal:          o.Subtotal,
		DiscountPercent:   o.DiscountPct,
		DiscountAmount:    o.Discount,
		ServiceCharge:     o.ServiceCharge,
		TaxAmount:         o.TaxPaid,
		Total:             o.TotalCost,
	}
}

// CanTransitionTo reports whether a status change is allowed. Completed and
// cancelled orders are immutable.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	if o.Status != StatusPending {
		return false
	}
	return next == StatusCompleted || next == StatusCancelled
}

// ValidationError describes a rejected request field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ItemRequest is one selected menu entry in an order request. The unit price
// always comes from the menu catalog, never from the client.
type ItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"qty"`
}

// SaveOrderRequest carries the operator-entered metadata needed to persist a
// priced order.
type SaveOrderRequest struct {
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	PaymentMethod string  `json:"payment_method"`
	OrderType     string  `json:"order_type"`
	TableNumber   *int    `json:"table_number,omitempty"`
	ServedBy      string  `json:"served_by,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// CreateOrderRequest is the one-shot create request: items plus the
// operator-entered pricing parameters and save metadata. Discount and service
// charge arrive as raw text from the till and are parsed tolerantly.
type CreateOrderRequest struct {
	SaveOrderRequest
	Items           []ItemRequest `json:"items"`
	DiscountPercent string        `json:"discount_percent,omitempty"`
	ServiceCharge   string        `json:"service_charge,omitempty"`
}

// QuoteItemRequest is a live-recompute line: quantity arrives as raw text so
// a half-typed entry degrades to zero instead of erroring.
type QuoteItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"qty"`
}

// QuoteRequest is the recalculate-on-keystroke request. Every numeric field
// is raw text; unparsable input is treated as zero and never rejected.
type QuoteRequest struct {
	Items           []QuoteItemRequest `json:"items"`
	DiscountPercent string             `json:"discount_percent,omitempty"`
	ServiceCharge   string             `json:"service_charge,omitempty"`
}

// UpdateSessionRequest replaces the draft of a live session. Like quote
// requests, every numeric field arrives as raw text.
type UpdateSessionRequest struct {
	Items           []QuoteItemRequest `json:"items"`
	DiscountPercent string             `json:"discount_percent,omitempty"`
	ServiceCharge   string             `json:"service_charge,omitempty"`
}

// SessionResponse is the live view of a draft session.
type SessionResponse struct {
	SessionID string        `json:"session_id"`
	Lines     []LineItem    `json:"lines"`
	Result    PricingResult `json:"result"`
}

// CreateOrderResponse is returned after a successful save.
type CreateOrderResponse struct {
	ReceiptRef string        `json:"receipt_ref"`
	Status     OrderStatus   `json:"status"`
	Result     PricingResult `json:"result"`
	Receipt    string        `json:"receipt"`
	Warning    string        `json:"warning,omitempty"`
}

// Validate checks the save metadata. Items and pricing are validated
// separately because drafts build up incrementally.
func (req *SaveOrderRequest) Validate() error {
	if req.CustomerName == "" {
		return ValidationError{Field: "customer_name", Message: "customer name is required"}
	}
	if len(req.CustomerName) > 100 {
		return ValidationError{Field: "customer_name", Message: "customer name must be less than 100 characters"}
	}
	if req.CustomerPhone == "" {
		return ValidationError{Field: "customer_phone", Message: "customer phone is required"}
	}

	switch PaymentMethod(req.PaymentMethod) {
	case PaymentCash, PaymentCard, PaymentDigital:
	default:
		return ValidationError{Field: "payment_method", Message: "payment method must be one of: Cash, Card, Digital"}
	}

	switch OrderType(req.OrderType) {
	case DineIn:
		if req.TableNumber == nil {
			return ValidationError{Field: "table_number", Message: "table number is required for dine-in orders"}
		}
		if *req.TableNumber < 1 || *req.TableNumber > 100 {
			return ValidationError{Field: "table_number", Message: "table number must be between 1 and 100"}
		}
	case Takeaway, Delivery:
	default:
		return ValidationError{Field: "order_type", Message: "order type must be one of: Dine-in, Takeaway, Delivery"}
	}

	return nil
}

// Validate additionally requires at least one resolvable item.
func (req *CreateOrderRequest) Validate() error {
	if err := req.SaveOrderRequest.Validate(); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return ValidationError{Field: "items", Message: "items cannot be empty"}
	}
	for i, item := range req.Items {
		if item.Name == "" {
			return ValidationError{Field: fmt.Sprintf("items[%d].name", i), Message: "item name is required"}
		}
		if item.Quantity < 1 {
			return ValidationError{Field: fmt.Sprintf("items[%d].qty", i), Message: "quantity must be at least 1"}
		}
	}
	return nil
}
