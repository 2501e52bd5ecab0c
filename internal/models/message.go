package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderSavedMessage is published to the print queue after an order is saved
type OrderSavedMessage struct {
	ReceiptRef    string          `json:"receipt_ref"`
	CustomerName  string          `json:"customer_name"`
	OrderType     OrderType       `json:"order_type"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	TableNumber   *int            `json:"table_number,omitempty"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// NotificationMessage is broadcast on the fanout exchange for till displays
type NotificationMessage struct {
	ReceiptRef string    `json:"receipt_ref"`
	Event      string    `json:"event"`
	OldStatus  string    `json:"old_status,omitempty"`
	NewStatus  string    `json:"new_status,omitempty"`
	ChangedBy  string    `json:"changed_by"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notification event names
const (
	EventOrderSaved     = "order_saved"
	EventReceiptPrinted = "receipt_printed"
	EventStatusChanged  = "status_changed"
)

// NewNotification creates a notification message stamped with the current time.
func NewNotification(receiptRef, event, oldStatus, newStatus, changedBy string) *NotificationMessage {
	return &NotificationMessage{
		ReceiptRef: receiptRef,
		Event:      event,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		ChangedBy:  changedBy,
		Timestamp:  time.Now().UTC(),
	}
}

// GenerateReceiptRef builds a receipt reference in format REC_YYYYMMDD_NNN
func GenerateReceiptRef(date time.Time, sequence int) string {
	return fmt.Sprintf("REC_%s_%03d", date.Format("20060102"), sequence)
}

// ReceiptRoutingKey generates the routing key for order-saved messages,
// e.g. receipt.dine-in
func ReceiptRoutingKey(orderType OrderType) string {
	return "receipt." + strings.ToLower(string(orderType))
}
