package database

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pos-system/internal/models"
)

// ScanOrder scans a full order row in the column order of GetOrderByRefSQL.
// The items JSONB column is decoded back into line items; categories are not
// stored with the order, so replayed lines carry only name, qty and price.
func ScanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var itemsJSON []byte

	err := row.Scan(
		&o.ID, &o.ReceiptRef, &o.OrderDate, &o.OrderTime, &o.CustomerName,
		&o.CustomerPhone, &o.CustomerEmail, &o.PaymentMethod, &itemsJSON,
		&o.CostOfDrinks, &o.CostOfCakes, &o.ServiceCharge, &o.Discount,
		&o.DiscountPct, &o.Subtotal, &o.TaxPaid, &o.TotalCost, &o.Status,
		&o.ServedBy, &o.TableNumber, &o.OrderType, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}

	return &o, nil
}
