package pos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"pos-system/internal/config"
	"pos-system/internal/database"
	"pos-system/internal/logger"
	"pos-system/internal/loyalty"
	"pos-system/internal/models"
)

// Repository handles database operations for the pos service
type Repository struct {
	db         *database.DB
	logger     *logger.Logger
	loyaltyCfg config.LoyaltyConfig
}

// NewRepository creates a new pos repository
func NewRepository(db *database.DB, log *logger.Logger, loyaltyCfg config.LoyaltyConfig) *Repository {
	return &Repository{
		db:         db,
		logger:     log,
		loyaltyCfg: loyaltyCfg,
	}
}

// LoadMenu loads all menu items for the catalog
func (r *Repository) LoadMenu(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := r.db.Query(ctx, database.GetMenuItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveOrder persists an order inside a single transaction: the receipt
// reference is allocated from today's sequence, the row is inserted, and the
// customer's loyalty fields are accrued, all atomically. On success the
// order's ReceiptRef, ID and CreatedAt are filled in.
func (r *Repository) SaveOrder(ctx context.Context, order *models.Order, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Allocate the next receipt sequence for today. The MAX scan runs under
	// the same transaction as the insert, so the unique constraint on
	// receipt_ref catches the (rare) concurrent-till collision.
	prefix := "REC_" + now.Format("20060102") + "_%"
	var sequence int
	if err := tx.QueryRow(ctx, database.GetNextReceiptSequenceSQL, prefix).Scan(&sequence); err != nil {
		return fmt.Errorf("failed to get next receipt sequence: %w", err)
	}
	order.ReceiptRef = models.GenerateReceiptRef(now, sequence)

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		order.ReceiptRef, order.OrderDate, order.OrderTime, order.CustomerName,
		order.CustomerPhone, order.CustomerEmail, order.PaymentMethod, itemsJSON,
		order.CostOfDrinks, order.CostOfCakes, order.ServiceCharge, order.Discount,
		order.DiscountPct, order.Subtotal, order.TaxPaid, order.TotalCost,
		order.Status, order.ServedBy, order.TableNumber, order.OrderType, order.Notes,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if err := r.accrueLoyalty(ctx, tx, order); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// accrueLoyalty updates the customer matching the order's phone number.
// First-time customers are created with a fresh Bronze profile so the accrual
// starts from zero.
func (r *Repository) accrueLoyalty(ctx context.Context, tx pgx.Tx, order *models.Order) error {
	var customer models.Customer
	err := tx.QueryRow(ctx, database.GetCustomerByPhoneForUpdateSQL, order.CustomerPhone).Scan(
		&customer.ID, &customer.Name, &customer.Phone, &customer.Email,
		&customer.TotalOrders, &customer.TotalSpent, &customer.LoyaltyPoints, &customer.LoyaltyTier,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		customer = models.Customer{
			Name:        order.CustomerName,
			Phone:       order.CustomerPhone,
			Email:       order.CustomerEmail,
			LoyaltyTier: models.TierBronze,
		}
		if err := tx.QueryRow(ctx, database.InsertCustomerSQL,
			customer.Name, customer.Phone, customer.Email).Scan(&customer.ID); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to load customer: %w", err)
	}

	acc := loyalty.Apply(&customer, order.TotalCost, r.loyaltyCfg)

	_, err = tx.Exec(ctx, database.UpdateCustomerLoyaltySQL,
		acc.TotalOrders, acc.TotalSpent, acc.LoyaltyPoints, acc.LoyaltyTier, customer.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer loyalty: %w", err)
	}

	return nil
}

// Ping checks database connectivity
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
