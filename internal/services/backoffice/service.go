// Package backoffice implements the read-and-manage side of the POS: order
// lookup, receipt replay, status changes, daily reports and printer status.
package backoffice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"pos-system/internal/config"
	"pos-system/internal/database"
	"pos-system/internal/logger"
	"pos-system/internal/messaging"
	"pos-system/internal/models"
	"pos-system/internal/receipt"
)

var (
	// ErrOrderNotFound is returned when no order matches a receipt reference.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition is returned for a status change a saved order does
	// not allow. Completed and cancelled orders are immutable.
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// Service implements the backoffice business logic
type Service struct {
	db                *database.DB
	publisher         *messaging.Publisher
	cfg               *config.Config
	logger            *logger.Logger
	heartbeatInterval time.Duration
}

// NewService creates a new backoffice service
func NewService(db *database.DB, publisher *messaging.Publisher, cfg *config.Config, log *logger.Logger, heartbeatInterval time.Duration) *Service {
	return &Service{
		db:                db,
		publisher:         publisher,
		cfg:               cfg,
		logger:            log,
		heartbeatInterval: heartbeatInterval,
	}
}

// GetOrder loads an order by receipt reference
func (s *Service) GetOrder(ctx context.Context, receiptRef string) (*models.Order, error) {
	order, err := database.ScanOrder(s.db.QueryRow(ctx, database.GetOrderByRefSQL, receiptRef))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

// GetReceipt returns the stored receipt body for an order, falling back to a
// fresh render from the persisted record when no printer has run yet. Either
// way the output is byte-identical to the original print.
func (s *Service) GetReceipt(ctx context.Context, receiptRef string) (*models.ReceiptResponse, error) {
	resp := &models.ReceiptResponse{ReceiptRef: receiptRef}

	var printedAt time.Time
	err := s.db.QueryRow(ctx, database.GetReceiptByRefSQL, receiptRef).Scan(&resp.Body, &resp.PrintedBy, &printedAt)
	if err == nil {
		resp.PrintedAt = printedAt.UTC().Format(time.RFC3339)
		return resp, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}

	order, err := s.GetOrder(ctx, receiptRef)
	if err != nil {
		return nil, err
	}
	resp.Body = receipt.RenderOrder(order, s.cfg.Restaurant.Name, s.cfg.Restaurant.Currency)
	return resp, nil
}

// UpdateStatus applies a status change to a pending order and broadcasts a
// notification. Only Pending -> Completed and Pending -> Cancelled are valid.
func (s *Service) UpdateStatus(ctx context.Context, receiptRef string, req *models.UpdateStatusRequest, requestID string) (*models.Order, error) {
	next := models.OrderStatus(req.Status)
	if next != models.StatusCompleted && next != models.StatusCancelled {
		return nil, models.ValidationError{Field: "status", Message: "status must be Completed or Cancelled"}
	}

	order, err := s.GetOrder(ctx, receiptRef)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s order cannot become %s", ErrInvalidTransition, order.Status, next)
	}

	// The update is guarded on status = 'Pending', so a concurrent change
	// loses cleanly instead of overwriting.
	tag, err := s.db.Pool.Exec(ctx, database.UpdateOrderStatusSQL, next, receiptRef)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: order is no longer pending", ErrInvalidTransition)
	}

	oldStatus := order.Status
	order.Status = next

	changedBy := req.ChangedBy
	if changedBy == "" {
		changedBy = "backoffice-service"
	}
	notification := models.NewNotification(receiptRef, models.EventStatusChanged, string(oldStatus), string(next), changedBy)
	if err := s.publisher.PublishNotification(ctx, notification); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish status notification", requestID, err, map[string]interface{}{
			"receipt_ref": receiptRef,
		})
	}

	s.logger.Info("order_status_changed", fmt.Sprintf("Order %s is now %s", receiptRef, next), requestID, map[string]interface{}{
		"receipt_ref": receiptRef,
		"old_status":  oldStatus,
		"new_status":  next,
		"changed_by":  changedBy,
	})

	return order, nil
}

// DailyReport aggregates the day's non-cancelled orders with a per-payment
// breakdown.
func (s *Service) DailyReport(ctx context.Context, date string) (*models.DailyReport, error) {
	report := &models.DailyReport{Date: date}

	err := s.db.QueryRow(ctx, database.GetDailyReportSQL, date).Scan(
		&report.OrdersCount, &report.GrossSales, &report.TotalDiscount,
		&report.TotalService, &report.TotalTax, &report.TotalTaken,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build daily report: %w", err)
	}

	rows, err := s.db.Query(ctx, database.GetDailyPaymentBreakdownSQL, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.PaymentBreakdown
		if err := rows.Scan(&p.Method, &p.Orders, &p.Taken); err != nil {
			return nil, fmt.Errorf("failed to scan payment breakdown: %w", err)
		}
		report.Payments = append(report.Payments, p)
	}

	return report, rows.Err()
}

// PrinterStatus lists all registered printers with their liveness derived
// from the heartbeat.
func (s *Service) PrinterStatus(ctx context.Context) ([]models.PrinterStatusResponse, error) {
	rows, err := s.db.Query(ctx, database.GetAllPrintersSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query printers: %w", err)
	}
	defer rows.Close()

	var result []models.PrinterStatusResponse
	for rows.Next() {
		var p models.Printer
		if err := rows.Scan(&p.Name, &p.Status, &p.ReceiptsPrinted, &p.LastSeen, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan printer: %w", err)
		}

		status := string(models.PrinterOffline)
		if p.IsOnline(s.heartbeatInterval) {
			status = string(models.PrinterOnline)
		}

		result = append(result, models.PrinterStatusResponse{
			PrinterName:     p.Name,
			Status:          status,
			ReceiptsPrinted: p.ReceiptsPrinted,
			LastSeen:        p.LastSeen,
		})
	}

	return result, rows.Err()
}

// HealthCheck verifies the service dependencies
func (s *Service) HealthCheck(ctx context.Context) bool {
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health_check_failed", "Database ping failed", "", err, nil)
		return false
	}
	return true
}
