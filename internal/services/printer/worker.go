// Package printer implements the receipt-printer worker: it consumes saved
// orders from the print queue, re-renders the receipt from the persisted
// record and stores the rendered body so the back office can replay it.
package printer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"

	"pos-system/internal/database"
	"pos-system/internal/logger"
	"pos-system/internal/messaging"
	"pos-system/internal/models"
	"pos-system/internal/receipt"
)

// Worker represents a receipt printer worker
type Worker struct {
	name              string
	heartbeatInterval time.Duration
	restaurantName    string
	currency          string

	db        *database.DB
	consumer  *messaging.Consumer
	publisher *messaging.Publisher
	logger    *logger.Logger

	// Graceful shutdown
	shutdown chan os.Signal
	done     chan bool
}

// NewWorker creates a new receipt printer worker
func NewWorker(name string, heartbeatInterval time.Duration, restaurantName, currency string,
	db *database.DB, consumer *messaging.Consumer, publisher *messaging.Publisher, log *logger.Logger) *Worker {

	return &Worker{
		name:              name,
		heartbeatInterval: heartbeatInterval,
		restaurantName:    restaurantName,
		currency:          currency,
		db:                db,
		consumer:          consumer,
		publisher:         publisher,
		logger:            log,
		shutdown:          make(chan os.Signal, 1),
		done:              make(chan bool, 1),
	}
}

// Start starts the receipt printer worker
func (w *Worker) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	if err := w.register(ctx, requestID); err != nil {
		return fmt.Errorf("failed to register printer: %w", err)
	}

	signal.Notify(w.shutdown, syscall.SIGINT, syscall.SIGTERM)

	go w.heartbeatLoop(ctx)

	go func() {
		if err := w.consumer.StartConsuming(ctx, w.handleMessage); err != nil {
			w.logger.Error("consumer_failed", "Message consumer failed", requestID, err, nil)
		}
		w.done <- true
	}()

	w.logger.Info("printer_started", fmt.Sprintf("Receipt printer %s started", w.name), requestID, map[string]interface{}{
		"printer_name":       w.name,
		"heartbeat_interval": w.heartbeatInterval.Seconds(),
	})

	// The consumer exiting (context cancelled upstream) must also leave the
	// printer marked offline, not just a direct signal.
	select {
	case <-w.shutdown:
		w.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	case <-w.done:
	}
	return w.gracefulShutdown(requestID)
}

// register registers the printer in the database. A second printer with the
// same name while the first is online is a deployment mistake, not a retry.
func (w *Worker) register(ctx context.Context, requestID string) error {
	var count int
	if err := w.db.QueryRow(ctx, database.CheckPrinterOnlineSQL, w.name).Scan(&count); err != nil {
		return fmt.Errorf("failed to check printer status: %w", err)
	}

	if count > 0 {
		w.logger.Error("printer_registration_failed", "Printer with same name is already online", requestID, nil, map[string]interface{}{
			"printer_name": w.name,
		})
		return fmt.Errorf("printer %s is already online", w.name)
	}

	var printerID int
	if err := w.db.QueryRow(ctx, database.InsertPrinterSQL, w.name).Scan(&printerID); err != nil {
		return fmt.Errorf("failed to register printer: %w", err)
	}

	w.logger.Info("printer_registered", fmt.Sprintf("Printer %s registered successfully", w.name), requestID, map[string]interface{}{
		"printer_id":   printerID,
		"printer_name": w.name,
	})

	return nil
}

// handleMessage processes one order-saved message from the print queue
func (w *Worker) handleMessage(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var orderMsg models.OrderSavedMessage
	if err := json.Unmarshal(body, &orderMsg); err != nil {
		w.logger.Error("message_parsing_failed", "Failed to parse order message", requestID, err, nil)
		return fmt.Errorf("failed to parse message: %w", err)
	}

	w.logger.Debug("print_started", fmt.Sprintf("Printing receipt %s", orderMsg.ReceiptRef), requestID, map[string]interface{}{
		"receipt_ref":   orderMsg.ReceiptRef,
		"customer_name": orderMsg.CustomerName,
		"order_type":    orderMsg.OrderType,
	})

	return w.printReceipt(ctx, orderMsg.ReceiptRef, requestID)
}

// printReceipt loads the persisted order, renders the receipt from the stored
// record (not from the message) and stores the body.
func (w *Worker) printReceipt(ctx context.Context, receiptRef, requestID string) error {
	order, err := database.ScanOrder(w.db.QueryRow(ctx, database.GetOrderByRefSQL, receiptRef))
	if errors.Is(err, pgx.ErrNoRows) {
		// Nack-and-requeue would loop forever on a ref that never existed;
		// log and drop.
		w.logger.Error("order_not_found", "No order for receipt reference", requestID, nil, map[string]interface{}{
			"receipt_ref": receiptRef,
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", receiptRef, err)
	}

	body := receipt.RenderOrder(order, w.restaurantName, w.currency)

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, database.InsertReceiptSQL, receiptRef, body, w.name); err != nil {
		return fmt.Errorf("failed to store receipt: %w", err)
	}

	if _, err := tx.Exec(ctx, database.IncrementPrinterCounterSQL, 1, w.name); err != nil {
		return fmt.Errorf("failed to increment printed counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	notification := models.NewNotification(receiptRef, models.EventReceiptPrinted, "", "", w.name)
	if err := w.publisher.PublishNotification(ctx, notification); err != nil {
		w.logger.Error("notification_publish_failed", "Failed to publish printed notification", requestID, err, map[string]interface{}{
			"receipt_ref": receiptRef,
		})
		// The receipt is stored; notification loss is tolerable
	}

	w.logger.Info("receipt_printed", fmt.Sprintf("Receipt %s printed", receiptRef), requestID, map[string]interface{}{
		"receipt_ref": receiptRef,
		"printed_by":  w.name,
	})

	return nil
}

// heartbeatLoop sends periodic heartbeats to update last_seen
func (w *Worker) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(w.heartbeatInterval)
	defer ticker.Stop()

	// Only watch the context here: the shutdown signal is delivered once and
	// belongs to Start, which runs the mark-offline path.
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.sendHeartbeat(ctx); err != nil {
				w.logger.Error("heartbeat_failed", "Failed to send heartbeat", "", err, nil)
			} else {
				w.logger.Debug("heartbeat_sent", "Heartbeat sent successfully", "", nil)
			}
		}
	}
}

// sendHeartbeat updates the printer's last_seen timestamp
func (w *Worker) sendHeartbeat(ctx context.Context) error {
	return w.db.Exec(ctx, database.UpdatePrinterStatusSQL, models.PrinterOnline, w.name)
}

// gracefulShutdown marks the printer offline and closes the consumer. It
// runs on a fresh context: the caller's context is usually already
// cancelled by the time shutdown starts.
func (w *Worker) gracefulShutdown(requestID string) error {
	w.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.db.Exec(ctx, database.UpdatePrinterStatusSQL, models.PrinterOffline, w.name); err != nil {
		w.logger.Error("shutdown_failed", "Failed to mark printer offline", requestID, err, nil)
	}

	if w.consumer != nil {
		w.consumer.Close()
	}

	w.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
