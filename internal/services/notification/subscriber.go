// Package notification implements the till-display subscriber: it consumes
// the fanout queue and prints human-readable notifications for saved orders,
// printed receipts and status changes.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pos-system/internal/logger"
	"pos-system/internal/messaging"
	"pos-system/internal/models"
)

// Subscriber handles notification messages
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger

	// Graceful shutdown
	shutdown chan os.Signal
	done     chan bool
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(consumer *messaging.Consumer, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		shutdown: make(chan os.Signal, 1),
		done:     make(chan bool, 1),
	}
}

// Start starts the notification subscriber
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)

	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	go func() {
		if err := s.consumer.StartConsuming(ctx, s.handleNotification); err != nil {
			s.logger.Error("consumer_failed", "Notification consumer failed", requestID, err, nil)
		}
		s.done <- true
	}()

	select {
	case <-s.shutdown:
		s.logger.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		return s.gracefulShutdown(ctx, requestID)
	case <-s.done:
		return nil
	}
}

// handleNotification processes incoming till notifications
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var notification models.NotificationMessage
	if err := json.Unmarshal(body, &notification); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	s.logger.Debug("notification_received", "Received till notification", requestID, map[string]interface{}{
		"receipt_ref": notification.ReceiptRef,
		"event":       notification.Event,
		"changed_by":  notification.ChangedBy,
	})

	s.displayNotification(&notification)

	return nil
}

// displayNotification prints a human-readable notification to console
func (s *Subscriber) displayNotification(notification *models.NotificationMessage) {
	fmt.Println(s.formatNotification(notification))

	s.logger.Info("notification_displayed", "Notification displayed to user", "", map[string]interface{}{
		"receipt_ref": notification.ReceiptRef,
		"event":       notification.Event,
		"old_status":  notification.OldStatus,
		"new_status":  notification.NewStatus,
		"changed_by":  notification.ChangedBy,
		"timestamp":   notification.Timestamp.Format("2006-01-02 15:04:05"),
	})
}

// formatNotification creates a human-readable notification message
func (s *Subscriber) formatNotification(notification *models.NotificationMessage) string {
	timestamp := notification.Timestamp.Format("2006-01-02 15:04:05")

	switch notification.Event {
	case models.EventOrderSaved:
		return fmt.Sprintf(
			"🧾 [%s] Order %s saved and queued for printing.",
			timestamp,
			notification.ReceiptRef,
		)
	case models.EventReceiptPrinted:
		return fmt.Sprintf(
			"🖨️  [%s] Receipt %s printed by %s.",
			timestamp,
			notification.ReceiptRef,
			notification.ChangedBy,
		)
	case models.EventStatusChanged:
		switch models.OrderStatus(notification.NewStatus) {
		case models.StatusCompleted:
			return fmt.Sprintf(
				"🎉 [%s] Order %s has been completed. Thank you for your business.",
				timestamp,
				notification.ReceiptRef,
			)
		case models.StatusCancelled:
			return fmt.Sprintf(
				"❌ [%s] Order %s has been cancelled by %s.",
				timestamp,
				notification.ReceiptRef,
				notification.ChangedBy,
			)
		}
	}

	return fmt.Sprintf(
		"📋 [%s] Order %s: %s (%s -> %s) by %s.",
		timestamp,
		notification.ReceiptRef,
		notification.Event,
		notification.OldStatus,
		notification.NewStatus,
		notification.ChangedBy,
	)
}

// gracefulShutdown handles graceful shutdown of the subscriber
func (s *Subscriber) gracefulShutdown(ctx context.Context, requestID string) error {
	s.logger.Info("graceful_shutdown", "Starting graceful shutdown", requestID, nil)

	if s.consumer != nil {
		s.consumer.Close()
	}

	s.logger.Info("graceful_shutdown", "Graceful shutdown completed", requestID, nil)
	return nil
}
