package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pos-system/internal/config"
	"pos-system/internal/logger"
	"pos-system/internal/models"
	"pos-system/internal/pricing"
	"pos-system/internal/receipt"
	"pos-system/internal/session"
)

// ErrStorageUnavailable wraps persistence failures so the HTTP layer can
// answer 503 and the operator can retry the save with the draft intact.
var ErrStorageUnavailable = errors.New("order storage is unavailable")

// OrderStore is the persistence surface the service needs
type OrderStore interface {
	SaveOrder(ctx context.Context, order *models.Order, now time.Time) error
	Ping(ctx context.Context) error
}

// EventPublisher is the messaging surface the service needs
type EventPublisher interface {
	PublishOrderSaved(ctx context.Context, orderMsg interface{}, routingKey string) error
	PublishNotification(ctx context.Context, notificationMsg interface{}) error
}

// Service implements the pos business logic: resolving order lines against
// the menu catalog, pricing, persisting and announcing saved orders.
type Service struct {
	store     OrderStore
	publisher EventPublisher
	catalog   *models.Catalog
	sessions  *session.Store
	cfg       *config.Config
	logger    *logger.Logger
}

// NewService creates a new pos service
func NewService(store OrderStore, publisher EventPublisher, catalog *models.Catalog, sessions *session.Store, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		catalog:   catalog,
		sessions:  sessions,
		cfg:       cfg,
		logger:    log,
	}
}

// Sessions returns the live session store
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Catalog returns the menu catalog
func (s *Service) Catalog() *models.Catalog {
	return s.catalog
}

// Quote prices a draft without persisting anything. Numeric fields arrive as
// raw text and parse tolerantly; only an unknown item name is an error.
func (s *Service) Quote(req *models.QuoteRequest) (models.PricingResult, error) {
	lines := make([]models.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		entry, ok := s.catalog.Lookup(item.Name)
		if !ok {
			return models.PricingResult{}, fmt.Errorf("%w: %s", session.ErrUnknownItem, item.Name)
		}
		lines = append(lines, models.LineItem{
			Name:      entry.Name,
			Quantity:  pricing.ParseQuantity(item.Quantity),
			UnitPrice: entry.Price,
			Category:  entry.Category,
		})
	}

	discount := pricing.ParseAmount(req.DiscountPercent)
	return pricing.Compute(lines, s.resolveParams(lines, discount, req.ServiceCharge)), nil
}

// CreateOrder prices and persists a one-shot order in a single call.
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, requestID string) (*models.CreateOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lines := make([]models.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		entry, ok := s.catalog.Lookup(item.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", session.ErrUnknownItem, item.Name)
		}
		lines = append(lines, models.LineItem{
			Name:      entry.Name,
			Quantity:  item.Quantity,
			UnitPrice: entry.Price,
			Category:  entry.Category,
		})
	}

	discount := pricing.ParseAmount(req.DiscountPercent)
	if err := pricing.ValidateDiscountPercent(discount); err != nil {
		return nil, err
	}

	params := s.resolveParams(lines, discount, req.ServiceCharge)
	result := pricing.Compute(lines, params)

	return s.persist(ctx, &req.SaveOrderRequest, lines, result, requestID)
}

// SaveSession persists a live draft session. A storage failure re-arms the
// session so the operator can retry without re-entering the order.
func (s *Service) SaveSession(ctx context.Context, sess *session.Session, req *models.SaveOrderRequest, requestID string) (*models.CreateOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := sess.BeginSave(); err != nil {
		return nil, err
	}

	lines := sess.Lines()
	if len(lines) == 0 {
		sess.AbortSave()
		return nil, models.ValidationError{Field: "items", Message: "cannot save an empty order"}
	}

	result := sess.Result()
	if err := pricing.ValidateDiscountPercent(result.DiscountPercent); err != nil {
		sess.AbortSave()
		return nil, err
	}

	resp, err := s.persist(ctx, req, lines, result, requestID)
	if err != nil {
		sess.AbortSave()
		return nil, err
	}

	sess.FinishSave(resp.ReceiptRef)
	return resp, nil
}

// persist builds the order record, saves it, publishes the order-saved
// message and renders the response receipt.
func (s *Service) persist(ctx context.Context, req *models.SaveOrderRequest, lines []models.LineItem, result models.PricingResult, requestID string) (*models.CreateOrderResponse, error) {
	now := time.Now()

	order := &models.Order{
		OrderDate:     now.Format("2006-01-02"),
		OrderTime:     now.Format("15:04:05"),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Items:         lines,
		CostOfDrinks:  result.CostOfDrinks,
		CostOfCakes:   result.CostOfCakes,
		ServiceCharge: result.ServiceCharge,
		Discount:      result.DiscountAmount,
		DiscountPct:   result.DiscountPercent,
		Subtotal:      result.Subtotal,
		TaxPaid:       result.TaxAmount,
		TotalCost:     result.Total,
		Status:        models.StatusPending,
		ServedBy:      req.ServedBy,
		TableNumber:   req.TableNumber,
		OrderType:     models.OrderType(req.OrderType),
		Notes:         req.Notes,
	}

	if err := s.store.SaveOrder(ctx, order, now); err != nil {
		s.logger.Error("order_save_failed", "Failed to persist order", requestID, err, map[string]interface{}{
			"customer_name": order.CustomerName,
			"order_type":    order.OrderType,
		})
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.logger.Info("order_saved", "Order persisted", requestID, map[string]interface{}{
		"receipt_ref": order.ReceiptRef,
		"total_cost":  order.TotalCost.StringFixed(2),
	})

	s.announce(ctx, order, requestID)

	resp := &models.CreateOrderResponse{
		ReceiptRef: order.ReceiptRef,
		Status:     order.Status,
		Result:     result,
		Receipt:    receipt.RenderOrder(order, s.cfg.Restaurant.Name, s.cfg.Restaurant.Currency),
	}
	if result.Total.IsNegative() {
		resp.Warning = "order total is negative"
	}
	return resp, nil
}

// announce publishes the order-saved message for the receipt printer and a
// till notification. Messaging failures are logged, never surfaced: the
// order is already committed and the receipt can be replayed later.
func (s *Service) announce(ctx context.Context, order *models.Order, requestID string) {
	msg := models.OrderSavedMessage{
		ReceiptRef:    order.ReceiptRef,
		CustomerName:  order.CustomerName,
		OrderType:     order.OrderType,
		PaymentMethod: order.PaymentMethod,
		TableNumber:   order.TableNumber,
		TotalCost:     order.TotalCost,
	}
	if err := s.publisher.PublishOrderSaved(ctx, msg, models.ReceiptRoutingKey(order.OrderType)); err != nil {
		s.logger.Error("order_publish_failed", "Failed to publish order-saved message", requestID, err, map[string]interface{}{
			"receipt_ref": order.ReceiptRef,
		})
	}

	notification := models.NewNotification(order.ReceiptRef, models.EventOrderSaved, "", string(order.Status), "pos-service")
	if err := s.publisher.PublishNotification(ctx, notification); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish notification", requestID, err, map[string]interface{}{
			"receipt_ref": order.ReceiptRef,
		})
	}
}

// resolveParams turns the parsed discount and raw service-charge text into
// engine parameters. An empty service charge prefills from the configured
// rate against the post-discount subtotal.
func (s *Service) resolveParams(lines []models.LineItem, discount decimal.Decimal, rawService string) pricing.Params {
	var serviceCharge decimal.Decimal
	if rawService == "" {
		base := pricing.Compute(lines, pricing.Params{DiscountPercent: discount})
		serviceCharge = pricing.DefaultServiceCharge(base.Subtotal.Sub(base.DiscountAmount), s.cfg.Pricing.ServiceChargeRate)
	} else {
		serviceCharge = pricing.ParseAmount(rawService)
	}

	return pricing.Params{
		DiscountPercent: discount,
		ServiceCharge:   serviceCharge,
		TaxRate:         s.cfg.Pricing.TaxRate,
	}
}

// HealthCheck verifies the service dependencies
func (s *Service) HealthCheck(ctx context.Context) bool {
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health_check_failed", "Database ping failed", "", err, nil)
		return false
	}
	return true
}
