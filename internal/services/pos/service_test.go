package pos

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pos-system/internal/config"
	"pos-system/internal/logger"
	"pos-system/internal/models"
	"pos-system/internal/session"
)

// fakeStore is an in-memory OrderStore for tests
type fakeStore struct {
	fail     bool
	saved    []*models.Order
	sequence int
}

func (f *fakeStore) SaveOrder(ctx context.Context, order *models.Order, now time.Time) error {
	if f.fail {
		return errors.New("connection refused")
	}
	f.sequence++
	order.ReceiptRef = models.GenerateReceiptRef(now, f.sequence)
	order.ID = f.sequence
	order.CreatedAt = now
	f.saved = append(f.saved, order)
	return nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	if f.fail {
		return errors.New("connection refused")
	}
	return nil
}

// fakePublisher records published messages
type fakePublisher struct {
	routingKeys   []string
	notifications []interface{}
}

func (f *fakePublisher) PublishOrderSaved(ctx context.Context, orderMsg interface{}, routingKey string) error {
	f.routingKeys = append(f.routingKeys, routingKey)
	return nil
}

func (f *fakePublisher) PublishNotification(ctx context.Context, notificationMsg interface{}) error {
	f.notifications = append(f.notifications, notificationMsg)
	return nil
}

func testCatalog() *models.Catalog {
	return models.NewCatalog([]models.MenuItem{
		{Name: "Latte", Category: models.CategoryDrinks, Price: decimal.RequireFromString("2.20")},
		{Name: "Tiramisu", Category: models.CategoryDesserts, Price: decimal.RequireFromString("5.25")},
		{Name: "Victoria Sponge", Category: models.CategoryCakes, Price: decimal.RequireFromString("3.40")},
	})
}

func newTestService(store OrderStore, pub EventPublisher) *Service {
	cfg := &config.Config{}
	cfg.Restaurant.Name = "The Golden Fork"
	cfg.Restaurant.Currency = "£"
	cfg.Pricing.TaxRate = decimal.RequireFromString("0.15")
	cfg.Pricing.ServiceChargeRate = decimal.RequireFromString("0.10")

	catalog := testCatalog()
	sessions := session.NewStore(catalog, cfg.Pricing.TaxRate, cfg.Pricing.ServiceChargeRate)
	return NewService(store, pub, catalog, sessions, cfg, logger.New("pos-service-test"))
}

func validRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		SaveOrderRequest: models.SaveOrderRequest{
			CustomerName:  "Ada Lovelace",
			CustomerPhone: "+441234567890",
			PaymentMethod: "Card",
			OrderType:     "Takeaway",
		},
		Items: []models.ItemRequest{
			{Name: "Latte", Quantity: 2},
			{Name: "Tiramisu", Quantity: 1},
		},
		DiscountPercent: "10",
		ServiceCharge:   "1.00",
	}
}

func TestCreateOrder_PersistsAndPublishes(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	resp, err := svc.CreateOrder(context.Background(), validRequest(), "test")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if !strings.HasPrefix(resp.ReceiptRef, "REC_") {
		t.Errorf("expected REC_ receipt ref, got %s", resp.ReceiptRef)
	}
	if resp.Status != models.StatusPending {
		t.Errorf("expected status Pending, got %s", resp.Status)
	}
	if got := resp.Result.Total.StringFixed(2); got != "10.98" {
		t.Errorf("expected total 10.98, got %s", got)
	}
	if resp.Warning != "" {
		t.Errorf("unexpected warning: %s", resp.Warning)
	}
	if !strings.Contains(resp.Receipt, "The Golden Fork") {
		t.Error("receipt missing restaurant name")
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected 1 saved order, got %d", len(store.saved))
	}
	order := store.saved[0]
	if got := order.TotalCost.StringFixed(2); got != "10.98" {
		t.Errorf("persisted total = %s, want 10.98", got)
	}
	if got := order.CostOfDrinks.StringFixed(2); got != "4.40" {
		t.Errorf("persisted cost_of_drinks = %s, want 4.40", got)
	}
	// The validated discount and the one applied by the engine are the same
	// parsed value.
	if got := order.DiscountPct.String(); got != "10" {
		t.Errorf("persisted discount_percent = %s, want 10", got)
	}
	if got := order.Discount.StringFixed(2); got != "0.97" {
		t.Errorf("persisted discount = %s, want 0.97", got)
	}
	if len(order.Items) != 2 {
		t.Errorf("expected 2 persisted items, got %d", len(order.Items))
	}

	if len(pub.routingKeys) != 1 || pub.routingKeys[0] != "receipt.takeaway" {
		t.Errorf("expected routing key receipt.takeaway, got %v", pub.routingKeys)
	}
	if len(pub.notifications) != 1 {
		t.Errorf("expected 1 notification, got %d", len(pub.notifications))
	}
}

func TestCreateOrder_UnknownItem(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakePublisher{})

	req := validRequest()
	req.Items = append(req.Items, models.ItemRequest{Name: "Flat White", Quantity: 1})

	_, err := svc.CreateOrder(context.Background(), req, "test")
	if !errors.Is(err, session.ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}
}

func TestCreateOrder_DiscountOutOfRange(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakePublisher{})

	req := validRequest()
	req.DiscountPercent = "150"

	_, err := svc.CreateOrder(context.Background(), req, "test")
	var validationErr models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validationErr.Field != "discount_percent" {
		t.Errorf("expected discount_percent field, got %s", validationErr.Field)
	}
}

func TestCreateOrder_StorageFailure(t *testing.T) {
	store := &fakeStore{fail: true}
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	_, err := svc.CreateOrder(context.Background(), validRequest(), "test")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
	if len(pub.routingKeys) != 0 {
		t.Error("nothing should be published when the save fails")
	}
}

func TestCreateOrder_NegativeTotalWarning(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakePublisher{})

	req := validRequest()
	req.DiscountPercent = "100"
	req.ServiceCharge = "-5.00"

	resp, err := svc.CreateOrder(context.Background(), req, "test")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if resp.Warning == "" {
		t.Error("expected a negative-total warning")
	}
	if got := resp.Result.Total.StringFixed(2); got != "-5.00" {
		t.Errorf("expected total -5.00 preserved, got %s", got)
	}
	if len(store.saved) != 1 {
		t.Error("negative totals are persisted, not rejected")
	}
}

func TestCreateOrder_ServiceChargePrefilledFromRate(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakePublisher{})

	req := validRequest()
	req.ServiceCharge = ""

	resp, err := svc.CreateOrder(context.Background(), req, "test")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	// 10% of the post-discount subtotal 8.68
	if got := resp.Result.ServiceCharge.StringFixed(2); got != "0.87" {
		t.Errorf("expected prefilled service charge 0.87, got %s", got)
	}
}

func TestQuote_TolerantParsing(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakePublisher{})

	result, err := svc.Quote(&models.QuoteRequest{
		Items: []models.QuoteItemRequest{
			{Name: "Latte", Quantity: "2"},
			{Name: "Tiramisu", Quantity: "x"},
		},
		DiscountPercent: "abc",
		ServiceCharge:   "1.00",
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	// Unparsable quantity and discount degrade to zero
	if got := result.Subtotal.StringFixed(2); got != "4.40" {
		t.Errorf("expected subtotal 4.40, got %s", got)
	}
	if !result.DiscountAmount.IsZero() {
		t.Errorf("expected zero discount, got %s", result.DiscountAmount)
	}
}

func TestQuote_UnknownItem(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakePublisher{})

	_, err := svc.Quote(&models.QuoteRequest{
		Items: []models.QuoteItemRequest{{Name: "Flat White", Quantity: "1"}},
	})
	if !errors.Is(err, session.ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}
}

func TestSaveSession_FailureRetainsDraft(t *testing.T) {
	store := &fakeStore{fail: true}
	svc := newTestService(store, &fakePublisher{})

	_, sess := svc.Sessions().Create()
	if err := sess.SetItem("Latte", "2"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	saveReq := &models.SaveOrderRequest{
		CustomerName:  "Ada Lovelace",
		CustomerPhone: "+441234567890",
		PaymentMethod: "Cash",
		OrderType:     "Takeaway",
	}

	_, err := svc.SaveSession(context.Background(), sess, saveReq, "test")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}

	// The draft survives and the save can be retried once storage is back
	if len(sess.Lines()) != 1 {
		t.Error("draft lines should survive a failed save")
	}

	store.fail = false
	resp, err := svc.SaveSession(context.Background(), sess, saveReq, "test")
	if err != nil {
		t.Fatalf("retried save failed: %v", err)
	}
	if ref, saved := sess.Saved(); !saved || ref != resp.ReceiptRef {
		t.Errorf("session not marked saved under %s", resp.ReceiptRef)
	}

	// A saved session rejects further saves
	if _, err := svc.SaveSession(context.Background(), sess, saveReq, "test"); !errors.Is(err, session.ErrAlreadySaved) {
		t.Errorf("expected ErrAlreadySaved, got %v", err)
	}
}

func TestSaveSession_EmptyDraft(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakePublisher{})

	_, sess := svc.Sessions().Create()

	_, err := svc.SaveSession(context.Background(), sess, &models.SaveOrderRequest{
		CustomerName:  "Ada Lovelace",
		CustomerPhone: "+441234567890",
		PaymentMethod: "Cash",
		OrderType:     "Takeaway",
	}, "test")

	var validationErr models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// The guard must be re-armed after the rejection
	if err := sess.BeginSave(); err != nil {
		t.Errorf("save guard not re-armed: %v", err)
	}
}
