// Package session holds the in-progress state of one order at the till: the
// draft line items, the raw operator input for discount and service charge,
// and the latest pricing result. Every mutation recomputes through the
// pricing engine and notifies subscribers, so a till display can follow
// along keystroke by keystroke.
package session

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"pos-system/internal/models"
	"pos-system/internal/pricing"
)

var (
	// ErrUnknownItem is returned when a line names no catalog entry.
	ErrUnknownItem = errors.New("item not found in menu catalog")
	// ErrSaveInFlight is returned when a second save is attempted while one
	// is still running for the same session.
	ErrSaveInFlight = errors.New("a save is already in progress for this order")
	// ErrAlreadySaved is returned when a saved session is mutated or saved again.
	ErrAlreadySaved = errors.New("order has already been saved")
)

// Subscriber receives the recomputed pricing result after every mutation.
type Subscriber func(models.PricingResult)

// Session is one order-entry session at the till.
type Session struct {
	mu sync.Mutex

	catalog           *models.Catalog
	taxRate           decimal.Decimal
	serviceChargeRate decimal.Decimal

	lines      []models.LineItem
	lineIndex  map[string]int
	discount   string
	serviceRaw string // empty means "prefill from the configured rate"

	result      models.PricingResult
	subscribers []Subscriber

	saving     bool
	saved      bool
	receiptRef string
}

// New creates an empty session priced against the given catalog and rates.
func New(catalog *models.Catalog, taxRate, serviceChargeRate decimal.Decimal) *Session {
	s := &Session{
		catalog:           catalog,
		taxRate:           taxRate,
		serviceChargeRate: serviceChargeRate,
		lineIndex:         make(map[string]int),
	}
	s.result = s.compute()
	return s
}

// Subscribe registers a callback invoked with the new result after every
// recompute. The callback runs outside the session lock.
func (s *Session) Subscribe(fn Subscriber) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// SetItem adds or updates a line for a catalog entry. The quantity is raw
// operator text: unparsable input degrades to zero and the line prices at
// nothing, matching live-recompute tolerance.
func (s *Session) SetItem(name, rawQuantity string) error {
	item, ok := s.catalog.Lookup(name)
	if !ok {
		return ErrUnknownItem
	}

	s.mu.Lock()
	if s.saved {
		s.mu.Unlock()
		return ErrAlreadySaved
	}

	qty := pricing.ParseQuantity(rawQuantity)
	line := models.LineItem{
		Name:      item.Name,
		Quantity:  qty,
		UnitPrice: item.Price,
		Category:  item.Category,
	}
	if idx, exists := s.lineIndex[name]; exists {
		s.lines[idx] = line
	} else {
		s.lineIndex[name] = len(s.lines)
		s.lines = append(s.lines, line)
	}

	s.finishMutation()
	return nil
}

// RemoveItem drops a line. Removing an absent line is a no-op.
func (s *Session) RemoveItem(name string) error {
	s.mu.Lock()
	if s.saved {
		s.mu.Unlock()
		return ErrAlreadySaved
	}

	idx, exists := s.lineIndex[name]
	if exists {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
		delete(s.lineIndex, name)
		for i := idx; i < len(s.lines); i++ {
			s.lineIndex[s.lines[i].Name] = i
		}
	}

	s.finishMutation()
	return nil
}

// SetDiscountPercent updates the raw discount entry.
func (s *Session) SetDiscountPercent(raw string) error {
	s.mu.Lock()
	if s.saved {
		s.mu.Unlock()
		return ErrAlreadySaved
	}
	s.discount = raw
	s.finishMutation()
	return nil
}

// SetServiceCharge updates the raw service-charge entry. An empty value
// restores the default derived from the configured rate.
func (s *Session) SetServiceCharge(raw string) error {
	s.mu.Lock()
	if s.saved {
		s.mu.Unlock()
		return ErrAlreadySaved
	}
	s.serviceRaw = raw
	s.finishMutation()
	return nil
}

// Clear resets the draft to an empty order.
func (s *Session) Clear() error {
	s.mu.Lock()
	if s.saved {
		s.mu.Unlock()
		return ErrAlreadySaved
	}
	s.lines = nil
	s.lineIndex = make(map[string]int)
	s.discount = ""
	s.serviceRaw = ""
	s.finishMutation()
	return nil
}

// Lines returns a copy of the draft lines in insertion order.
func (s *Session) Lines() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LineItem, len(s.lines))
	copy(out, s.lines)
	return out
}

// Result returns the latest pricing result.
func (s *Session) Result() models.PricingResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Params returns the parameters the latest result was computed with.
func (s *Session) Params() pricing.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params()
}

// BeginSave arms the at-most-one-concurrent-save guard. The caller must
// follow with FinishSave on success or AbortSave on failure.
func (s *Session) BeginSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved {
		return ErrAlreadySaved
	}
	if s.saving {
		return ErrSaveInFlight
	}
	s.saving = true
	return nil
}

// FinishSave marks the session saved. Further mutation and saving are
// rejected; the draft is kept for display.
func (s *Session) FinishSave(receiptRef string) {
	s.mu.Lock()
	s.saving = false
	s.saved = true
	s.receiptRef = receiptRef
	s.mu.Unlock()
}

// AbortSave re-arms the session after a failed save so the operator can
// retry without re-entering the order.
func (s *Session) AbortSave() {
	s.mu.Lock()
	s.saving = false
	s.mu.Unlock()
}

// Saved reports whether the session was persisted, and under which receipt
// reference.
func (s *Session) Saved() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receiptRef, s.saved
}

// finishMutation recomputes under the held lock, then releases it and
// notifies subscribers.
func (s *Session) finishMutation() {
	s.result = s.compute()
	result := s.result
	subscribers := make([]Subscriber, len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(result)
	}
}

// params resolves the raw operator input into engine parameters. Must be
// called with the lock held.
func (s *Session) params() pricing.Params {
	discount := pricing.ParseAmount(s.discount)

	var serviceCharge decimal.Decimal
	if s.serviceRaw == "" {
		// Prefill from the configured rate against the post-discount subtotal.
		base := pricing.Compute(s.lines, pricing.Params{DiscountPercent: discount})
		serviceCharge = pricing.DefaultServiceCharge(base.Subtotal.Sub(base.DiscountAmount), s.serviceChargeRate)
	} else {
		serviceCharge = pricing.ParseAmount(s.serviceRaw)
	}

	return pricing.Params{
		DiscountPercent: discount,
		ServiceCharge:   serviceCharge,
		TaxRate:         s.taxRate,
	}
}

func (s *Session) compute() models.PricingResult {
	return pricing.Compute(s.lines, s.params())
}
