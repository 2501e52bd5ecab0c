package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pos-system/internal/models"
)

// Store keeps the live order sessions for one till, keyed by session id.
// Sessions are in-memory only; a restart discards unsaved drafts, exactly
// like closing the till application.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog           *models.Catalog
	taxRate           decimal.Decimal
	serviceChargeRate decimal.Decimal
}

// NewStore creates a session store priced against the given catalog and rates.
func NewStore(catalog *models.Catalog, taxRate, serviceChargeRate decimal.Decimal) *Store {
	return &Store{
		sessions:          make(map[string]*Session),
		catalog:           catalog,
		taxRate:           taxRate,
		serviceChargeRate: serviceChargeRate,
	}
}

// Create opens a new empty session and returns its id.
func (st *Store) Create() (string, *Session) {
	id := uuid.New().String()
	s := New(st.catalog, st.taxRate, st.serviceChargeRate)

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()

	return id, s
}

// Get returns the session for an id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete discards a session (order reset / till cleared).
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
