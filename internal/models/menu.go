package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MenuItem is one entry in the menu catalog
type MenuItem struct {
	ID       int             `json:"id,omitempty" db:"id"`
	Name     string          `json:"name" db:"name"`
	Category Category        `json:"category" db:"category"`
	Price    decimal.Decimal `json:"price" db:"price"`
}

// Catalog is the read-only name -> {price, category} lookup used when
// resolving order lines. Loaded once at service start.
type Catalog struct {
	items map[string]MenuItem
}

// NewCatalog builds a catalog from menu items. Duplicate names keep the
// last entry.
func NewCatalog(items []MenuItem) *Catalog {
	m := make(map[string]MenuItem, len(items))
	for _, item := range items {
		m[item.Name] = item
	}
	return &Catalog{items: m}
}

// Lookup returns the menu entry for a name.
func (c *Catalog) Lookup(name string) (MenuItem, bool) {
	item, ok := c.items[name]
	return item, ok
}

// Items returns all entries sorted by name for stable listings.
func (c *Catalog) Items() []MenuItem {
	items := make([]MenuItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// Size returns the number of catalog entries.
func (c *Catalog) Size() int {
	return len(c.items)
}
