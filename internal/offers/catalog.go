package offers

import (
	"encoding/json"
	"os"
	"sync"

	apperrors "agent-orchestrator/internal/common/errors"
)

// CatalogItem is one promotional offer definition. Items are immutable after
// load; eligibility is evaluated against Rules in declaration order.
type CatalogItem struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Copy  string                 `json:"copy"`
	CTA   map[string]interface{} `json:"cta"`
	Rules Rules                  `json:"rules"`
}

// Rules is the per-item eligibility predicate. An empty RequireSegments set
// matches any profile; a nil MinBalance is always satisfied.
type Rules struct {
	RequireSegments []string `json:"requireSegments"`
	MinBalance      *float64 `json:"minBalance"`
}

type catalogDocument struct {
	Items []CatalogItem `json:"items"`
}

// Catalog holds the offer definitions loaded from a static JSON document.
// It is constructed once at startup and injected into the engine; Reload
// swaps the item list atomically for operators who edit the file in place.
type Catalog struct {
	mu    sync.RWMutex
	path  string
	items []CatalogItem
}

func LoadCatalog(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the catalog file. On failure the previous items are kept.
func (c *Catalog) Reload() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return apperrors.NewCatalogLoadFailedError(c.path, err)
	}

	var doc catalogDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return apperrors.NewCatalogLoadFailedError(c.path, err)
	}

	c.mu.Lock()
	c.items = doc.Items
	c.mu.Unlock()
	return nil
}

// Items returns the catalog in declaration order.
func (c *Catalog) Items() []CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items
}
