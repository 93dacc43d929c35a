package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

// CatalogIndex holds the live bang catalog: the built-in entries plus the
// extras loaded from the catalog file. Readers always see a complete catalog;
// reloads swap it in one step.
type CatalogIndex struct {
	mu         sync.RWMutex
	base       domain.Catalog
	current    domain.Catalog
	extras     []domain.BangDefinition // accepted extras, in file order
	lastReload time.Time               // Timestamp of last extras swap
}

// NewCatalogIndex creates an index serving base until extras are loaded
func NewCatalogIndex(base domain.Catalog) *CatalogIndex {
	return &CatalogIndex{
		base:    base,
		current: base,
	}
}

// Catalog returns the current catalog
func (idx *CatalogIndex) Catalog() domain.Catalog {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.current
}

// Resolver returns a resolver bound to the current catalog
func (idx *CatalogIndex) Resolver() *domain.Resolver {
	return domain.NewResolver(idx.Catalog())
}

// UpdateExtras replaces the extension entries and returns the ones rejected
// because they collide with a built-in or an earlier extra.
func (idx *CatalogIndex) UpdateExtras(extras []domain.BangDefinition) []domain.BangDefinition {
	next, rejected := idx.base.Extend(extras)

	accepted := make([]domain.BangDefinition, 0, len(extras))
	baseLen := idx.base.Len()
	accepted = append(accepted, next.Entries()[baseLen:]...)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.current = next
	idx.extras = accepted
	idx.lastReload = time.Now()
	return rejected
}

// Extras returns a copy of the accepted extension entries
func (idx *CatalogIndex) Extras() []domain.BangDefinition {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]domain.BangDefinition, len(idx.extras))
	copy(out, idx.extras)
	return out
}

// Count returns the number of entries in the current catalog
func (idx *CatalogIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.current.Len()
}

// GetLastReload returns the timestamp of the last extras swap
func (idx *CatalogIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
