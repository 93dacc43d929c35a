package domain

import (
	"sort"
	"strings"
)

// Resolver merges the catalog with a user's custom bangs and disabled defaults.
type Resolver struct {
	catalog Catalog
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Catalog returns the catalog the resolver merges against.
func (r *Resolver) Catalog() Catalog {
	return r.catalog
}

// Resolve builds the lookup table for one user.
//
// Custom bangs are inserted first; a later duplicate replaces an earlier one in
// place. A catalog entry is skipped when a custom bang already holds its key
// (regardless of the disabled set) or when its key is disabled. Disabled keys
// that match nothing are ignored.
//
// The result follows insertion order: custom bangs, then catalog order.
func (r *Resolver) Resolve(custom []CustomBang, disabledDefaults []string) []MergedBang {
	table := newMergeTable(len(custom) + r.catalog.Len())

	for _, c := range custom {
		table.put(NormalizeShortcut(c.Shortcut), MergedBang{
			ID:               c.ID,
			Shortcut:         c.Shortcut,
			URL:              c.URL,
			Label:            c.Label,
			IsEnabled:        c.IsEnabled,
			IsSystemOverride: c.IsSystemOverride,
			IsDefault:        false,
		})
	}

	disabled := make(map[string]struct{}, len(disabledDefaults))
	for _, s := range disabledDefaults {
		disabled[NormalizeShortcut(s)] = struct{}{}
	}

	for _, def := range r.catalog.Entries() {
		key := def.Key()
		if table.has(key) {
			continue
		}
		if _, off := disabled[key]; off {
			continue
		}
		table.put(key, MergedBang{
			Shortcut:         def.Shortcut,
			URL:              def.URL,
			Label:            def.Label,
			IsEnabled:        true,
			IsSystemOverride: false,
			IsDefault:        true,
		})
	}

	return table.values()
}

// SortForDisplay orders bangs for listings: custom bangs before defaults, then
// alphabetically by shortcut ignoring case. The slice is sorted in place.
func SortForDisplay(bangs []MergedBang) {
	sort.SliceStable(bangs, func(i, j int) bool {
		if bangs[i].IsDefault != bangs[j].IsDefault {
			return !bangs[i].IsDefault
		}
		return strings.ToLower(bangs[i].Shortcut) < strings.ToLower(bangs[j].Shortcut)
	})
}

// mergeTable is an insertion-ordered map keyed by normalized shortcut.
type mergeTable struct {
	index map[string]int
	items []MergedBang
}

func newMergeTable(capacity int) *mergeTable {
	return &mergeTable{
		index: make(map[string]int, capacity),
		items: make([]MergedBang, 0, capacity),
	}
}

func (t *mergeTable) has(key string) bool {
	_, ok := t.index[key]
	return ok
}

func (t *mergeTable) put(key string, b MergedBang) {
	if i, ok := t.index[key]; ok {
		t.items[i] = b
		return
	}
	t.index[key] = len(t.items)
	t.items = append(t.items, b)
}

func (t *mergeTable) values() []MergedBang {
	out := make([]MergedBang, len(t.items))
	copy(out, t.items)
	return out
}
