package bangs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

type memBangs struct {
	mu      sync.Mutex
	next    int
	records []domain.CustomBang
	listErr error
}

func (m *memBangs) List(_ context.Context, userID string) ([]domain.CustomBang, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []domain.CustomBang{}
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memBangs) Get(_ context.Context, userID, id string) (domain.CustomBang, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id && r.UserID == userID {
			return r, nil
		}
	}
	return domain.CustomBang{}, domain.ErrNotFound
}

func (m *memBangs) FindByShortcut(_ context.Context, userID, shortcut string) (domain.CustomBang, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserID == userID && strings.EqualFold(r.Shortcut, shortcut) {
			return r, nil
		}
	}
	return domain.CustomBang{}, domain.ErrNotFound
}

func (m *memBangs) Create(_ context.Context, rec domain.CustomBang) (domain.CustomBang, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.UserID != rec.UserID {
			continue
		}
		n++
		if strings.EqualFold(r.Shortcut, rec.Shortcut) {
			return domain.CustomBang{}, domain.ErrConflict
		}
	}
	if n >= domain.MaxCustomBangsPerUser {
		return domain.CustomBang{}, domain.ErrQuotaExceeded
	}
	m.next++
	rec.ID = fmt.Sprintf("id-%d", m.next)
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *memBangs) Update(_ context.Context, rec domain.CustomBang) (domain.CustomBang, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, r := range m.records {
		if r.UserID != rec.UserID {
			continue
		}
		if r.ID == rec.ID {
			idx = i
			continue
		}
		if strings.EqualFold(r.Shortcut, rec.Shortcut) {
			return domain.CustomBang{}, domain.ErrConflict
		}
	}
	if idx < 0 {
		return domain.CustomBang{}, domain.ErrNotFound
	}
	rec.UpdatedAt = time.Now()
	m.records[idx] = rec
	return rec, nil
}

func (m *memBangs) SetEnabled(ctx context.Context, userID, id string, enabled bool) (domain.CustomBang, error) {
	rec, err := m.Get(ctx, userID, id)
	if err != nil {
		return domain.CustomBang{}, err
	}
	rec.IsEnabled = enabled
	return m.Update(ctx, rec)
}

func (m *memBangs) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == id && r.UserID == userID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memBangs) DeleteAll(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	var n int64
	for _, r := range m.records {
		if r.UserID == userID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return n, nil
}

type memSettings struct {
	mu       sync.Mutex
	disabled map[string][]string
}

func newMemSettings() *memSettings {
	return &memSettings{disabled: map[string][]string{}}
}

func (m *memSettings) Get(_ context.Context, userID string) (domain.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := domain.DefaultSettings(userID)
	s.DisabledDefaultBangs = append([]string{}, m.disabled[userID]...)
	return s, nil
}

func (m *memSettings) AddDisabledDefault(_ context.Context, userID, shortcut string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled[userID] = domain.NormalizeDisabled(append(m.disabled[userID], shortcut))
	return nil
}

func (m *memSettings) RemoveDisabledDefault(_ context.Context, userID, shortcut string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domain.NormalizeShortcut(shortcut)
	kept := []string{}
	for _, s := range m.disabled[userID] {
		if s != key {
			kept = append(kept, s)
		}
	}
	m.disabled[userID] = kept
	return nil
}

func (m *memSettings) ClearDisabledDefaults(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.disabled, userID)
	return nil
}

type memCache struct {
	mu          sync.Mutex
	tables      map[string][]domain.MergedBang
	hits        int
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{tables: map[string][]domain.MergedBang{}}
}

func (m *memCache) GetResolved(_ context.Context, userID string) ([]domain.MergedBang, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[userID]
	if ok {
		m.hits++
	}
	return t, ok, nil
}

func (m *memCache) SaveResolved(_ context.Context, userID string, bangs []domain.MergedBang, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[userID] = bangs
	return nil
}

func (m *memCache) InvalidateResolved(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, userID)
	m.invalidated++
	return nil
}

type staticCatalog struct{ c domain.Catalog }

func (s staticCatalog) Catalog() domain.Catalog { return s.c }
