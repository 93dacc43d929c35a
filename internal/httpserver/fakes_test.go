package httpserver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/instant"
	"github.com/MrSnakeDoc/seek/internal/search"
	redisstore "github.com/MrSnakeDoc/seek/internal/store/redis"
)

type memBangs struct {
	mu      sync.Mutex
	next    int
	records []domain.CustomBang
}

func (m *memBangs) List(_ context.Context, userID string) ([]domain.CustomBang, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	for _, r := range m.records {
		if r.UserID == rec.UserID && strings.EqualFold(r.Shortcut, rec.Shortcut) {
			return domain.CustomBang{}, domain.ErrConflict
		}
	}
	m.next++
	rec.ID = fmt.Sprintf("bang-%d", m.next)
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *memBangs) Update(_ context.Context, rec domain.CustomBang) (domain.CustomBang, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == rec.ID && r.UserID == rec.UserID {
			rec.UpdatedAt = time.Now()
			m.records[i] = rec
			return rec, nil
		}
	}
	return domain.CustomBang{}, domain.ErrNotFound
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

// memSettings serves both the bang service and the settings endpoints.
type memSettings struct {
	mu   sync.Mutex
	rows map[string]domain.UserSettings
}

func newMemSettings() *memSettings {
	return &memSettings{rows: map[string]domain.UserSettings{}}
}

func (m *memSettings) get(userID string) domain.UserSettings {
	if s, ok := m.rows[userID]; ok {
		s.DisabledDefaultBangs = append([]string{}, s.DisabledDefaultBangs...)
		return s
	}
	return domain.DefaultSettings(userID)
}

func (m *memSettings) Get(_ context.Context, userID string) (domain.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(userID), nil
}

func (m *memSettings) Save(_ context.Context, s domain.UserSettings) (domain.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.DisabledDefaultBangs = m.get(s.UserID).DisabledDefaultBangs
	s.UpdatedAt = time.Now()
	m.rows[s.UserID] = s
	return s, nil
}

func (m *memSettings) AddDisabledDefault(_ context.Context, userID, shortcut string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(userID)
	s.DisabledDefaultBangs = domain.NormalizeDisabled(append(s.DisabledDefaultBangs, shortcut))
	m.rows[userID] = s
	return nil
}

func (m *memSettings) RemoveDisabledDefault(_ context.Context, userID, shortcut string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(userID)
	key := domain.NormalizeShortcut(shortcut)
	kept := []string{}
	for _, d := range s.DisabledDefaultBangs {
		if d != key {
			kept = append(kept, d)
		}
	}
	s.DisabledDefaultBangs = kept
	m.rows[userID] = s
	return nil
}

func (m *memSettings) ClearDisabledDefaults(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(userID)
	s.DisabledDefaultBangs = []string{}
	m.rows[userID] = s
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users []domain.User
}

func (m *memUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.User{}, domain.ErrConflict
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	u.CreatedAt = time.Now()
	m.users = append(m.users, u)
	return u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

type memHistory struct {
	mu      sync.Mutex
	next    int
	entries []domain.HistoryEntry
}

func (m *memHistory) Add(_ context.Context, e domain.HistoryEntry) (domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	e.ID = fmt.Sprintf("h-%d", m.next)
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memHistory) List(_ context.Context, userID string, limit, offset int) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.HistoryEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memHistory) Delete(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id && e.UserID == userID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memHistory) Clear(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	var n int64
	for _, e := range m.entries {
		if e.UserID == userID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return n, nil
}

type fakeSearch struct {
	mu          sync.Mutex
	queries     []search.Query
	err         error
	completions []string
}

func (f *fakeSearch) Search(_ context.Context, q search.Query) (search.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return search.Response{}, f.err
	}
	return search.Response{
		Query:    q.Text,
		Category: q.Category,
		Page:     q.Page,
		Results: []search.Result{
			{URL: "https://go.dev/", Title: "The Go Programming Language", Engine: "duckduckgo"},
		},
		Answers:     []string{},
		Suggestions: []string{},
		Corrections: []string{},
		Infoboxes:   []search.Infobox{},
	}, nil
}

func (f *fakeSearch) Autocomplete(_ context.Context, _ string) ([]string, error) {
	return f.completions, nil
}

func (f *fakeSearch) Ping(context.Context) error { return f.err }

func (f *fakeSearch) State() string { return "closed" }

func (f *fakeSearch) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeWeather struct{}

func (fakeWeather) Lookup(_ context.Context, place string) (instant.Weather, error) {
	if strings.EqualFold(place, "atlantis") {
		return instant.Weather{}, instant.ErrPlaceNotFound
	}
	return instant.Weather{Location: "Paris", Country: "France", Temperature: 18, Condition: "Overcast"}, nil
}

type fakeUsage struct {
	mu    sync.Mutex
	count map[string]int64
}

func (f *fakeUsage) IncrementUsage(_ context.Context, shortcut string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.count == nil {
		f.count = map[string]int64{}
	}
	f.count[strings.ToLower(shortcut)]++
	return nil
}

func (f *fakeUsage) GetUsageStats(_ context.Context, _ int) ([]redisstore.UsageStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []redisstore.UsageStat{}
	for k, v := range f.count {
		out = append(out, redisstore.UsageStat{Shortcut: k, Count: v})
	}
	return out, nil
}

func (f *fakeUsage) get(shortcut string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count[shortcut]
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
