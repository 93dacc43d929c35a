package bangs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/logger"
)

// BangRepository persists custom bangs.
type BangRepository interface {
	List(ctx context.Context, userID string) ([]domain.CustomBang, error)
	Get(ctx context.Context, userID, id string) (domain.CustomBang, error)
	FindByShortcut(ctx context.Context, userID, shortcut string) (domain.CustomBang, error)
	Create(ctx context.Context, rec domain.CustomBang) (domain.CustomBang, error)
	Update(ctx context.Context, rec domain.CustomBang) (domain.CustomBang, error)
	SetEnabled(ctx context.Context, userID, id string, enabled bool) (domain.CustomBang, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

// SettingsRepository owns the disabled-default set.
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (domain.UserSettings, error)
	AddDisabledDefault(ctx context.Context, userID, shortcut string) error
	RemoveDisabledDefault(ctx context.Context, userID, shortcut string) error
	ClearDisabledDefaults(ctx context.Context, userID string) error
}

// Cache stores resolved tables per user.
type Cache interface {
	GetResolved(ctx context.Context, userID string) ([]domain.MergedBang, bool, error)
	SaveResolved(ctx context.Context, userID string, bangs []domain.MergedBang, ttl time.Duration) error
	InvalidateResolved(ctx context.Context, userID string) error
}

// CatalogSource returns the live catalog.
type CatalogSource interface {
	Catalog() domain.Catalog
}

// Service combines the catalog, a user's records and disabled set.
type Service struct {
	bangs    BangRepository
	settings SettingsRepository
	cache    Cache // optional
	catalog  CatalogSource
	ttl      time.Duration
	logger   logger.Logger
}

// NewService creates a bang service. cache may be nil.
func NewService(
	bangs BangRepository,
	settings SettingsRepository,
	cache Cache,
	catalog CatalogSource,
	ttl time.Duration,
	log logger.Logger,
) *Service {
	return &Service{
		bangs:    bangs,
		settings: settings,
		cache:    cache,
		catalog:  catalog,
		ttl:      ttl,
		logger:   log,
	}
}

// Input is the user-supplied part of a custom bang.
type Input struct {
	Shortcut         string `json:"shortcut"`
	URL              string `json:"url"`
	Label            string `json:"label"`
	IsEnabled        *bool  `json:"isEnabled,omitempty"`
	IsSystemOverride bool   `json:"isSystemOverride"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Shortcut  *string `json:"shortcut,omitempty"`
	URL       *string `json:"url,omitempty"`
	Label     *string `json:"label,omitempty"`
	IsEnabled *bool   `json:"isEnabled,omitempty"`
}

// ─────────────────────────────────────────────────────────────────
// Resolution
// ─────────────────────────────────────────────────────────────────

// Resolved returns the merged table of a user. Anonymous callers (empty
// userID) get the catalog alone.
func (s *Service) Resolved(ctx context.Context, userID string) ([]domain.MergedBang, error) {
	resolver := domain.NewResolver(s.catalog.Catalog())
	if userID == "" {
		return resolver.Resolve(nil, nil), nil
	}

	if s.cache != nil {
		cached, ok, err := s.cache.GetResolved(ctx, userID)
		if err != nil {
			s.logger.Warn("failed to read resolved bangs from cache",
				logger.String("user_id", userID),
				logger.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	custom, err := s.bangs.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := resolver.Resolve(custom, settings.DisabledDefaultBangs)

	if s.cache != nil {
		if err := s.cache.SaveResolved(ctx, userID, merged, s.ttl); err != nil {
			s.logger.Warn("failed to cache resolved bangs",
				logger.String("user_id", userID),
				logger.Error(err))
		}
	}

	return merged, nil
}

// Redirect resolves "!shortcut query" text against the user's table.
// ok is false when text is not a bang invocation or names no enabled bang.
func (s *Service) Redirect(ctx context.Context, userID, text string) (domain.Redirect, bool, error) {
	if _, ok := domain.DetectShortcutInvocation(text); !ok {
		return domain.Redirect{}, false, nil
	}

	table, err := s.Resolved(ctx, userID)
	if err != nil {
		s.logger.Warn("falling back to catalog for redirect",
			logger.String("user_id", userID),
			logger.Error(err))
		table = domain.CatalogTable(s.catalog.Catalog())
	}

	r, ok := domain.ResolveQuery(table, text)
	return r, ok, nil
}

// Suggest returns bangs matching a "!prefix" input.
func (s *Service) Suggest(ctx context.Context, userID, prefix string, limit int) ([]domain.MergedBang, error) {
	table, err := s.Resolved(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.Suggest(table, prefix, limit), nil
}

// ListCustom returns the user's own records.
func (s *Service) ListCustom(ctx context.Context, userID string) ([]domain.CustomBang, error) {
	return s.bangs.List(ctx, userID)
}

// ─────────────────────────────────────────────────────────────────
// Custom bang lifecycle
// ─────────────────────────────────────────────────────────────────

// Create validates and stores a new custom bang. A shortcut equal to a
// catalog shortcut is only accepted as an explicit override.
func (s *Service) Create(ctx context.Context, userID string, in Input) (domain.CustomBang, error) {
	rec := domain.CustomBang{
		UserID:           userID,
		Shortcut:         strings.TrimSpace(in.Shortcut),
		URL:              strings.TrimSpace(in.URL),
		Label:            strings.TrimSpace(in.Label),
		IsEnabled:        in.IsEnabled == nil || *in.IsEnabled,
		IsSystemOverride: in.IsSystemOverride,
	}

	if err := domain.ValidateBang(rec.Shortcut, rec.URL, rec.Label); err != nil {
		return domain.CustomBang{}, err
	}
	if s.catalog.Catalog().Has(rec.Shortcut) && !rec.IsSystemOverride {
		return domain.CustomBang{}, fmt.Errorf("%w: %q is a built-in bang, edit the default instead", domain.ErrConflict, rec.Shortcut)
	}

	created, err := s.bangs.Create(ctx, rec)
	if err != nil {
		return domain.CustomBang{}, err
	}

	s.invalidate(ctx, userID)
	s.logger.Info("custom bang created",
		logger.String("user_id", userID),
		logger.String("shortcut", created.Shortcut),
		logger.Bool("override", created.IsSystemOverride))

	return created, nil
}

// Update applies a partial change to a custom bang.
func (s *Service) Update(ctx context.Context, userID, id string, p Patch) (domain.CustomBang, error) {
	rec, err := s.bangs.Get(ctx, userID, id)
	if err != nil {
		return domain.CustomBang{}, err
	}

	renamed := false
	if p.Shortcut != nil {
		next := strings.TrimSpace(*p.Shortcut)
		renamed = !strings.EqualFold(next, rec.Shortcut)
		rec.Shortcut = next
	}
	if p.URL != nil {
		rec.URL = strings.TrimSpace(*p.URL)
	}
	if p.Label != nil {
		rec.Label = strings.TrimSpace(*p.Label)
	}
	if p.IsEnabled != nil {
		rec.IsEnabled = *p.IsEnabled
	}

	if err := domain.ValidateBang(rec.Shortcut, rec.URL, rec.Label); err != nil {
		return domain.CustomBang{}, err
	}

	if renamed {
		onCatalog := s.catalog.Catalog().Has(rec.Shortcut)
		if onCatalog && !rec.IsSystemOverride {
			return domain.CustomBang{}, fmt.Errorf("%w: %q is a built-in bang, edit the default instead", domain.ErrConflict, rec.Shortcut)
		}
		rec.IsSystemOverride = rec.IsSystemOverride && onCatalog
	}

	updated, err := s.bangs.Update(ctx, rec)
	if err != nil {
		return domain.CustomBang{}, err
	}

	s.invalidate(ctx, userID)
	s.logger.Info("custom bang updated",
		logger.String("user_id", userID),
		logger.String("shortcut", updated.Shortcut))

	return updated, nil
}

// Toggle flips IsEnabled of a custom bang.
func (s *Service) Toggle(ctx context.Context, userID, id string) (domain.CustomBang, error) {
	rec, err := s.bangs.Get(ctx, userID, id)
	if err != nil {
		return domain.CustomBang{}, err
	}

	updated, err := s.bangs.SetEnabled(ctx, userID, id, !rec.IsEnabled)
	if err != nil {
		return domain.CustomBang{}, err
	}

	s.invalidate(ctx, userID)
	s.logger.Info("custom bang toggled",
		logger.String("user_id", userID),
		logger.String("shortcut", updated.Shortcut),
		logger.Bool("enabled", updated.IsEnabled))

	return updated, nil
}

// Delete removes a custom bang. Deleting an override restores the catalog entry.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.bangs.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.logger.Info("custom bang deleted",
		logger.String("user_id", userID),
		logger.String("bang_id", id))

	return nil
}

// Reset deletes every custom bang and re-enables every default.
func (s *Service) Reset(ctx context.Context, userID string) (int64, error) {
	n, err := s.bangs.DeleteAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.settings.ClearDisabledDefaults(ctx, userID); err != nil {
		return n, err
	}

	s.invalidate(ctx, userID)
	s.logger.Info("bangs reset",
		logger.String("user_id", userID),
		logger.Int64("deleted", n))

	return n, nil
}

// ─────────────────────────────────────────────────────────────────
// Catalog entries
// ─────────────────────────────────────────────────────────────────

// OverrideDefault edits a catalog entry for one user by storing a custom
// record flagged IsSystemOverride. Empty url or label keep the catalog value.
// An existing record with the same shortcut is updated in place.
func (s *Service) OverrideDefault(ctx context.Context, userID, shortcut, url, label string) (domain.CustomBang, error) {
	def, ok := s.catalog.Catalog().Find(shortcut)
	if !ok {
		return domain.CustomBang{}, fmt.Errorf("%w: no default bang %q", domain.ErrNotFound, shortcut)
	}

	url = strings.TrimSpace(url)
	if url == "" {
		url = def.URL
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = def.Label
	}
	if err := domain.ValidateBang(def.Shortcut, url, label); err != nil {
		return domain.CustomBang{}, err
	}

	existing, err := s.bangs.FindByShortcut(ctx, userID, def.Shortcut)
	switch {
	case err == nil:
		existing.URL = url
		existing.Label = label
		existing.IsEnabled = true
		existing.IsSystemOverride = true
		updated, err := s.bangs.Update(ctx, existing)
		if err != nil {
			return domain.CustomBang{}, err
		}
		s.invalidate(ctx, userID)
		s.logger.Info("default bang override updated",
			logger.String("user_id", userID),
			logger.String("shortcut", def.Shortcut))
		return updated, nil
	case !errors.Is(err, domain.ErrNotFound):
		return domain.CustomBang{}, err
	}

	enabled := true
	return s.Create(ctx, userID, Input{
		Shortcut:         def.Shortcut,
		URL:              url,
		Label:            label,
		IsEnabled:        &enabled,
		IsSystemOverride: true,
	})
}

// DisableDefault hides a catalog entry for one user.
func (s *Service) DisableDefault(ctx context.Context, userID, shortcut string) error {
	if !s.catalog.Catalog().Has(shortcut) {
		return fmt.Errorf("%w: no default bang %q", domain.ErrNotFound, shortcut)
	}
	if err := s.settings.AddDisabledDefault(ctx, userID, shortcut); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.logger.Info("default bang disabled",
		logger.String("user_id", userID),
		logger.String("shortcut", domain.NormalizeShortcut(shortcut)))

	return nil
}

// EnableDefault removes shortcut from the disabled set. Overrides are untouched.
// Stale entries no longer in the catalog can still be removed.
func (s *Service) EnableDefault(ctx context.Context, userID, shortcut string) error {
	key := domain.NormalizeShortcut(shortcut)
	if !s.catalog.Catalog().Has(key) {
		settings, err := s.settings.Get(ctx, userID)
		if err != nil {
			return err
		}
		if !containsKey(settings.DisabledDefaultBangs, key) {
			return fmt.Errorf("%w: no default bang %q", domain.ErrNotFound, shortcut)
		}
	}
	if err := s.settings.RemoveDisabledDefault(ctx, userID, key); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	s.logger.Info("default bang enabled",
		logger.String("user_id", userID),
		logger.String("shortcut", key))

	return nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateResolved(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate resolved bangs",
			logger.String("user_id", userID),
			logger.Error(err))
	}
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if domain.NormalizeShortcut(k) == key {
			return true
		}
	}
	return false
}
