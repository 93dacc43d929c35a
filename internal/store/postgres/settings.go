package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

var settingsColumns = []string{
	"user_id", "disabled_default_bangs", "theme", "safe_search", "results_per_page",
	"open_in_new_tab", "default_category", "language", "save_history", "updated_at",
}

// preferenceColumns are the columns Save writes.
var preferenceColumns = []string{
	"user_id", "theme", "safe_search", "results_per_page",
	"open_in_new_tab", "default_category", "language", "save_history", "updated_at",
}

// SettingsRepository persists per-user preferences and disabled default bangs.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the user's settings, or DefaultSettings when none were saved.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (domain.UserSettings, error) {
	row, err := queryRow(ctx, r.pool, psql.Select(settingsColumns...).
		From("user_settings").
		Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return domain.UserSettings{}, err
	}

	var s domain.UserSettings
	err = row.Scan(&s.UserID, &s.DisabledDefaultBangs, &s.Theme, &s.SafeSearch, &s.ResultsPerPage,
		&s.OpenInNewTab, &s.DefaultCategory, &s.Language, &s.SaveHistory, &s.UpdatedAt)
	if err != nil {
		if errors.Is(mapError(err), domain.ErrNotFound) {
			return domain.DefaultSettings(userID), nil
		}
		return domain.UserSettings{}, fmt.Errorf("get settings: %w", err)
	}
	if s.DisabledDefaultBangs == nil {
		s.DisabledDefaultBangs = []string{}
	}
	return s, nil
}

// Save upserts the preferences of s. The disabled set is left as stored;
// it only changes through the *DisabledDefault methods. The returned
// settings carry the stored set.
func (r *SettingsRepository) Save(ctx context.Context, s domain.UserSettings) (domain.UserSettings, error) {
	s.UpdatedAt = time.Now().UTC()

	row, err := queryRow(ctx, r.pool, psql.Insert("user_settings").
		Columns(preferenceColumns...).
		Values(s.UserID, s.Theme, s.SafeSearch, s.ResultsPerPage,
			s.OpenInNewTab, s.DefaultCategory, s.Language, s.SaveHistory, s.UpdatedAt).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			theme = EXCLUDED.theme,
			safe_search = EXCLUDED.safe_search,
			results_per_page = EXCLUDED.results_per_page,
			open_in_new_tab = EXCLUDED.open_in_new_tab,
			default_category = EXCLUDED.default_category,
			language = EXCLUDED.language,
			save_history = EXCLUDED.save_history,
			updated_at = EXCLUDED.updated_at
			RETURNING disabled_default_bangs`))
	if err != nil {
		return domain.UserSettings{}, err
	}
	if err := row.Scan(&s.DisabledDefaultBangs); err != nil {
		return domain.UserSettings{}, fmt.Errorf("save settings: %w", mapError(err))
	}
	if s.DisabledDefaultBangs == nil {
		s.DisabledDefaultBangs = []string{}
	}
	return s, nil
}

// AddDisabledDefault adds a lower-cased shortcut to the disabled set. Idempotent.
func (r *SettingsRepository) AddDisabledDefault(ctx context.Context, userID, shortcut string) error {
	key := domain.NormalizeShortcut(shortcut)
	_, err := exec(ctx, r.pool, psql.Insert("user_settings").
		Columns("user_id", "disabled_default_bangs").
		Values(userID, []string{key}).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			disabled_default_bangs = CASE
				WHEN ?::text = ANY(user_settings.disabled_default_bangs) THEN user_settings.disabled_default_bangs
				ELSE array_append(user_settings.disabled_default_bangs, ?::text)
			END,
			updated_at = now()`, key, key))
	if err != nil {
		return fmt.Errorf("disable default bang: %w", mapError(err))
	}
	return nil
}

// RemoveDisabledDefault removes a shortcut from the disabled set. Idempotent.
func (r *SettingsRepository) RemoveDisabledDefault(ctx context.Context, userID, shortcut string) error {
	_, err := exec(ctx, r.pool, psql.Update("user_settings").
		Set("disabled_default_bangs", sq.Expr("array_remove(disabled_default_bangs, ?::text)", domain.NormalizeShortcut(shortcut))).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return fmt.Errorf("enable default bang: %w", mapError(err))
	}
	return nil
}

// ClearDisabledDefaults empties the disabled set.
func (r *SettingsRepository) ClearDisabledDefaults(ctx context.Context, userID string) error {
	_, err := exec(ctx, r.pool, psql.Update("user_settings").
		Set("disabled_default_bangs", []string{}).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return fmt.Errorf("clear disabled bangs: %w", mapError(err))
	}
	return nil
}
