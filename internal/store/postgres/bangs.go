package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

var bangColumns = []string{
	"id", "user_id", "shortcut", "url", "label",
	"is_enabled", "is_system_override", "created_at", "updated_at",
}

// BangRepository persists custom bangs.
type BangRepository struct {
	pool *pgxpool.Pool
}

func NewBangRepository(pool *pgxpool.Pool) *BangRepository {
	return &BangRepository{pool: pool}
}

func scanBang(row pgx.Row) (domain.CustomBang, error) {
	var b domain.CustomBang
	err := row.Scan(&b.ID, &b.UserID, &b.Shortcut, &b.URL, &b.Label,
		&b.IsEnabled, &b.IsSystemOverride, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// List returns the user's custom bangs, oldest first.
func (r *BangRepository) List(ctx context.Context, userID string) ([]domain.CustomBang, error) {
	rows, err := query(ctx, r.pool, psql.Select(bangColumns...).
		From("custom_bangs").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("list bangs: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]domain.CustomBang, 0, 16)
	for rows.Next() {
		b, err := scanBang(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bang: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bangs: %w", mapError(err))
	}
	return out, nil
}

// Get returns one bang owned by userID.
func (r *BangRepository) Get(ctx context.Context, userID, id string) (domain.CustomBang, error) {
	row, err := queryRow(ctx, r.pool, psql.Select(bangColumns...).
		From("custom_bangs").
		Where(sq.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return domain.CustomBang{}, err
	}
	b, err := scanBang(row)
	if err != nil {
		return domain.CustomBang{}, mapError(err)
	}
	return b, nil
}

// FindByShortcut returns the user's bang with the given shortcut, ignoring case.
func (r *BangRepository) FindByShortcut(ctx context.Context, userID, shortcut string) (domain.CustomBang, error) {
	row, err := queryRow(ctx, r.pool, psql.Select(bangColumns...).
		From("custom_bangs").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Expr("lower(shortcut) = ?", domain.NormalizeShortcut(shortcut))))
	if err != nil {
		return domain.CustomBang{}, err
	}
	b, err := scanBang(row)
	if err != nil {
		return domain.CustomBang{}, mapError(err)
	}
	return b, nil
}

// Count returns the number of custom bangs of a user.
func (r *BangRepository) Count(ctx context.Context, userID string) (int, error) {
	return countBangs(ctx, r.pool, userID)
}

func countBangs(ctx context.Context, q querier, userID string) (int, error) {
	row, err := queryRow(ctx, q, psql.Select("count(*)").From("custom_bangs").Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count bangs: %w", mapError(err))
	}
	return n, nil
}

func shortcutTaken(ctx context.Context, q querier, userID, shortcut, exceptID string) (bool, error) {
	b := psql.Select("1").From("custom_bangs").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Expr("lower(shortcut) = ?", domain.NormalizeShortcut(shortcut)))
	if exceptID != "" {
		b = b.Where(sq.NotEq{"id": exceptID})
	}
	inner, args, err := b.ToSql()
	if err != nil {
		return false, err
	}
	var taken bool
	if err := q.QueryRow(ctx, "SELECT EXISTS ("+inner+")", args...).Scan(&taken); err != nil {
		return false, fmt.Errorf("check shortcut: %w", mapError(err))
	}
	return taken, nil
}

// lockUserBangs serializes bang inserts of one user until tx ends.
func lockUserBangs(ctx context.Context, q querier, userID string) error {
	if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "custom_bangs:"+userID); err != nil {
		return fmt.Errorf("lock user bangs: %w", mapError(err))
	}
	return nil
}

// Create inserts rec after the quota and uniqueness checks, all in one
// transaction holding the user's advisory lock, so concurrent creates
// cannot both pass the count.
func (r *BangRepository) Create(ctx context.Context, rec domain.CustomBang) (domain.CustomBang, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.CustomBang{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockUserBangs(ctx, tx, rec.UserID); err != nil {
		return domain.CustomBang{}, err
	}

	n, err := countBangs(ctx, tx, rec.UserID)
	if err != nil {
		return domain.CustomBang{}, err
	}
	if n >= domain.MaxCustomBangsPerUser {
		return domain.CustomBang{}, domain.ErrQuotaExceeded
	}

	taken, err := shortcutTaken(ctx, tx, rec.UserID, rec.Shortcut, "")
	if err != nil {
		return domain.CustomBang{}, err
	}
	if taken {
		return domain.CustomBang{}, domain.ErrConflict
	}

	now := time.Now().UTC()
	rec.ID = uuid.NewString()
	rec.Shortcut = strings.TrimSpace(rec.Shortcut)
	rec.CreatedAt, rec.UpdatedAt = now, now

	if _, err := exec(ctx, tx, psql.Insert("custom_bangs").
		Columns(bangColumns...).
		Values(rec.ID, rec.UserID, rec.Shortcut, rec.URL, rec.Label,
			rec.IsEnabled, rec.IsSystemOverride, rec.CreatedAt, rec.UpdatedAt)); err != nil {
		return domain.CustomBang{}, mapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.CustomBang{}, mapError(err)
	}
	return rec, nil
}

// Update rewrites the editable fields of rec (matched on ID and UserID).
func (r *BangRepository) Update(ctx context.Context, rec domain.CustomBang) (domain.CustomBang, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.CustomBang{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	taken, err := shortcutTaken(ctx, tx, rec.UserID, rec.Shortcut, rec.ID)
	if err != nil {
		return domain.CustomBang{}, err
	}
	if taken {
		return domain.CustomBang{}, domain.ErrConflict
	}

	row, err := queryRow(ctx, tx, psql.Update("custom_bangs").
		Set("shortcut", strings.TrimSpace(rec.Shortcut)).
		Set("url", rec.URL).
		Set("label", rec.Label).
		Set("is_enabled", rec.IsEnabled).
		Set("is_system_override", rec.IsSystemOverride).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": rec.ID, "user_id": rec.UserID}).
		Suffix("RETURNING "+strings.Join(bangColumns, ", ")))
	if err != nil {
		return domain.CustomBang{}, err
	}
	updated, err := scanBang(row)
	if err != nil {
		return domain.CustomBang{}, mapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.CustomBang{}, mapError(err)
	}
	return updated, nil
}

// SetEnabled flips is_enabled and returns the updated record.
func (r *BangRepository) SetEnabled(ctx context.Context, userID, id string, enabled bool) (domain.CustomBang, error) {
	row, err := queryRow(ctx, r.pool, psql.Update("custom_bangs").
		Set("is_enabled", enabled).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING "+strings.Join(bangColumns, ", ")))
	if err != nil {
		return domain.CustomBang{}, err
	}
	b, err := scanBang(row)
	if err != nil {
		return domain.CustomBang{}, mapError(err)
	}
	return b, nil
}

// Delete removes one bang owned by userID.
func (r *BangRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := exec(ctx, r.pool, psql.Delete("custom_bangs").Where(sq.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteAll removes every custom bang of userID.
func (r *BangRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	tag, err := exec(ctx, r.pool, psql.Delete("custom_bangs").Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}
