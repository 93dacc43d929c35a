package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

// HistoryRepository persists search history.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Add stores one entry, truncating overly long queries.
func (r *HistoryRepository) Add(ctx context.Context, e domain.HistoryEntry) (domain.HistoryEntry, error) {
	if runes := []rune(e.Query); len(runes) > domain.MaxHistoryQueryLength {
		e.Query = string(runes[:domain.MaxHistoryQueryLength])
	}
	if e.Category == "" {
		e.Category = domain.CategoryWeb
	}
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()

	_, err := exec(ctx, r.pool, psql.Insert("search_history").
		Columns("id", "user_id", "query", "category", "created_at").
		Values(e.ID, e.UserID, e.Query, e.Category, e.CreatedAt))
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("add history: %w", mapError(err))
	}
	return e, nil
}

// List returns the user's history, newest first.
func (r *HistoryRepository) List(ctx context.Context, userID string, limit, offset int) ([]domain.HistoryEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := query(ctx, r.pool, psql.Select("id", "user_id", "query", "category", "created_at").
		From("search_history").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]domain.HistoryEntry, 0, limit)
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Query, &e.Category, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", mapError(err))
	}
	return out, nil
}

// Delete removes one entry owned by userID.
func (r *HistoryRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := exec(ctx, r.pool, psql.Delete("search_history").Where(sq.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Clear removes the whole history of userID.
func (r *HistoryRepository) Clear(ctx context.Context, userID string) (int64, error) {
	tag, err := exec(ctx, r.pool, psql.Delete("search_history").Where(sq.Eq{"user_id": userID}))
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

// DeleteOlderThan prunes entries created before cutoff, for every user.
func (r *HistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := exec(ctx, r.pool, psql.Delete("search_history").Where(sq.Lt{"created_at": cutoff}))
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}
