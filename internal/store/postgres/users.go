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

var userColumns = []string{"id", "email", "name", "password_hash", "created_at"}

// UserRepository persists accounts.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Create inserts u. A taken email returns domain.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.ID = uuid.NewString()
	u.Email = strings.TrimSpace(u.Email)
	u.CreatedAt = time.Now().UTC()

	_, err := exec(ctx, r.pool, psql.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt))
	if err != nil {
		return domain.User{}, mapError(err)
	}
	return u, nil
}

// FindByEmail looks up a user case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, sq.Expr("lower(email) = lower(?)", strings.TrimSpace(email)))
}

// FindByID looks up a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) findOne(ctx context.Context, pred sq.Sqlizer) (domain.User, error) {
	row, err := queryRow(ctx, r.pool, psql.Select(userColumns...).From("users").Where(pred))
	if err != nil {
		return domain.User{}, err
	}
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("find user: %w", mapError(err))
	}
	return u, nil
}
