package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("SEEK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SEEK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

func newTestUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	u, err := NewUserRepository(pool).Create(context.Background(), domain.User{
		Email:        fmt.Sprintf("%s@example.test", uuid.NewString()),
		Name:         "Test",
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return u
}

func TestGetMigrations(t *testing.T) {
	migrations, err := GetMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "migrations must be numbered without gaps")
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.SQL)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrConflict},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, domain.ErrNotFound},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
	assert.NoError(t, mapError(nil))
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := newTestPool(t)
	applied, err := Migrate(context.Background(), pool)
	require.NoError(t, err)
	assert.Empty(t, applied)

	versions, err := AppliedVersions(context.Background(), pool)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(versions), 3)
}

func TestBangRepositoryCRUD(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	user := newTestUser(t, pool)
	repo := NewBangRepository(pool)

	created, err := repo.Create(ctx, domain.CustomBang{
		UserID: user.ID, Shortcut: "Mine", URL: "https://m.example/?q={query}", Label: "Mine", IsEnabled: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, domain.CustomBang{
		UserID: user.ID, Shortcut: "MINE", URL: "https://x.example/{query}", Label: "Dup", IsEnabled: true,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := repo.FindByShortcut(ctx, user.ID, "mine")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	toggled, err := repo.SetEnabled(ctx, user.ID, created.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.IsEnabled)

	created.Label = "Renamed"
	created.Shortcut = "mine2"
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Label)
	assert.Equal(t, "mine2", updated.Shortcut)

	other := newTestUser(t, pool)
	_, err = repo.Get(ctx, other.ID, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "records are never visible to other users")
	assert.ErrorIs(t, repo.Delete(ctx, other.ID, created.ID), domain.ErrNotFound)
	_, err = repo.Get(ctx, user.ID, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, user.ID, created.ID))
	list, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBangRepositoryQuota(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	user := newTestUser(t, pool)
	repo := NewBangRepository(pool)

	for i := 0; i < domain.MaxCustomBangsPerUser; i++ {
		_, err := repo.Create(ctx, domain.CustomBang{
			UserID: user.ID, Shortcut: fmt.Sprintf("b%d", i), URL: "https://b.example/{query}", Label: "B", IsEnabled: true,
		})
		require.NoError(t, err)
	}

	_, err := repo.Create(ctx, domain.CustomBang{
		UserID: user.ID, Shortcut: "onemore", URL: "https://b.example/{query}", Label: "B", IsEnabled: true,
	})
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	n, err := repo.DeleteAll(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, domain.MaxCustomBangsPerUser, n)
}

func TestBangRepositoryQuotaUnderConcurrentCreates(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	user := newTestUser(t, pool)
	repo := NewBangRepository(pool)

	for i := 0; i < domain.MaxCustomBangsPerUser-1; i++ {
		_, err := repo.Create(ctx, domain.CustomBang{
			UserID: user.ID, Shortcut: fmt.Sprintf("b%d", i), URL: "https://b.example/{query}", Label: "B", IsEnabled: true,
		})
		require.NoError(t, err)
	}

	const racers = 4
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, domain.CustomBang{
				UserID: user.ID, Shortcut: fmt.Sprintf("race%d", i), URL: "https://b.example/{query}", Label: "B", IsEnabled: true,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	created, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrQuotaExceeded):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, racers-1, rejected)

	list, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, domain.MaxCustomBangsPerUser)
}

func TestSettingsRepository(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	user := newTestUser(t, pool)
	repo := NewSettingsRepository(pool)

	s, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(user.ID).Theme, s.Theme)
	assert.Empty(t, s.DisabledDefaultBangs)

	require.NoError(t, repo.AddDisabledDefault(ctx, user.ID, "GH"))
	require.NoError(t, repo.AddDisabledDefault(ctx, user.ID, "gh"))
	require.NoError(t, repo.AddDisabledDefault(ctx, user.ID, "yt"))

	s, err = repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"gh", "yt"}, s.DisabledDefaultBangs)

	require.NoError(t, repo.RemoveDisabledDefault(ctx, user.ID, "GH"))
	require.NoError(t, repo.RemoveDisabledDefault(ctx, user.ID, "gh"))
	s, err = repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"yt"}, s.DisabledDefaultBangs)

	s.Theme = domain.ThemeDark
	s.ResultsPerPage = 25
	_, err = repo.Save(ctx, s)
	require.NoError(t, err)

	s, err = repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, s.Theme)
	assert.Equal(t, 25, s.ResultsPerPage)
	assert.Equal(t, []string{"yt"}, s.DisabledDefaultBangs)

	require.NoError(t, repo.ClearDisabledDefaults(ctx, user.ID))
	s, err = repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, s.DisabledDefaultBangs)
}

func TestSettingsSaveKeepsDisabledSet(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	user := newTestUser(t, pool)
	repo := NewSettingsRepository(pool)

	// Read before a concurrent disable lands, then save the stale copy.
	stale, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, repo.AddDisabledDefault(ctx, user.ID, "gh"))

	stale.Theme = domain.ThemeDark
	saved, err := repo.Save(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, []string{"gh"}, saved.DisabledDefaultBangs)

	s, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, s.Theme)
	assert.Equal(t, []string{"gh"}, s.DisabledDefaultBangs)

	// A first save creates the row with an empty set.
	other := newTestUser(t, pool)
	fresh := domain.DefaultSettings(other.ID)
	fresh.DisabledDefaultBangs = []string{"yt"}
	saved, err = repo.Save(ctx, fresh)
	require.NoError(t, err)
	assert.Empty(t, saved.DisabledDefaultBangs)
}

func TestHistoryRepository(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	user := newTestUser(t, pool)
	repo := NewHistoryRepository(pool)

	first, err := repo.Add(ctx, domain.HistoryEntry{UserID: user.ID, Query: "golang generics"})
	require.NoError(t, err)
	_, err = repo.Add(ctx, domain.HistoryEntry{UserID: user.ID, Query: "rust traits", Category: domain.CategoryNews})
	require.NoError(t, err)

	list, err := repo.List(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "rust traits", list[0].Query)
	assert.Equal(t, domain.CategoryWeb, list[1].Category)

	require.NoError(t, repo.Delete(ctx, user.ID, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID, first.ID), domain.ErrNotFound)

	n, err := repo.DeleteOlderThan(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	n, err = repo.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserRepository(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	email := uuid.NewString() + "@Example.test"
	u, err := repo.Create(ctx, domain.User{Email: email, Name: "A", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, domain.User{Email: email, Name: "B", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	found, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, email, byID.Email)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
