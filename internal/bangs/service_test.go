package bangs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/logger"
)

const user = "u1"

type fixture struct {
	svc      *Service
	bangs    *memBangs
	settings *memSettings
	cache    *memCache
}

func newFixture() fixture {
	catalog := domain.NewCatalog([]domain.BangDefinition{
		{Shortcut: "g", URL: "https://www.google.com/search?q={query}", Label: "Google"},
		{Shortcut: "gh", URL: "https://github.com/search?q={query}", Label: "GitHub"},
		{Shortcut: "w", URL: "https://en.wikipedia.org/w/index.php?search={query}", Label: "Wikipedia"},
	})
	f := fixture{
		bangs:    &memBangs{},
		settings: newMemSettings(),
		cache:    newMemCache(),
	}
	f.svc = NewService(f.bangs, f.settings, f.cache, staticCatalog{catalog}, time.Minute, logger.NewNop())
	return f
}

func ptr[T any](v T) *T { return &v }

func TestResolvedAnonymousIsCatalog(t *testing.T) {
	f := newFixture()

	got, err := f.svc.Resolved(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, b := range got {
		assert.True(t, b.IsDefault)
		assert.True(t, b.IsEnabled)
	}
}

func TestResolvedIsCachedAndInvalidated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Resolved(ctx, user)
	require.NoError(t, err)
	_, err = f.svc.Resolved(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)

	_, err = f.svc.Create(ctx, user, Input{Shortcut: "mine", URL: "https://m.example/{query}", Label: "Mine"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.invalidated)

	got, err := f.svc.Resolved(ctx, user)
	require.NoError(t, err)
	_, ok := domain.FindBang(got, "mine")
	assert.True(t, ok, "resolution after a mutation must see the new record")
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{
			name: "valid",
			in:   Input{Shortcut: "mine", URL: "https://m.example/?q={query}", Label: "Mine"},
		},
		{
			name:    "invalid shortcut",
			in:      Input{Shortcut: "my bang", URL: "https://m.example/?q={query}", Label: "Mine"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing placeholder",
			in:      Input{Shortcut: "mine", URL: "https://m.example/", Label: "Mine"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "catalog collision without override flag",
			in:      Input{Shortcut: "GH", URL: "https://m.example/{query}", Label: "Mine"},
			wantErr: domain.ErrConflict,
		},
		{
			name: "catalog collision as override",
			in:   Input{Shortcut: "gh", URL: "https://m.example/{query}", Label: "Mine", IsSystemOverride: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			got, err := f.svc.Create(context.Background(), user, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.bangs.records, "nothing may be stored on rejection")
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.True(t, got.IsEnabled, "isEnabled defaults to true")
		})
	}
}

func TestCreateDuplicateAndQuota(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, user, Input{Shortcut: "dup", URL: "https://d.example/{query}", Label: "D"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, user, Input{Shortcut: "DUP", URL: "https://d.example/{query}", Label: "D"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	for i := 1; i < domain.MaxCustomBangsPerUser; i++ {
		_, err := f.svc.Create(ctx, user, Input{Shortcut: fmt.Sprintf("b%d", i), URL: "https://b.example/{query}", Label: "B"})
		require.NoError(t, err)
	}
	_, err = f.svc.Create(ctx, user, Input{Shortcut: "over", URL: "https://o.example/{query}", Label: "O"})
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "100")
}

func TestUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec, err := f.svc.Create(ctx, user, Input{Shortcut: "mine", URL: "https://m.example/{query}", Label: "Mine"})
	require.NoError(t, err)
	other, err := f.svc.Create(ctx, user, Input{Shortcut: "other", URL: "https://o.example/{query}", Label: "Other"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, user, rec.ID, Patch{Label: ptr("Renamed"), IsEnabled: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Label)
	assert.False(t, updated.IsEnabled)
	assert.Equal(t, "mine", updated.Shortcut)

	_, err = f.svc.Update(ctx, user, rec.ID, Patch{Shortcut: ptr("OTHER")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.Update(ctx, user, rec.ID, Patch{Shortcut: ptr("w")})
	assert.ErrorIs(t, err, domain.ErrConflict, "renaming onto a catalog shortcut needs an override")

	_, err = f.svc.Update(ctx, user, rec.ID, Patch{URL: ptr("https://static.example/")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Update(ctx, "someone-else", other.ID, Patch{Label: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleAndDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec, err := f.svc.Create(ctx, user, Input{Shortcut: "mine", URL: "https://m.example/{query}", Label: "Mine"})
	require.NoError(t, err)

	toggled, err := f.svc.Toggle(ctx, user, rec.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsEnabled)

	toggled, err = f.svc.Toggle(ctx, user, rec.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsEnabled)

	require.NoError(t, f.svc.Delete(ctx, user, rec.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, user, rec.ID), domain.ErrNotFound)
	_, err = f.svc.Toggle(ctx, user, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOverrideDefault(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec, err := f.svc.OverrideDefault(ctx, user, "G", "https://custom.example/?q={query}", "")
	require.NoError(t, err)
	assert.True(t, rec.IsSystemOverride)
	assert.Equal(t, "g", rec.Shortcut)
	assert.Equal(t, "Google", rec.Label, "empty label keeps the catalog label")

	again, err := f.svc.OverrideDefault(ctx, user, "g", "https://second.example/?q={query}", "Mine")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID, "a second override edits the same record")
	assert.Len(t, f.bangs.records, 1)

	table, err := f.svc.Resolved(ctx, user)
	require.NoError(t, err)
	g, ok := domain.FindBang(table, "g")
	require.True(t, ok)
	assert.False(t, g.IsDefault)
	assert.Equal(t, "https://second.example/?q={query}", g.URL)

	_, err = f.svc.OverrideDefault(ctx, user, "nope", "https://x.example/{query}", "X")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDisableAndEnableDefault(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.DisableDefault(ctx, user, "GH"))
	table, err := f.svc.Resolved(ctx, user)
	require.NoError(t, err)
	_, ok := domain.FindBang(table, "gh")
	assert.False(t, ok)

	assert.ErrorIs(t, f.svc.DisableDefault(ctx, user, "unknown"), domain.ErrNotFound)

	require.NoError(t, f.svc.EnableDefault(ctx, user, "gh"))
	table, err = f.svc.Resolved(ctx, user)
	require.NoError(t, err)
	_, ok = domain.FindBang(table, "gh")
	assert.True(t, ok)

	assert.ErrorIs(t, f.svc.EnableDefault(ctx, user, "unknown"), domain.ErrNotFound)
}

func TestEnableDefaultRemovesStaleEntry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.settings.disabled[user] = []string{"retired"}

	require.NoError(t, f.svc.EnableDefault(ctx, user, "retired"))
	assert.Empty(t, f.settings.disabled[user])
}

func TestOverrideBeatsDisabledSet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.DisableDefault(ctx, user, "gh"))
	_, err := f.svc.OverrideDefault(ctx, user, "gh", "https://code.example/{query}", "Code")
	require.NoError(t, err)

	table, err := f.svc.Resolved(ctx, user)
	require.NoError(t, err)
	gh, ok := domain.FindBang(table, "gh")
	require.True(t, ok)
	assert.Equal(t, "Code", gh.Label)

	require.NoError(t, f.svc.EnableDefault(ctx, user, "gh"))
	table, err = f.svc.Resolved(ctx, user)
	require.NoError(t, err)
	gh, _ = domain.FindBang(table, "gh")
	assert.Equal(t, "Code", gh.Label, "re-enabling does not touch the override")
}

func TestReset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, user, Input{Shortcut: "a", URL: "https://a.example/{query}", Label: "A"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "u2", Input{Shortcut: "a", URL: "https://a.example/{query}", Label: "A"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DisableDefault(ctx, user, "w"))

	n, err := f.svc.Reset(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Empty(t, f.settings.disabled[user])

	left, err := f.svc.ListCustom(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, left, 1, "other users are untouched")
}

func TestRedirect(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec, err := f.svc.Create(ctx, user, Input{Shortcut: "mine", URL: "https://m.example/?q={query}", Label: "Mine"})
	require.NoError(t, err)

	r, ok, err := f.svc.Redirect(ctx, user, "!mine a b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://m.example/?q=a%20b", r.URL)

	_, ok, err = f.svc.Redirect(ctx, "", "!mine a b")
	require.NoError(t, err)
	assert.False(t, ok, "anonymous users only see the catalog")

	_, err = f.svc.Toggle(ctx, user, rec.ID)
	require.NoError(t, err)
	_, ok, _ = f.svc.Redirect(ctx, user, "!mine a b")
	assert.False(t, ok, "disabled bangs never redirect")

	_, ok, _ = f.svc.Redirect(ctx, user, "plain query")
	assert.False(t, ok)
}

func TestRedirectFallsBackToCatalog(t *testing.T) {
	f := newFixture()
	f.bangs.listErr = errors.New("database down")

	r, ok, err := f.svc.Redirect(context.Background(), user, "!gh chi router")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(r.URL, "https://github.com/search?q=chi%20router"))
}

func TestSuggest(t *testing.T) {
	f := newFixture()

	got, err := f.svc.Suggest(context.Background(), "", "!g", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "g", got[0].Shortcut)
}
