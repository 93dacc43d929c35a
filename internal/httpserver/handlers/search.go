package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/httpserver/mw"
	"github.com/MrSnakeDoc/seek/internal/instant"
	"github.com/MrSnakeDoc/seek/internal/logger"
	"github.com/MrSnakeDoc/seek/internal/search"
)

const (
	maxBangSuggestions = 8
	maxCompletions     = 10
)

// Redirect serves the browser search-engine entry point: a bang invocation
// redirects to its target, anything else goes to the frontend results page.
func Redirect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		userID := mw.UserID(r.Context())

		target, ok, err := d.Bangs.Redirect(r.Context(), userID, q)
		if err != nil {
			d.Logger.Warn("bang redirect failed, using frontend",
				logger.String("query", q),
				logger.Error(err))
		}
		if !ok {
			http.Redirect(w, r, frontendURL(d.FrontendURL, q), http.StatusFound)
			return
		}

		d.Logger.Debug("bang redirect",
			logger.String("shortcut", target.Bang.Shortcut),
			logger.String("user_id", userID))
		recordUsage(r.Context(), d, target.Bang.Shortcut)

		http.Redirect(w, r, target.URL, http.StatusFound)
	}
}

func frontendURL(base, q string) string {
	if q == "" {
		return base
	}
	return base + url.QueryEscape(q)
}

func recordUsage(ctx context.Context, d deps.Deps, shortcut string) {
	if d.Usage == nil {
		return
	}
	if err := d.Usage.IncrementUsage(ctx, shortcut); err != nil {
		d.Logger.Debug("failed to record bang usage", logger.Error(err))
	}
}

type apiSearchResponse struct {
	*search.Response
	Query   string           `json:"query"`
	Bang    *domain.Redirect `json:"bang,omitempty"`
	Instant *instant.Answer  `json:"instant,omitempty"`
}

// APISearch runs a search for the frontend. A bang invocation short-circuits
// into a redirect target; otherwise SearXNG results are returned together
// with an instant answer when one applies.
func APISearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "q is required")
			return
		}
		userID := mw.UserID(ctx)

		if target, ok, _ := d.Bangs.Redirect(ctx, userID, q); ok {
			recordUsage(ctx, d, target.Bang.Shortcut)
			writeData(w, http.StatusOK, apiSearchResponse{Query: q, Bang: &target})
			return
		}

		settings := userSettings(ctx, d, userID)
		query := search.Query{
			Text:       q,
			Category:   r.URL.Query().Get("category"),
			Page:       queryInt(r, "page", 1),
			Language:   r.URL.Query().Get("lang"),
			SafeSearch: queryInt(r, "safesearch", settings.SafeSearch),
			TimeRange:  r.URL.Query().Get("time_range"),
		}
		if query.Category == "" {
			query.Category = settings.DefaultCategory
		}
		if query.Language == "" {
			query.Language = settings.Language
		}
		query = query.Normalize()

		answer, hasAnswer := instant.Detect(q)
		if hasAnswer && answer.Type == instant.TypeWeather && d.Weather == nil {
			hasAnswer = false
		}

		var results search.Response
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			results, err = d.Search.Search(gctx, query)
			return err
		})
		if hasAnswer && answer.Type == instant.TypeWeather {
			g.Go(func() error {
				weather, err := d.Weather.Lookup(gctx, answer.Location)
				if err != nil {
					// The answer is optional; never fail the search for it.
					if !errors.Is(err, instant.ErrPlaceNotFound) && !errors.Is(err, context.Canceled) {
						d.Logger.Warn("weather lookup failed",
							logger.String("place", answer.Location),
							logger.Error(err))
					}
					hasAnswer = false
					return nil
				}
				answer.Weather = &weather
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}

		if userID != "" && settings.SaveHistory && query.Page == 1 {
			saveHistory(ctx, d, userID, q, query.Category)
		}

		resp := apiSearchResponse{Response: &results, Query: q}
		if hasAnswer {
			resp.Instant = &answer
		}
		writeData(w, http.StatusOK, resp)
	}
}

// userSettings returns the caller's preferences, defaults for anonymous users
// or when they cannot be loaded.
func userSettings(ctx context.Context, d deps.Deps, userID string) domain.UserSettings {
	if userID == "" || d.Settings == nil {
		s := domain.DefaultSettings("")
		s.SaveHistory = false
		return s
	}
	s, err := d.Settings.Get(ctx, userID)
	if err != nil {
		d.Logger.Warn("failed to load settings, using defaults",
			logger.String("user_id", userID),
			logger.Error(err))
		return domain.DefaultSettings(userID)
	}
	return s
}

func saveHistory(ctx context.Context, d deps.Deps, userID, q, category string) {
	if d.History == nil {
		return
	}
	if _, err := d.History.Add(ctx, domain.HistoryEntry{UserID: userID, Query: q, Category: category}); err != nil {
		d.Logger.Warn("failed to save history",
			logger.String("user_id", userID),
			logger.Error(err))
	}
}

type completion struct {
	Text  string `json:"text"`
	Type  string `json:"type"` // "bang" or "query"
	Label string `json:"label,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Autocomplete suggests bangs for "!prefix" input and search completions otherwise.
func Autocomplete(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			writeData(w, http.StatusOK, []completion{})
			return
		}

		if strings.HasPrefix(q, "!") && !strings.ContainsAny(q, " \t") {
			bangs, err := d.Bangs.Suggest(r.Context(), mw.UserID(r.Context()), q, maxBangSuggestions)
			if err != nil {
				writeServiceError(w, d.Logger, err)
				return
			}
			out := make([]completion, 0, len(bangs))
			for _, b := range bangs {
				out = append(out, completion{Text: "!" + b.Shortcut, Type: "bang", Label: b.Label, URL: b.URL})
			}
			writeData(w, http.StatusOK, out)
			return
		}

		texts, err := d.Search.Autocomplete(r.Context(), q)
		if err != nil {
			// Completions are cosmetic; an upstream failure yields none.
			d.Logger.Debug("autocomplete failed", logger.Error(err))
			texts = nil
		}
		if len(texts) > maxCompletions {
			texts = texts[:maxCompletions]
		}
		out := make([]completion, 0, len(texts))
		for _, t := range texts {
			out = append(out, completion{Text: t, Type: "query"})
		}
		writeData(w, http.StatusOK, out)
	}
}
