package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/seek/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	tokens := d.Auth.Tokens()
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMinute,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})

	r.Route("/api", func(api chi.Router) {
		// Public, user-aware when a token is sent
		api.Group(func(pub chi.Router) {
			pub.Use(mw.OptionalAuth(tokens, d.Logger))
			pub.With(limit).Get("/search", handlers.APISearch(d))
			pub.With(limit).Get("/autocomplete", handlers.Autocomplete(d))
			pub.Get("/bangs", handlers.ListBangs(d))
		})

		api.Route("/auth", func(a chi.Router) {
			a.With(limit).Post("/signup", handlers.Signup(d))
			a.With(limit).Post("/login", handlers.Login(d))
			a.With(mw.RequireAuth(tokens, d.Logger)).Get("/me", handlers.Me(d))
		})

		api.Group(func(priv chi.Router) {
			priv.Use(mw.RequireAuth(tokens, d.Logger))

			priv.Post("/bangs", handlers.CreateBang(d))
			priv.Get("/bangs/custom", handlers.ListCustomBangs(d))
			priv.Post("/bangs/reset", handlers.ResetBangs(d))
			priv.Post("/bangs/import", handlers.ImportBangs(d))
			priv.Get("/bangs/export", handlers.ExportBangs(d))
			priv.Put("/bangs/defaults/{shortcut}", handlers.OverrideDefault(d))
			priv.Delete("/bangs/defaults/{shortcut}", handlers.DisableDefault(d))
			priv.Post("/bangs/defaults/{shortcut}", handlers.EnableDefault(d))
			priv.Patch("/bangs/{id}", handlers.UpdateBang(d))
			priv.Delete("/bangs/{id}", handlers.DeleteBang(d))
			priv.Post("/bangs/{id}/toggle", handlers.ToggleBang(d))

			priv.Get("/settings", handlers.GetSettings(d))
			priv.Put("/settings", handlers.PutSettings(d))

			priv.Get("/history", handlers.ListHistory(d))
			priv.Delete("/history", handlers.ClearHistory(d))
			priv.Delete("/history/{id}", handlers.DeleteHistoryEntry(d))
		})
	})
}
