package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	redisstore "github.com/MrSnakeDoc/seek/internal/store/redis"
)

const topUsageCount = 10

type componentStatus struct {
	OK         bool   `json:"ok"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
	BangCount  *int   `json:"bang_count,omitempty"`
	Extras     *int   `json:"extras,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Breaker    string `json:"breaker,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
	TopBangs   []redisstore.UsageStat     `json:"top_bangs,omitempty"`
}

// Infra reports the state of every backing component.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"catalog":  checkCatalog(d),
			"postgres": checkPostgres(ctx, d),
			"redis":    checkRedis(ctx, d),
			"searxng":  checkSearxng(ctx, d),
		}

		resp := infraResponse{
			Mode:       determineMode(components),
			Components: components,
		}
		if d.Usage != nil && components["redis"].OK {
			if stats, err := d.Usage.GetUsageStats(ctx, topUsageCount); err == nil {
				resp.TopBangs = stats
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// determineMode is "critical" when bang storage is down, "degraded" when a
// cache or search dependency is down, "optimal" otherwise.
func determineMode(components map[string]componentStatus) string {
	if !components["postgres"].OK || !components["catalog"].OK {
		return "critical"
	}
	if !components["redis"].OK || !components["searxng"].OK {
		return "degraded"
	}
	return "optimal"
}

func checkCatalog(d deps.Deps) componentStatus {
	if d.Catalog == nil {
		return componentStatus{OK: false, Error: "catalog not loaded"}
	}
	count := d.Catalog.Count()
	extras := len(d.Catalog.Extras())
	lastReload := "never"
	if t := d.Catalog.GetLastReload(); !t.IsZero() {
		lastReload = t.Format(time.RFC3339)
	}
	return componentStatus{
		OK:         count > 0,
		BangCount:  &count,
		Extras:     &extras,
		LastReload: lastReload,
	}
}

func checkPostgres(ctx context.Context, d deps.Deps) componentStatus {
	if d.Postgres == nil {
		return componentStatus{OK: false, Impact: "custom-bangs-unavailable", Error: "pool not initialized"}
	}
	if err := d.Postgres.Ping(ctx); err != nil {
		return componentStatus{OK: false, Impact: "custom-bangs-unavailable", Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Redis == nil {
		return componentStatus{OK: false, Mode: "degraded", Impact: "cache-disabled", Error: "client not initialized"}
	}
	if err := d.Redis.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: "degraded", Impact: "cache-disabled", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: "optimal"}
}

func checkSearxng(ctx context.Context, d deps.Deps) componentStatus {
	if d.Search == nil {
		return componentStatus{OK: false, Impact: "web-search-unavailable", Error: "client not initialized"}
	}
	state := d.Search.State()
	if err := d.Search.Ping(ctx); err != nil {
		return componentStatus{OK: false, Impact: "web-search-unavailable", Error: err.Error(), Breaker: state}
	}
	return componentStatus{OK: true, Breaker: state}
}
