package domain

import (
	"slices"
	"sort"
	"time"
)

// Search categories understood by the search backend.
const (
	CategoryWeb    = "web"
	CategoryImages = "images"
	CategoryVideos = "videos"
	CategoryNews   = "news"
)

// Themes accepted in display preferences.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// Safe search levels, matching the upstream numeric scale.
const (
	SafeSearchOff      = 0
	SafeSearchModerate = 1
	SafeSearchStrict   = 2
)

// UserSettings holds a user's display preferences and disabled default bangs.
// There is at most one row per user; a missing row means DefaultSettings.
type UserSettings struct {
	UserID string `json:"-"`

	// ─────────────────────────────
	// Display preferences
	// ─────────────────────────────

	Theme           string `json:"theme"`
	SafeSearch      int    `json:"safeSearch"`
	ResultsPerPage  int    `json:"resultsPerPage"`
	OpenInNewTab    bool   `json:"openInNewTab"`
	DefaultCategory string `json:"defaultCategory"`
	Language        string `json:"language"`
	SaveHistory     bool   `json:"saveHistory"`

	// ─────────────────────────────
	// Bangs
	// ─────────────────────────────

	// DisabledDefaultBangs holds lower-cased catalog shortcuts the user suppressed.
	DisabledDefaultBangs []string `json:"disabledDefaultBangs"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultSettings returns the preferences of a user who never saved any.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:               userID,
		Theme:                ThemeSystem,
		SafeSearch:           SafeSearchModerate,
		ResultsPerPage:       10,
		OpenInNewTab:         false,
		DefaultCategory:      CategoryWeb,
		Language:             "auto",
		SaveHistory:          true,
		DisabledDefaultBangs: []string{},
	}
}

// Validate checks display preference values.
func (s UserSettings) Validate() error {
	switch s.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return NewValidationError("theme", "theme must be system, light or dark")
	}
	if s.SafeSearch < SafeSearchOff || s.SafeSearch > SafeSearchStrict {
		return NewValidationError("safeSearch", "safeSearch must be 0, 1 or 2")
	}
	if s.ResultsPerPage < 5 || s.ResultsPerPage > 50 {
		return NewValidationError("resultsPerPage", "resultsPerPage must be between 5 and 50")
	}
	if !IsCategory(s.DefaultCategory) {
		return NewValidationError("defaultCategory", "unknown category")
	}
	if s.Language == "" {
		return NewValidationError("language", "language is required")
	}
	return nil
}

// IsCategory reports whether c is a supported search category.
func IsCategory(c string) bool {
	switch c {
	case CategoryWeb, CategoryImages, CategoryVideos, CategoryNews:
		return true
	}
	return false
}

// NormalizeDisabled lower-cases, de-duplicates and sorts a disabled set.
func NormalizeDisabled(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := NormalizeShortcut(s)
		if key == "" || slices.Contains(out, key) {
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
