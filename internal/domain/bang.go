package domain

import (
	"strings"
	"time"
)

// QueryPlaceholder is the token replaced by the user's query in bang URLs.
const QueryPlaceholder = "{query}"

// MaxCustomBangsPerUser caps the number of live custom bangs a user may own.
const MaxCustomBangsPerUser = 100

// BangDefinition is a shortcut definition as shipped in the catalog.
// Values are immutable once constructed.
type BangDefinition struct {
	Shortcut         string `json:"shortcut" yaml:"shortcut"`
	URL              string `json:"url" yaml:"url"`
	Label            string `json:"label" yaml:"label"`
	IsEnabled        bool   `json:"isEnabled" yaml:"-"`
	IsSystemOverride bool   `json:"isSystemOverride" yaml:"-"`
}

// Key returns the normalized lookup key of the bang.
func (b BangDefinition) Key() string {
	return NormalizeShortcut(b.Shortcut)
}

// CustomBang is a per-user persisted bang.
//
// A CustomBang whose shortcut matches a catalog entry shadows it.
// (UserID, lower(Shortcut)) is unique.
type CustomBang struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is server generated (uuid).
	ID string `json:"id"`

	// UserID is the owner. Records are never visible to other users.
	UserID string `json:"-"`

	// ─────────────────────────────
	// Definition
	// ─────────────────────────────

	Shortcut string `json:"shortcut"`
	URL      string `json:"url"`
	Label    string `json:"label"`

	// IsEnabled toggles redirects without deleting the record.
	IsEnabled bool `json:"isEnabled"`

	// IsSystemOverride marks a record created by editing a catalog entry.
	// Informational only: shadowing happens on shortcut equality alone.
	IsSystemOverride bool `json:"isSystemOverride"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MergedBang is the resolved view of a bang for one user. Never persisted.
type MergedBang struct {
	ID               string `json:"id,omitempty"`
	Shortcut         string `json:"shortcut"`
	URL              string `json:"url"`
	Label            string `json:"label"`
	IsEnabled        bool   `json:"isEnabled"`
	IsSystemOverride bool   `json:"isSystemOverride"`
	IsDefault        bool   `json:"isDefault"`
}

// NormalizeShortcut lower-cases and trims a shortcut for map keys and comparisons.
func NormalizeShortcut(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
