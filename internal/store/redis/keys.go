package redis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// KeyPrefixResolved is the prefix for per-user resolved bang tables
	KeyPrefixResolved = "seek:bangs:"
	// KeyPrefixCache is the prefix for cached search responses
	KeyPrefixCache = "seek:cache:"
	// KeyCatalogExtras holds the last loaded catalog extension
	KeyCatalogExtras = "seek:catalog:extras"
	// KeyUsage is the sorted set of redirect counts per shortcut
	KeyUsage = "seek:usage"
	// AnonymousUser keys the resolved table of signed-out requests
	AnonymousUser = "anonymous"
)

// ResolvedKey returns the Redis key for a user's resolved bang table
func ResolvedKey(userID string) string {
	if userID == "" {
		userID = AnonymousUser
	}
	return KeyPrefixResolved + userID
}

// CacheKey returns the Redis key for a cached response built from parts.
// Parts are hashed so arbitrary user queries never leak into key names.
func CacheKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return KeyPrefixCache + hex.EncodeToString(sum[:16])
}
