package domain

import (
	"regexp"
	"sort"
	"strings"
)

// invocationRE matches "!<word> <rest>" at the start of the input.
// \w is ASCII [0-9A-Za-z_]. The separator class matches ECMAScript \s:
// ASCII whitespace, every Unicode space separator (U+00A0, U+2003,
// U+3000, ...) and U+FEFF.
var invocationRE = regexp.MustCompile(`^!(\w+)[\s\p{Z}\x{FEFF}]+(.+)$`)

// Invocation is a detected "!shortcut query" input.
type Invocation struct {
	Shortcut  string `json:"shortcut"`
	Remainder string `json:"remainder"`
}

// DetectShortcutInvocation extracts the shortcut and query from inputs such as
// "!gh react hooks". It only detects; the shortcut is not looked up.
//
// Examples:
//
//	"!gh react hooks" -> {gh, "react hooks"}, true
//	"!gh"             -> false (no query)
//	"just text"       -> false
//	"text !gh foo"    -> false (bang not at start)
func DetectShortcutInvocation(text string) (Invocation, bool) {
	m := invocationRE.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Invocation{}, false
	}
	return Invocation{Shortcut: m[1], Remainder: m[2]}, true
}

// FindBang returns the first bang whose shortcut equals shortcut, ignoring case.
func FindBang(bangs []MergedBang, shortcut string) (MergedBang, bool) {
	key := NormalizeShortcut(shortcut)
	for _, b := range bangs {
		if strings.ToLower(b.Shortcut) == key {
			return b, true
		}
	}
	return MergedBang{}, false
}

// CatalogTable exposes the catalog as a merged table, used when no per-user
// table is available (anonymous requests, cache and database both down).
func CatalogTable(c Catalog) []MergedBang {
	entries := c.Entries()
	out := make([]MergedBang, 0, len(entries))
	for _, e := range entries {
		out = append(out, MergedBang{
			Shortcut:  e.Shortcut,
			URL:       e.URL,
			Label:     e.Label,
			IsEnabled: true,
			IsDefault: true,
		})
	}
	return out
}

// Redirect is the outcome of resolving a query against a bang table.
type Redirect struct {
	Bang  MergedBang `json:"bang"`
	Query string     `json:"query"`
	URL   string     `json:"url"`
}

// ResolveQuery turns text into a redirect when it invokes a known, enabled bang.
func ResolveQuery(table []MergedBang, text string) (Redirect, bool) {
	inv, ok := DetectShortcutInvocation(text)
	if !ok {
		return Redirect{}, false
	}
	bang, ok := FindBang(table, inv.Shortcut)
	if !ok || !bang.IsEnabled {
		return Redirect{}, false
	}
	return Redirect{
		Bang:  bang,
		Query: inv.Remainder,
		URL:   BuildURL(bang.URL, inv.Remainder),
	}, true
}

// Suggest returns enabled bangs whose shortcut starts with prefix (a leading
// "!" and anything after the first space are ignored). Exact matches come
// first, then shorter shortcuts, then alphabetical order.
func Suggest(table []MergedBang, prefix string, limit int) []MergedBang {
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "!")
	if i := strings.IndexAny(prefix, " \t"); i >= 0 {
		prefix = prefix[:i]
	}
	prefix = strings.ToLower(prefix)

	out := make([]MergedBang, 0, 8)
	for _, b := range table {
		if !b.IsEnabled {
			continue
		}
		if strings.HasPrefix(strings.ToLower(b.Shortcut), prefix) {
			out = append(out, b)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := strings.ToLower(out[i].Shortcut), strings.ToLower(out[j].Shortcut)
		if (si == prefix) != (sj == prefix) {
			return si == prefix
		}
		if len(si) != len(sj) {
			return len(si) < len(sj)
		}
		return si < sj
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
