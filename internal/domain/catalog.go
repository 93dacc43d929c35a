package domain

// Catalog is the ordered, read-only list of built-in bangs.
// Callers must not mutate the slice returned by Entries.
type Catalog struct {
	entries []BangDefinition
	byKey   map[string]int
}

// NewCatalog builds a catalog from defs, keeping the first definition of any
// duplicated shortcut. Built-in entries are always enabled.
func NewCatalog(defs []BangDefinition) Catalog {
	c := Catalog{
		entries: make([]BangDefinition, 0, len(defs)),
		byKey:   make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		key := d.Key()
		if key == "" {
			continue
		}
		if _, dup := c.byKey[key]; dup {
			continue
		}
		d.IsEnabled = true
		d.IsSystemOverride = false
		c.byKey[key] = len(c.entries)
		c.entries = append(c.entries, d)
	}
	return c
}

// Entries returns the catalog in declaration order.
func (c Catalog) Entries() []BangDefinition {
	return c.entries
}

// Len returns the number of entries.
func (c Catalog) Len() int {
	return len(c.entries)
}

// Find looks up a catalog entry by shortcut, case-insensitively.
func (c Catalog) Find(shortcut string) (BangDefinition, bool) {
	i, ok := c.byKey[NormalizeShortcut(shortcut)]
	if !ok {
		return BangDefinition{}, false
	}
	return c.entries[i], true
}

// Has reports whether shortcut names a catalog entry.
func (c Catalog) Has(shortcut string) bool {
	_, ok := c.byKey[NormalizeShortcut(shortcut)]
	return ok
}

// Extend returns a new catalog with extra appended after the current entries.
// Entries colliding with an existing shortcut are returned as rejected.
func (c Catalog) Extend(extra []BangDefinition) (Catalog, []BangDefinition) {
	defs := make([]BangDefinition, 0, len(c.entries)+len(extra))
	defs = append(defs, c.entries...)

	var rejected []BangDefinition
	seen := make(map[string]struct{}, len(extra))
	for _, e := range extra {
		key := e.Key()
		_, inBase := c.byKey[key]
		_, inExtra := seen[key]
		if key == "" || inBase || inExtra {
			rejected = append(rejected, e)
			continue
		}
		seen[key] = struct{}{}
		defs = append(defs, e)
	}
	return NewCatalog(defs), rejected
}

// DefaultCatalog returns the bangs shipped with seek.
func DefaultCatalog() Catalog {
	return NewCatalog(defaultBangs)
}

var defaultBangs = []BangDefinition{
	// General search
	{Shortcut: "g", URL: "https://www.google.com/search?q={query}", Label: "Google"},
	{Shortcut: "ddg", URL: "https://duckduckgo.com/?q={query}", Label: "DuckDuckGo"},
	{Shortcut: "b", URL: "https://www.bing.com/search?q={query}", Label: "Bing"},
	{Shortcut: "brave", URL: "https://search.brave.com/search?q={query}", Label: "Brave Search"},
	{Shortcut: "sp", URL: "https://www.startpage.com/sp/search?query={query}", Label: "Startpage"},
	{Shortcut: "qw", URL: "https://www.qwant.com/?q={query}", Label: "Qwant"},
	{Shortcut: "eco", URL: "https://www.ecosia.org/search?q={query}", Label: "Ecosia"},
	{Shortcut: "w", URL: "https://en.wikipedia.org/w/index.php?search={query}", Label: "Wikipedia"},
	{Shortcut: "gi", URL: "https://www.google.com/search?tbm=isch&q={query}", Label: "Google Images"},

	// Development
	{Shortcut: "gh", URL: "https://github.com/search?q={query}", Label: "GitHub"},
	{Shortcut: "gl", URL: "https://gitlab.com/search?search={query}", Label: "GitLab"},
	{Shortcut: "so", URL: "https://stackoverflow.com/search?q={query}", Label: "Stack Overflow"},
	{Shortcut: "mdn", URL: "https://developer.mozilla.org/en-US/search?q={query}", Label: "MDN Web Docs"},
	{Shortcut: "npm", URL: "https://www.npmjs.com/search?q={query}", Label: "npm"},
	{Shortcut: "pypi", URL: "https://pypi.org/search/?q={query}", Label: "PyPI"},
	{Shortcut: "crates", URL: "https://crates.io/search?q={query}", Label: "crates.io"},
	{Shortcut: "pkg", URL: "https://pkg.go.dev/search?q={query}", Label: "Go Packages"},
	{Shortcut: "dh", URL: "https://hub.docker.com/search?q={query}", Label: "Docker Hub"},
	{Shortcut: "aw", URL: "https://wiki.archlinux.org/index.php?search={query}", Label: "ArchWiki"},

	// Media & social
	{Shortcut: "yt", URL: "https://www.youtube.com/results?search_query={query}", Label: "YouTube"},
	{Shortcut: "r", URL: "https://www.reddit.com/search/?q={query}", Label: "Reddit"},
	{Shortcut: "hn", URL: "https://hn.algolia.com/?q={query}", Label: "Hacker News"},
	{Shortcut: "imdb", URL: "https://www.imdb.com/find/?q={query}", Label: "IMDb"},

	// Maps, shopping, reference
	{Shortcut: "maps", URL: "https://www.openstreetmap.org/search?query={query}", Label: "OpenStreetMap"},
	{Shortcut: "gm", URL: "https://www.google.com/maps/search/{query}", Label: "Google Maps"},
	{Shortcut: "a", URL: "https://www.amazon.com/s?k={query}", Label: "Amazon"},
	{Shortcut: "ebay", URL: "https://www.ebay.com/sch/i.html?_nkw={query}", Label: "eBay"},
	{Shortcut: "wa", URL: "https://www.wolframalpha.com/input?i={query}", Label: "Wolfram Alpha"},
	{Shortcut: "tr", URL: "https://translate.google.com/?text={query}", Label: "Google Translate"},
	{Shortcut: "dict", URL: "https://www.merriam-webster.com/dictionary/{query}", Label: "Merriam-Webster"},
}
