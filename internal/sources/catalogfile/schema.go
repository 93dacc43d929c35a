package catalogfile

// File is the top-level structure of the catalog extension file.
// Groups use dynamic keys, so we parse as []map[string][]BangProps:
//
//	- Self-hosted:
//	    - shortcut: wiki
//	      url: https://wiki.home.lan/search?q={query}
//	      label: Home wiki
type File []map[string][]BangProps

// BangProps contains one extension bang
type BangProps struct {
	Shortcut string `yaml:"shortcut"`
	URL      string `yaml:"url"`
	Label    string `yaml:"label,omitempty"`
}
