package catalogfile

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVarRE = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Loader handles loading and parsing of the catalog extension file
type Loader struct {
	filePath string
	lookup   func(string) (string, bool)
}

// NewLoader creates a new catalog file loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
		lookup:   os.LookupEnv,
	}
}

// Path returns the file the loader reads
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads and parses the catalog file
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	data = l.expandTemplateVariables(data)

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	return file, nil
}

// expandTemplateVariables replaces {{NAME}} with the environment value of NAME.
// Unset variables expand to an empty string, which later fails URL validation.
// Example: url: https://{{SEEK_VAR_WIKI_HOST}}/?q={query}
func (l *Loader) expandTemplateVariables(data []byte) []byte {
	return templateVarRE.ReplaceAllFunc(data, func(m []byte) []byte {
		name := string(templateVarRE.FindSubmatch(m)[1])
		v, _ := l.lookup(name)
		return []byte(v)
	})
}
