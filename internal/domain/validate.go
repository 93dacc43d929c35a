package domain

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxLabelLength bounds bang labels.
const MaxLabelLength = 100

// urlProbe is substituted for the placeholder before parsing a template.
const urlProbe = "test"

// ValidateShortcut reports whether s is a non-empty ASCII alphanumeric shortcut.
func ValidateShortcut(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// ValidateURL reports whether s is a bang URL template: it must contain the
// {query} placeholder and parse as an absolute URL once the placeholder is filled.
func ValidateURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, QueryPlaceholder) {
		return false
	}
	candidate := strings.ReplaceAll(s, QueryPlaceholder, urlProbe)
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// ValidateLabel reports whether s is usable as a bang label.
func ValidateLabel(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "\r\n") {
		return false
	}
	return utf8.RuneCountInString(s) <= MaxLabelLength
}

// ValidateBang checks all user-supplied fields of a bang and returns the
// first failure as a *ValidationError.
func ValidateBang(shortcut, rawURL, label string) error {
	if !ValidateShortcut(shortcut) {
		return NewValidationError("shortcut", "shortcut must be letters and digits only")
	}
	if !ValidateURL(rawURL) {
		return NewValidationError("url", "url must be an absolute URL containing "+QueryPlaceholder)
	}
	if !ValidateLabel(label) {
		return NewValidationError("label", "label is required and must be a single line of at most 100 characters")
	}
	return nil
}
