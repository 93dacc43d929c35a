package domain

import (
	"encoding/json"
	"fmt"
	"io"
)

// TransferVersion is the only import/export format version understood.
const TransferVersion = 1

// Import modes.
const (
	ImportModeSkip    = "skip"
	ImportModeReplace = "replace"
)

// TransferBang is one bang in an import/export document.
type TransferBang struct {
	Shortcut  string `json:"shortcut"`
	URL       string `json:"url"`
	Label     string `json:"label"`
	IsEnabled *bool  `json:"isEnabled,omitempty"`
}

// Enabled returns IsEnabled, defaulting to true when absent.
func (t TransferBang) Enabled() bool {
	return t.IsEnabled == nil || *t.IsEnabled
}

// TransferDocument is the JSON import/export file.
type TransferDocument struct {
	Version int            `json:"version"`
	Bangs   []TransferBang `json:"bangs"`
	Mode    string         `json:"mode,omitempty"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Skip records a skipped entry and its reason.
func (r *ImportResult) Skip(format string, args ...any) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// DecodeTransfer reads a document and checks its envelope. Individual entries
// are validated later, one by one, so a bad entry never fails the batch.
func DecodeTransfer(r io.Reader) (TransferDocument, error) {
	var doc TransferDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return TransferDocument{}, NewValidationError("body", "invalid import file: "+err.Error())
	}
	if err := doc.CheckEnvelope(); err != nil {
		return TransferDocument{}, err
	}
	return doc, nil
}

// CheckEnvelope validates version and mode, defaulting mode to skip.
func (d *TransferDocument) CheckEnvelope() error {
	if d.Version != TransferVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.Version)
	}
	switch d.Mode {
	case "":
		d.Mode = ImportModeSkip
	case ImportModeSkip, ImportModeReplace:
	default:
		return NewValidationError("mode", `mode must be "skip" or "replace"`)
	}
	return nil
}

// ExportDocument builds a version-1 document from custom bangs.
func ExportDocument(custom []CustomBang) TransferDocument {
	doc := TransferDocument{Version: TransferVersion, Bangs: make([]TransferBang, 0, len(custom))}
	for _, c := range custom {
		enabled := c.IsEnabled
		doc.Bangs = append(doc.Bangs, TransferBang{
			Shortcut:  c.Shortcut,
			URL:       c.URL,
			Label:     c.Label,
			IsEnabled: &enabled,
		})
	}
	return doc
}
