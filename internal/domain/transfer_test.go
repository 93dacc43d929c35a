package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeTransfer(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  error
		wantMode string
		wantLen  int
	}{
		{
			name:     "default mode",
			body:     `{"version":1,"bangs":[{"shortcut":"a","url":"https://a/{query}","label":"A"}]}`,
			wantMode: ImportModeSkip,
			wantLen:  1,
		},
		{
			name:     "replace mode",
			body:     `{"version":1,"mode":"replace","bangs":[]}`,
			wantMode: ImportModeReplace,
		},
		{
			name:    "wrong version",
			body:    `{"version":2,"bangs":[]}`,
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "unknown mode",
			body:    `{"version":1,"mode":"merge","bangs":[]}`,
			wantErr: ErrValidation,
		},
		{
			name:    "not json",
			body:    `version=1`,
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeTransfer(strings.NewReader(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.Mode != tt.wantMode || len(doc.Bangs) != tt.wantLen {
				t.Errorf("doc = %+v", doc)
			}
		})
	}
}

func TestTransferBangEnabledDefaultsTrue(t *testing.T) {
	off := false
	if !(TransferBang{}).Enabled() {
		t.Error("missing isEnabled should default to true")
	}
	if (TransferBang{IsEnabled: &off}).Enabled() {
		t.Error("explicit false should be kept")
	}
}

func TestExportDocument(t *testing.T) {
	doc := ExportDocument([]CustomBang{
		{ID: "1", Shortcut: "a", URL: "https://a/{query}", Label: "A", IsEnabled: true},
		{ID: "2", Shortcut: "b", URL: "https://b/{query}", Label: "B", IsEnabled: false},
	})

	if doc.Version != TransferVersion || len(doc.Bangs) != 2 {
		t.Fatalf("doc = %+v", doc)
	}
	if !doc.Bangs[0].Enabled() || doc.Bangs[1].Enabled() {
		t.Error("enabled flags not exported")
	}
	if doc.Mode != "" {
		t.Error("export should not carry an import mode")
	}
}
