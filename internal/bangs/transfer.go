package bangs

import (
	"context"
	"errors"
	"strings"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/logger"
)

// Import applies a transfer document. Entries are handled one by one: a
// rejected entry is counted and reported, never fatal. Only an unknown
// version or mode aborts, and storage failures stop the batch.
func (s *Service) Import(ctx context.Context, userID string, doc domain.TransferDocument) (domain.ImportResult, error) {
	res := domain.ImportResult{Errors: []string{}}
	if err := doc.CheckEnvelope(); err != nil {
		return res, err
	}

	existing, err := s.bangs.List(ctx, userID)
	if err != nil {
		return res, err
	}
	byKey := make(map[string]domain.CustomBang, len(existing))
	for _, b := range existing {
		byKey[domain.NormalizeShortcut(b.Shortcut)] = b
	}
	count := len(existing)

	catalog := s.catalog.Catalog()
	seen := make(map[string]struct{}, len(doc.Bangs))

	defer func() {
		if res.Imported > 0 {
			s.invalidate(ctx, userID)
		}
		s.logger.Info("bangs imported",
			logger.String("user_id", userID),
			logger.String("mode", doc.Mode),
			logger.Int("imported", res.Imported),
			logger.Int("skipped", res.Skipped))
	}()

	for i, tb := range doc.Bangs {
		shortcut := strings.TrimSpace(tb.Shortcut)
		url := strings.TrimSpace(tb.URL)
		label := strings.TrimSpace(tb.Label)

		if err := domain.ValidateBang(shortcut, url, label); err != nil {
			res.Skip("entry %d (%q): %v", i+1, shortcut, err)
			continue
		}

		key := domain.NormalizeShortcut(shortcut)
		if _, dup := seen[key]; dup {
			res.Skip("entry %d (%q): duplicate shortcut in file", i+1, shortcut)
			continue
		}
		seen[key] = struct{}{}

		if current, ok := byKey[key]; ok {
			if doc.Mode != domain.ImportModeReplace {
				res.Skip("entry %d (%q): %v", i+1, shortcut, domain.ErrConflict)
				continue
			}
			current.Shortcut = shortcut
			current.URL = url
			current.Label = label
			current.IsEnabled = tb.Enabled()
			if _, err := s.bangs.Update(ctx, current); err != nil {
				if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
					res.Skip("entry %d (%q): %v", i+1, shortcut, err)
					continue
				}
				return res, err
			}
			res.Imported++
			continue
		}

		if count >= domain.MaxCustomBangsPerUser {
			res.Skip("entry %d (%q): %v", i+1, shortcut, domain.ErrQuotaExceeded)
			continue
		}

		created, err := s.bangs.Create(ctx, domain.CustomBang{
			UserID:           userID,
			Shortcut:         shortcut,
			URL:              url,
			Label:            label,
			IsEnabled:        tb.Enabled(),
			IsSystemOverride: catalog.Has(key),
		})
		if err != nil {
			if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrQuotaExceeded) {
				res.Skip("entry %d (%q): %v", i+1, shortcut, err)
				continue
			}
			return res, err
		}
		byKey[key] = created
		count++
		res.Imported++
	}

	return res, nil
}

// Export returns the user's custom bangs as a version 1 document.
func (s *Service) Export(ctx context.Context, userID string) (domain.TransferDocument, error) {
	custom, err := s.bangs.List(ctx, userID)
	if err != nil {
		return domain.TransferDocument{}, err
	}
	return domain.ExportDocument(custom), nil
}
