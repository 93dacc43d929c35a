package catalogfile

import (
	"fmt"
	"sort"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

// Mapper converts a catalog File to domain.BangDefinition entries
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapBangs converts the file to definitions in file order.
// Invalid entries are skipped and reported in skipped, one reason each.
func (m *Mapper) MapBangs(file File) (defs []domain.BangDefinition, skipped []string) {
	for _, groupMap := range file {
		// A list item may hold several groups; map order is random.
		groups := make([]string, 0, len(groupMap))
		for name := range groupMap {
			groups = append(groups, name)
		}
		sort.Strings(groups)

		for _, groupName := range groups {
			for i, props := range groupMap[groupName] {
				label := props.Label
				if label == "" {
					label = props.Shortcut
				}

				if err := domain.ValidateBang(props.Shortcut, props.URL, label); err != nil {
					skipped = append(skipped, fmt.Sprintf("%s[%d] %q: %v", groupName, i, props.Shortcut, err))
					continue
				}

				defs = append(defs, domain.BangDefinition{
					Shortcut:  props.Shortcut,
					URL:       props.URL,
					Label:     label,
					IsEnabled: true,
				})
			}
		}
	}

	return defs, skipped
}
