package keys

import (
	"sort"
	"strings"
)

// DeckKeyFromCardIDs produces a canonical key for a list of card IDs.
// Behavior: trims IDs, lower-cases, sorts the parts and joins with
// underscore. Used for stable deck fingerprints in logs and dedupe keys.
func DeckKeyFromCardIDs(ids []string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		s := strings.TrimSpace(id)
		if s == "" {
			continue
		}
		parts = append(parts, strings.ToLower(s))
	}
	sort.Strings(parts)
	return strings.Join(parts, "_")
}
