// Package normalize holds the pure string transforms used by the persistence
// layer: topical tag derivation and price-text parsing.
package normalize

import (
	"strings"
)

// MaxTags caps the number of tags kept per product.
const MaxTags = 6

// Tags derives a bounded set of topical tags from free-text seeds.
// Each seed is lower-cased, split on common separators and conjunctions,
// stripped to alphanumerics and hyphens, de-duplicated, and the result is
// truncated to MaxTags entries. Empty tokens are dropped.
func Tags(seeds []string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0, MaxTags)

	for _, seed := range seeds {
		for _, token := range splitSeed(seed) {
			tag := cleanToken(token)
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
			if len(tags) == MaxTags {
				return tags
			}
		}
	}

	return tags
}

// splitSeed breaks a seed phrase on separators and conjunctions.
func splitSeed(seed string) []string {
	lower := strings.ToLower(seed)

	// Conjunctions become separators before splitting.
	lower = strings.ReplaceAll(lower, "&", " ")
	lower = strings.ReplaceAll(lower, " and ", " ")
	lower = strings.ReplaceAll(lower, " with ", " ")

	return strings.FieldsFunc(lower, func(r rune) bool {
		switch r {
		case ',', '/', '|', ';', ' ', '\t', '\n':
			return true
		}
		return false
	})
}

// cleanToken strips everything but lower-case alphanumerics and hyphens,
// then trims leading/trailing hyphens.
func cleanToken(token string) string {
	var b strings.Builder
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
