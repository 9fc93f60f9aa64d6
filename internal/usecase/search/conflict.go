package search

import (
	"strings"

	domsearch "github.com/sydlabs/noteseek/internal/domain/search"
)

// ConflictDetector flags content whose theme differs from the query's theme.
// A query about buyer shops should not surface coffee-shop notes just because
// both mention the same suburb.
type ConflictDetector struct {
	catalog Catalog
}

// NewConflictDetector creates a theme conflict detector over the catalog.
func NewConflictDetector(catalog Catalog) *ConflictDetector {
	return &ConflictDetector{catalog: catalog}
}

// Detect determines the query's theme (first significant token that is a
// registered theme) and collects every other theme whose terms appear in the
// content. No query theme means no conflict.
func (d *ConflictDetector) Detect(query, content string) domsearch.ConflictReport {
	var queryTheme string
	for _, token := range significantTokens(strings.ToLower(query)) {
		if d.catalog.IsTheme(token) {
			queryTheme = token
			break
		}
	}
	if queryTheme == "" {
		return domsearch.ConflictReport{}
	}

	contentLower := strings.ToLower(content)
	var conflicting []string
	for _, theme := range d.catalog.Themes() {
		if theme == queryTheme {
			continue
		}
		for _, term := range d.catalog.ThemeTerms(theme) {
			if strings.Contains(contentLower, strings.ToLower(term)) {
				conflicting = append(conflicting, theme)
				break
			}
		}
	}

	return domsearch.ConflictReport{
		HasConflict:       len(conflicting) > 0,
		QueryTheme:        queryTheme,
		ConflictingThemes: conflicting,
	}
}
