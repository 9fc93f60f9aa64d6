package search

import "strings"

// Expander widens a query with the catalog's expansion terms so the keyword
// boost phase catches synonym mentions the raw query would miss.
type Expander struct {
	catalog Catalog
}

// NewExpander creates a keyword expander over the catalog.
func NewExpander(catalog Catalog) *Expander {
	return &Expander{catalog: catalog}
}

// Expand returns the query followed by the expansions of every
// whitespace-separated word that is a known seed. Order is stable and
// duplicates are dropped.
func (e *Expander) Expand(query string) []string {
	expanded := []string{query}
	seen := map[string]bool{query: true}

	for _, word := range strings.Fields(query) {
		for _, term := range e.catalog.Expansions(word) {
			if seen[term] {
				continue
			}
			seen[term] = true
			expanded = append(expanded, term)
		}
	}

	return expanded
}
