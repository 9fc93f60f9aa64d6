// Package keyword holds the curated vocabulary that drives query expansion
// and theme conflict detection. The catalog is mutable at runtime through the
// admin API, so all access goes through an RWMutex.
package keyword

import "sync"

// Catalog holds two independent tables: seed term -> expansion terms (used to
// widen queries) and theme -> characteristic terms (used to detect content
// that belongs to a different theme than the query).
type Catalog struct {
	mu         sync.RWMutex
	expansions map[string][]string
	seedOrder  []string
	themes     map[string][]string
	themeOrder []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		expansions: make(map[string][]string),
		themes:     make(map[string][]string),
	}
}

// NewWithDefaults creates a catalog preloaded with the built-in vocabulary.
func NewWithDefaults() *Catalog {
	c := New()
	for _, seed := range defaultSeedOrder {
		c.SetExpansions(seed, defaultExpansions[seed])
	}
	for _, theme := range defaultThemeOrder {
		c.SetThemeTerms(theme, defaultThemeTerms[theme])
	}
	return c
}

// SetExpansions registers or overwrites the expansion list for a seed term.
// An existing seed keeps its position in iteration order.
func (c *Catalog) SetExpansions(seed string, terms []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.expansions[seed]; !ok {
		c.seedOrder = append(c.seedOrder, seed)
	}
	c.expansions[seed] = cloneTerms(terms)
}

// RemoveExpansions deletes a seed term. Removing an unknown seed is a no-op.
func (c *Catalog) RemoveExpansions(seed string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.expansions[seed]; !ok {
		return
	}
	delete(c.expansions, seed)
	c.seedOrder = removeTerm(c.seedOrder, seed)
}

// Expansions returns a copy of the expansion list for a seed, or nil.
func (c *Catalog) Expansions(seed string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTerms(c.expansions[seed])
}

// Seeds returns all seed terms in insertion order.
func (c *Catalog) Seeds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTerms(c.seedOrder)
}

// SetThemeTerms registers or overwrites the term list for a theme.
// An existing theme keeps its position in iteration order.
func (c *Catalog) SetThemeTerms(theme string, terms []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.themes[theme]; !ok {
		c.themeOrder = append(c.themeOrder, theme)
	}
	c.themes[theme] = cloneTerms(terms)
}

// RemoveThemeTerms deletes a theme. Removing an unknown theme is a no-op.
func (c *Catalog) RemoveThemeTerms(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.themes[theme]; !ok {
		return
	}
	delete(c.themes, theme)
	c.themeOrder = removeTerm(c.themeOrder, theme)
}

// ThemeTerms returns a copy of the term list for a theme, or nil.
func (c *Catalog) ThemeTerms(theme string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTerms(c.themes[theme])
}

// Themes returns all themes in insertion order.
func (c *Catalog) Themes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTerms(c.themeOrder)
}

// IsTheme reports whether the term is a registered theme.
func (c *Catalog) IsTheme(term string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.themes[term]
	return ok
}

// Snapshot returns deep copies of both tables for the admin listing.
func (c *Catalog) Snapshot() (expansions, themes map[string][]string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	expansions = make(map[string][]string, len(c.expansions))
	for seed, terms := range c.expansions {
		expansions[seed] = cloneTerms(terms)
	}
	themes = make(map[string][]string, len(c.themes))
	for theme, terms := range c.themes {
		themes[theme] = cloneTerms(terms)
	}
	return expansions, themes
}

func cloneTerms(terms []string) []string {
	if terms == nil {
		return nil
	}
	c := make([]string, len(terms))
	copy(c, terms)
	return c
}

func removeTerm(terms []string, term string) []string {
	out := terms[:0]
	for _, t := range terms {
		if t != term {
			out = append(out, t)
		}
	}
	return out
}
