package registry

import (
	"regexp"
)

// PatternEntry is a named, pre-compiled scan pattern
type PatternEntry struct {
	Name      string
	Pattern   *regexp.Regexp
	AppliesTo string // Optional category label, empty means document-wide
}

// CategoryRoute maps a stipulation category to its section detection strategy.
// Boundary, when present, must carry three logical capture groups: start
// marker, non-greedy body, end marker. The last capture group is treated as
// the end marker. A route with a nil Boundary and no Keywords always yields
// the full-document fallback.
type CategoryRoute struct {
	Category string
	Keywords []string
	Boundary *regexp.Regexp
}

// Registry is the read-only category route table plus named scan patterns.
// Loaded once at startup, never mutated, safe for concurrent readers.
type Registry struct {
	routes       map[string]CategoryRoute
	patterns     map[string]PatternEntry
	defaultRoute CategoryRoute
}

// Resolve returns the route for a category by exact key. Unmatched categories
// fall back to the default route, whose nil boundary yields the full document.
func (r *Registry) Resolve(category string) CategoryRoute {
	if route, ok := r.routes[category]; ok {
		return route
	}
	return r.defaultRoute
}

// Pattern returns a named scan pattern
func (r *Registry) Pattern(name string) (PatternEntry, bool) {
	entry, ok := r.patterns[name]
	return entry, ok
}

// FindAll returns all non-overlapping matches of a named pattern in text.
// Unknown pattern names return nil.
func (r *Registry) FindAll(name, text string) []string {
	entry, ok := r.patterns[name]
	if !ok {
		return nil
	}
	return entry.Pattern.FindAllString(text, -1)
}

// Categories returns the registered category keys (order unspecified)
func (r *Registry) Categories() []string {
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	return keys
}

// sectionBoundary builds the standard three-group boundary pattern for an
// article title: (start marker)(body)(next section header). Case-insensitive
// with dot-matching-newline so a body spanning many pages is one block; the
// non-greedy body stops at the first following header.
func sectionBoundary(titleFragment string) *regexp.Regexp {
	return regexp.MustCompile(
		`(?is)((?:SECTION|Article)\s+\d+(?:\.\d+)*[\s:.\p{Pd}]*` + titleFragment + `)` +
			`(.*?)` +
			`((?:SECTION|Article)\s+\d+(?:\.\d+)*)`)
}

// Default returns the built-in CLO indenture route table and scan patterns
func Default() *Registry {
	r := &Registry{
		routes:   make(map[string]CategoryRoute),
		patterns: make(map[string]PatternEntry),
	}

	routes := []CategoryRoute{
		{
			Category: "Definitions",
			Keywords: []string{"definitions"},
			Boundary: sectionBoundary(`Definitions`),
		},
		{
			Category: "Covenants",
			Keywords: []string{"covenant", "financial covenants"},
			Boundary: sectionBoundary(`(?:Financial\s+)?Covenants`),
		},
		{
			Category: "Events of Default",
			Keywords: []string{"events of default", "event of default"},
			Boundary: sectionBoundary(`Events?\s+of\s+Default`),
		},
		{
			Category: "Collateral",
			Keywords: []string{"collateral"},
			Boundary: sectionBoundary(`Collateral`),
		},
		{
			Category: "Priority of Payments",
			Keywords: []string{"priority of payments", "payment priority", "waterfall"},
			Boundary: sectionBoundary(`(?:Priority\s+of\s+Payments|Payment\s+Priority)`),
		},
		{
			Category: "Coverage Tests",
			Keywords: []string{"coverage test", "overcollateralization", "interest coverage"},
			Boundary: sectionBoundary(`Coverage\s+Tests?`),
		},
		{
			Category: "Concentration Limitations",
			Keywords: []string{"concentration limit"},
			Boundary: sectionBoundary(`Concentration\s+Limit(?:ation)?s?`),
		},
		{
			// No reliable article header across indentures; keyword scan only
			Category: "Rating Requirements",
			Keywords: []string{"rating requirement", "rating agency condition", "rating condition"},
		},
	}
	for _, route := range routes {
		r.routes[route.Category] = route
	}
	// Legacy alias used by older stips sheets
	r.routes["Concentration Limits"] = r.routes["Concentration Limitations"]

	for name, expr := range map[string]string{
		"section_header":      `(?im)^(?:SECTION|Article)\s+\d+(?:\.\d+)*\s*[\p{Pd}:.]?\s*\S.*$`,
		"covenant_trigger":    `(?i)(?:if|when|in the event that)\s+[^,]+?\s+(?:exceeds?|falls? below|is less than|is greater than)\s+\d+(?:\.\d+)?%?`,
		"percentage":          `(\d+(?:\.\d+)?)\s*%`,
		"dollar_amount":       `\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`,
		"date":                `\b(\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2})\b`,
		"oc_ratio":            `(?i)(?:overcollateralization|o/c)\s+(?:ratio|test)\s*(?:of)?\s*(\d+(?:\.\d+)?%?)`,
		"ic_ratio":            `(?i)(?:interest coverage|i/c)\s+(?:ratio|test)\s*(?:of)?\s*(\d+(?:\.\d+)?%?)`,
		"concentration_limit": `(?i)concentration\s+limit\s*(?:of)?\s*(\d+(?:\.\d+)?%?)`,
		"rating_threshold":    `(?:rated|rating)\s+(?:of\s+)?([A-Z][a-z]*[-+]?)`,
	} {
		r.patterns[name] = PatternEntry{Name: name, Pattern: regexp.MustCompile(expr)}
	}

	return r
}
