package section

import (
	"fmt"

	"github.com/ppiankov/stipcheck/internal/model"
	"github.com/ppiankov/stipcheck/internal/registry"
)

// Router resolves categories to routes and locates their evidence spans.
// The registry is read-only, so a single Router is safe for concurrent runs.
type Router struct {
	registry *registry.Registry
	locator  *Locator
}

// NewRouter creates a router over the given registry
func NewRouter(reg *registry.Registry) *Router {
	return &Router{
		registry: reg,
		locator:  NewLocator(),
	}
}

// RouteAll locates an evidence span for every requested category. Routes with
// a boundary pattern use regex matching, keyword-only routes use the line
// scan mode, and everything else falls back to the full document. Misses are
// returned as warnings, never errors; a requirement whose section cannot be
// found still gets full-document evidence.
func (r *Router) RouteAll(documentText string, categories []string) (map[string]model.EvidenceSpan, []string) {
	spans := make(map[string]model.EvidenceSpan, len(categories))
	var warnings []string

	for _, category := range categories {
		if _, done := spans[category]; done {
			continue
		}

		route := r.registry.Resolve(category)
		var span model.EvidenceSpan
		switch {
		case route.Boundary != nil:
			span = r.locator.Locate(documentText, route)
			if !span.Found && len(route.Keywords) > 0 {
				span = r.locator.LocateKeywords(documentText, route)
			}
		case len(route.Keywords) > 0:
			span = r.locator.LocateKeywords(documentText, route)
		default:
			span = fallbackSpan(route.Category, documentText)
		}

		// Spans are keyed by the requested category: the resolved route may
		// be the default route with an empty category label.
		span.Category = category
		if !span.Found {
			warnings = append(warnings, fmt.Sprintf("section not found for category %q, using full document", category))
		}
		spans[category] = span
	}

	return spans, warnings
}
