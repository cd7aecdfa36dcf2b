package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/stipcheck/internal/adjudicate"
	"github.com/ppiankov/stipcheck/internal/model"
	"github.com/ppiankov/stipcheck/internal/registry"
	"github.com/ppiankov/stipcheck/internal/section"
)

// covenantSystemPrompt asks for a bare JSON array so parsing stays strict
const covenantSystemPrompt = `You extract financial covenants from CLO indenture text. Return a JSON array and nothing else. Each element must have exactly these fields:
{"name": "<covenant name>", "threshold": "<numeric threshold with unit, or empty>", "condition": "<trigger condition, or empty>"}
Return [] if the text contains no covenants.`

// Oracle is the reasoning-service contract for extraction
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Extraction is the result of one covenant extraction pass
type Extraction struct {
	Covenants []model.Covenant `json:"covenants"`

	// Thresholds are the raw numeric-limit strings the scan patterns found
	// in the covenant section, useful for eyeballing oracle misses
	Thresholds []string `json:"thresholds,omitempty"`
}

// CovenantExtractor locates the covenant section and asks the oracle for a
// structured covenant list
type CovenantExtractor struct {
	oracle   Oracle
	registry *registry.Registry
	locator  *section.Locator
}

// NewCovenantExtractor creates a covenant extractor
func NewCovenantExtractor(oracle Oracle, reg *registry.Registry) *CovenantExtractor {
	return &CovenantExtractor{
		oracle:   oracle,
		registry: reg,
		locator:  section.NewLocator(),
	}
}

// Extract pulls financial covenants out of the document text
func (e *CovenantExtractor) Extract(ctx context.Context, documentText string) (*Extraction, error) {
	route := e.registry.Resolve("Covenants")

	span := e.locator.Locate(documentText, route)
	if !span.Found {
		span = e.locator.LocateKeywords(documentText, route)
	}

	evidence := adjudicate.TruncateEvidence(span.Text)
	user := fmt.Sprintf("Extract all financial covenants and their thresholds from the following indenture text:\n\n%s\n", evidence)

	raw, err := e.oracle.Complete(ctx, covenantSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("oracle call failed: %w", err)
	}

	covenants, err := parseCovenants(raw)
	if err != nil {
		return nil, err
	}

	return &Extraction{
		Covenants:  covenants,
		Thresholds: e.scanThresholds(span.Text),
	}, nil
}

// scanThresholds collects numeric-limit matches from the named scan patterns
func (e *CovenantExtractor) scanThresholds(text string) []string {
	var hits []string
	for _, name := range []string{"oc_ratio", "ic_ratio", "concentration_limit", "percentage"} {
		hits = append(hits, e.registry.FindAll(name, text)...)
	}
	return dedupe(hits)
}

// parseCovenants parses the oracle's JSON array, tolerating a fenced wrapper
// or a {"covenants": [...]} envelope
func parseCovenants(raw string) ([]model.Covenant, error) {
	cleaned := adjudicate.StripFences(raw)

	var covenants []model.Covenant
	if err := json.Unmarshal([]byte(cleaned), &covenants); err == nil {
		return covenants, nil
	}

	var wrapped struct {
		Covenants []model.Covenant `json:"covenants"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		return nil, fmt.Errorf("malformed covenant response: %w", err)
	}
	return wrapped.Covenants, nil
}

func dedupe(items []string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, item)
	}
	return unique
}
