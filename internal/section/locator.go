package section

import (
	"regexp"
	"strings"

	"github.com/ppiankov/stipcheck/internal/model"
	"github.com/ppiankov/stipcheck/internal/registry"
)

// maxSectionLines caps forward extraction in keyword mode. Legal documents
// format section headers inconsistently, so the budget bounds worst-case scan
// cost when no terminating header is found.
const maxSectionLines = 100

// genericHeader recognizes a line that starts a new article or section
var genericHeader = regexp.MustCompile(`(?i)^(?:SECTION|Article)\s+\d+(?:\.\d+)*\b`)

// Locator finds bounded evidence spans in document text.
//
// Boundary detection is best-effort: regexes cannot parse inconsistent legal
// formatting with certainty, so every miss degrades to a well-defined
// full-document fallback rather than withholding evidence.
type Locator struct{}

// NewLocator creates a new locator
func NewLocator() *Locator {
	return &Locator{}
}

// Locate matches the route's boundary pattern against the full document.
// The span runs from the start marker up to, not including, the end marker,
// so the oracle never sees the next article's header. The non-greedy body
// means the first occurrence of the end marker terminates the span; when a
// section appears more than once only the first match is used. A nil boundary
// or a miss returns the full document with Found=false.
func (l *Locator) Locate(documentText string, route registry.CategoryRoute) model.EvidenceSpan {
	if route.Boundary == nil {
		return fallbackSpan(route.Category, documentText)
	}

	m := route.Boundary.FindStringSubmatchIndex(documentText)
	if m == nil {
		return fallbackSpan(route.Category, documentText)
	}

	end := m[1]
	// The last capture group is the end marker; stop where it begins.
	if n := route.Boundary.NumSubexp(); n >= 3 && m[2*n] >= 0 {
		end = m[2*n]
	}

	text := documentText[m[0]:end]
	return model.EvidenceSpan{
		Category: route.Category,
		Text:     text,
		Found:    true,
		Length:   len(text),
	}
}

// LocateKeywords is the lower-fidelity mode for routes that only carry
// keyword hints. It scans line by line for a case-insensitive substring match
// of any keyword, then extracts forward until another section header or the
// line budget, whichever comes first.
func (l *Locator) LocateKeywords(documentText string, route registry.CategoryRoute) model.EvidenceSpan {
	if len(route.Keywords) == 0 {
		return fallbackSpan(route.Category, documentText)
	}

	lines := strings.Split(documentText, "\n")
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, kw := range route.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				return extractForward(route.Category, lines, i)
			}
		}
	}

	return fallbackSpan(route.Category, documentText)
}

// extractForward collects lines from the keyword hit until the next generic
// section header or the line budget
func extractForward(category string, lines []string, start int) model.EvidenceSpan {
	collected := []string{lines[start]}
	for j := start + 1; j < len(lines) && len(collected) < maxSectionLines; j++ {
		if genericHeader.MatchString(strings.TrimSpace(lines[j])) {
			break
		}
		collected = append(collected, lines[j])
	}

	text := strings.Join(collected, "\n")
	return model.EvidenceSpan{
		Category: category,
		Text:     text,
		Found:    true,
		Length:   len(text),
	}
}

// fallbackSpan returns the whole document so evidence is never withheld on a
// search miss
func fallbackSpan(category, documentText string) model.EvidenceSpan {
	return model.EvidenceSpan{
		Category: category,
		Text:     documentText,
		Found:    false,
		Length:   len(documentText),
	}
}
