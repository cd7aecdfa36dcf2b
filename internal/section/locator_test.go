package section

import (
	"regexp"
	"strings"
	"testing"

	"github.com/ppiankov/stipcheck/internal/registry"
)

const sampleIndenture = `SECTION 7.2 Limitation on Indebtedness
The Issuer shall not incur additional indebtedness.
SECTION 7.3 Concentration Limitations
No more than 7.5% of the Collateral Principal Amount may consist
of obligations of a single obligor, provided that up to 10% may
be invested in Senior Secured Loans rated at least B3.
SECTION 7.4 Coverage Tests
The Overcollateralization Ratio shall not be less than 120%.
SECTION 7.5 Miscellaneous
Reserved.`

func boundaryFor(expr string) registry.CategoryRoute {
	return registry.CategoryRoute{
		Category: "Concentration Limitations",
		Boundary: regexp.MustCompile(expr),
	}
}

func TestLocator_Locate_BoundedSpan(t *testing.T) {
	locator := NewLocator()
	route := boundaryFor(`(?is)(SECTION\s+7\.3[^\n]*)(.*?)(SECTION\s+7\.4)`)

	span := locator.Locate(sampleIndenture, route)
	if !span.Found {
		t.Fatal("Expected span to be found")
	}
	if !strings.HasPrefix(span.Text, "SECTION 7.3") {
		t.Errorf("Expected span to start at the section header, got %q", span.Text[:30])
	}
	if strings.Contains(span.Text, "SECTION 7.4") {
		t.Error("Expected span to end before the next section header")
	}
	if !strings.Contains(span.Text, "7.5%") {
		t.Error("Expected span to contain the section body")
	}
	if span.Length != len(span.Text) {
		t.Errorf("Expected length %d, got %d", len(span.Text), span.Length)
	}
}

func TestLocator_Locate_NilBoundaryFallsBack(t *testing.T) {
	locator := NewLocator()
	route := registry.CategoryRoute{Category: "Unknown"}

	span := locator.Locate(sampleIndenture, route)
	if span.Found {
		t.Error("Expected Found=false for nil boundary")
	}
	if span.Text != sampleIndenture {
		t.Error("Expected full document fallback")
	}
}

func TestLocator_Locate_MissFallsBack(t *testing.T) {
	locator := NewLocator()
	route := boundaryFor(`(?is)(SECTION\s+99\.9[^\n]*)(.*?)(SECTION\s+100)`)

	span := locator.Locate(sampleIndenture, route)
	if span.Found {
		t.Error("Expected Found=false on boundary miss")
	}
	if span.Text != sampleIndenture {
		t.Error("Expected full document fallback on miss")
	}
}

func TestLocator_Locate_EmptyDocument(t *testing.T) {
	locator := NewLocator()
	route := boundaryFor(`(?is)(SECTION\s+7\.3[^\n]*)(.*?)(SECTION\s+7\.4)`)

	span := locator.Locate("", route)
	if span.Found {
		t.Error("Expected Found=false for empty document")
	}
	if span.Text != "" || span.Length != 0 {
		t.Errorf("Expected empty span, got %d chars", span.Length)
	}
}

func TestLocator_Locate_Deterministic(t *testing.T) {
	locator := NewLocator()
	route := boundaryFor(`(?is)(SECTION\s+7\.3[^\n]*)(.*?)(SECTION\s+7\.4)`)

	first := locator.Locate(sampleIndenture, route)
	second := locator.Locate(sampleIndenture, route)
	if first != second {
		t.Error("Expected identical spans on repeated calls")
	}
}

func TestLocator_Locate_FirstMatchWins(t *testing.T) {
	locator := NewLocator()
	doc := sampleIndenture + "\n" + sampleIndenture
	route := boundaryFor(`(?is)(SECTION\s+7\.3[^\n]*)(.*?)(SECTION\s+7\.4)`)

	span := locator.Locate(doc, route)
	if !span.Found {
		t.Fatal("Expected span to be found")
	}
	if strings.Count(span.Text, "SECTION 7.3") != 1 {
		t.Error("Expected only the first occurrence to be extracted")
	}
}

func TestLocator_LocateKeywords_StopsAtNextHeader(t *testing.T) {
	locator := NewLocator()
	route := registry.CategoryRoute{
		Category: "Coverage Tests",
		Keywords: []string{"coverage tests"},
	}

	span := locator.LocateKeywords(sampleIndenture, route)
	if !span.Found {
		t.Fatal("Expected keyword hit")
	}
	if !strings.Contains(span.Text, "Overcollateralization") {
		t.Error("Expected body after the keyword line")
	}
	if strings.Contains(span.Text, "SECTION 7.5") {
		t.Error("Expected extraction to stop at the next section header")
	}
}

func TestLocator_LocateKeywords_CaseInsensitive(t *testing.T) {
	locator := NewLocator()
	route := registry.CategoryRoute{
		Category: "Coverage Tests",
		Keywords: []string{"COVERAGE TESTS"},
	}

	span := locator.LocateKeywords(sampleIndenture, route)
	if !span.Found {
		t.Error("Expected case-insensitive keyword match")
	}
}

func TestLocator_LocateKeywords_LineBudget(t *testing.T) {
	locator := NewLocator()

	var b strings.Builder
	b.WriteString("rating requirement applies below\n")
	for i := 0; i < 300; i++ {
		b.WriteString("filler line with no header\n")
	}
	route := registry.CategoryRoute{
		Category: "Rating Requirements",
		Keywords: []string{"rating requirement"},
	}

	span := locator.LocateKeywords(b.String(), route)
	if !span.Found {
		t.Fatal("Expected keyword hit")
	}
	lines := strings.Count(span.Text, "\n") + 1
	if lines > maxSectionLines {
		t.Errorf("Expected at most %d lines, got %d", maxSectionLines, lines)
	}
}

func TestLocator_LocateKeywords_MissFallsBack(t *testing.T) {
	locator := NewLocator()
	route := registry.CategoryRoute{
		Category: "Rating Requirements",
		Keywords: []string{"rating agency condition"},
	}

	span := locator.LocateKeywords(sampleIndenture, route)
	if span.Found {
		t.Error("Expected Found=false when no keyword matches")
	}
	if span.Text != sampleIndenture {
		t.Error("Expected full document fallback")
	}
}

func TestLocator_LocateKeywords_NoKeywords(t *testing.T) {
	locator := NewLocator()
	route := registry.CategoryRoute{Category: "Empty"}

	span := locator.LocateKeywords(sampleIndenture, route)
	if span.Found {
		t.Error("Expected Found=false for a route without keywords")
	}
}
