package section

import (
	"strings"
	"testing"

	"github.com/ppiankov/stipcheck/internal/registry"
)

const routerIndenture = `SECTION 5.1 Events of Default
Failure to pay interest when due shall constitute an Event of Default.
SECTION 5.2 Remedies
Reserved.
The rating requirement for Class A Notes is Aaa by Moody's.
SECTION 6.1 Miscellaneous
Reserved.`

func TestRouter_RouteAll_BoundaryRoute(t *testing.T) {
	router := NewRouter(registry.Default())

	spans, warnings := router.RouteAll(routerIndenture, []string{"Events of Default"})
	span, ok := spans["Events of Default"]
	if !ok {
		t.Fatal("Expected span for requested category")
	}
	if !span.Found {
		t.Error("Expected section to be located")
	}
	if !strings.Contains(span.Text, "Failure to pay interest") {
		t.Error("Expected span to contain the section body")
	}
	if strings.Contains(span.Text, "SECTION 5.2") {
		t.Error("Expected span to stop before the next section")
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
}

func TestRouter_RouteAll_KeywordOnlyRoute(t *testing.T) {
	router := NewRouter(registry.Default())

	spans, _ := router.RouteAll(routerIndenture, []string{"Rating Requirements"})
	span := spans["Rating Requirements"]
	if !span.Found {
		t.Error("Expected keyword scan to find the rating requirement line")
	}
	if !strings.Contains(span.Text, "Aaa") {
		t.Error("Expected span to contain the rating text")
	}
}

func TestRouter_RouteAll_UnknownCategoryWarns(t *testing.T) {
	router := NewRouter(registry.Default())

	spans, warnings := router.RouteAll(routerIndenture, []string{"Voting Rights"})
	span := spans["Voting Rights"]
	if span.Found {
		t.Error("Expected Found=false for unknown category")
	}
	if span.Text != routerIndenture {
		t.Error("Expected full document fallback for unknown category")
	}
	if span.Category != "Voting Rights" {
		t.Errorf("Expected span keyed by requested category, got %q", span.Category)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Voting Rights") {
		t.Errorf("Expected one warning naming the category, got %v", warnings)
	}
}

func TestRouter_RouteAll_BoundaryMissRetriesKeywords(t *testing.T) {
	router := NewRouter(registry.Default())

	// No article header for Coverage Tests, but the keyword appears in text
	doc := "The coverage test thresholds are set out in the schedule.\nOvercollateralization Ratio: 120%."
	spans, _ := router.RouteAll(doc, []string{"Coverage Tests"})
	span := spans["Coverage Tests"]
	if !span.Found {
		t.Error("Expected keyword retry after boundary miss")
	}
}

func TestRouter_RouteAll_DuplicateCategories(t *testing.T) {
	router := NewRouter(registry.Default())

	spans, warnings := router.RouteAll(routerIndenture, []string{"Voting Rights", "Voting Rights"})
	if len(spans) != 1 {
		t.Errorf("Expected one span for duplicate categories, got %d", len(spans))
	}
	if len(warnings) != 1 {
		t.Errorf("Expected one warning for duplicate categories, got %d", len(warnings))
	}
}
