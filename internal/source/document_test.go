package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}
	return path
}

func TestTextProvider_PageText_WholeDocument(t *testing.T) {
	path := writeDoc(t, "doc.txt", "page one\fpage two\fpage three")
	provider := TextProvider{}

	text, err := provider.PageText(context.Background(), path, 0, 0)
	if err != nil {
		t.Fatalf("PageText failed: %v", err)
	}
	for _, want := range []string{"page one", "page two", "page three"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected text to contain %q", want)
		}
	}
}

func TestTextProvider_PageText_Range(t *testing.T) {
	path := writeDoc(t, "doc.txt", "page one\fpage two\fpage three")
	provider := TextProvider{}

	text, err := provider.PageText(context.Background(), path, 2, 2)
	if err != nil {
		t.Fatalf("PageText failed: %v", err)
	}
	if text != "page two" {
		t.Errorf("Expected only page two, got %q", text)
	}
}

func TestTextProvider_PageText_ClampsLastPage(t *testing.T) {
	path := writeDoc(t, "doc.txt", "page one\fpage two")
	provider := TextProvider{}

	text, err := provider.PageText(context.Background(), path, 1, 99)
	if err != nil {
		t.Fatalf("Expected out-of-range last page to clamp, got %v", err)
	}
	if !strings.Contains(text, "page two") {
		t.Error("Expected clamped range to include the final page")
	}
}

func TestTextProvider_PageText_FirstPagePastEnd(t *testing.T) {
	path := writeDoc(t, "doc.txt", "only page")
	provider := TextProvider{}

	if _, err := provider.PageText(context.Background(), path, 5, 0); err == nil {
		t.Error("Expected error when first page is past the document end")
	}
}

func TestTextProvider_PageText_InvertedRange(t *testing.T) {
	path := writeDoc(t, "doc.txt", "page one\fpage two\fpage three")
	provider := TextProvider{}

	if _, err := provider.PageText(context.Background(), path, 3, 2); err == nil {
		t.Error("Expected error when first page is after last page")
	}
}

func TestTextProvider_PageText_NoFormFeeds(t *testing.T) {
	path := writeDoc(t, "doc.txt", "single page without breaks")
	provider := TextProvider{}

	text, err := provider.PageText(context.Background(), path, 1, 1)
	if err != nil {
		t.Fatalf("PageText failed: %v", err)
	}
	if text != "single page without breaks" {
		t.Errorf("Expected whole file as one page, got %q", text)
	}
}

func TestTextProvider_PageText_MissingFile(t *testing.T) {
	provider := TextProvider{}
	if _, err := provider.PageText(context.Background(), "/nonexistent/doc.txt", 0, 0); err == nil {
		t.Error("Expected error for missing document")
	}
}

func TestPDFTextProvider_MissingFile(t *testing.T) {
	provider := NewPDFTextProvider("pdftotext", time.Second)
	if _, err := provider.PageText(context.Background(), "/nonexistent/doc.pdf", 0, 0); err == nil {
		t.Error("Expected error for missing PDF")
	}
}

func TestPDFTextProvider_Defaults(t *testing.T) {
	provider := NewPDFTextProvider("", 0)
	if provider.Command != "pdftotext" {
		t.Errorf("Expected default command pdftotext, got %q", provider.Command)
	}
	if provider.Timeout != 2*time.Minute {
		t.Errorf("Expected default timeout 2m, got %v", provider.Timeout)
	}
}

func TestForPath(t *testing.T) {
	if _, ok := ForPath("indenture.PDF", "pdftotext", time.Minute).(*PDFTextProvider); !ok {
		t.Error("Expected PDF provider for .PDF extension")
	}
	if _, ok := ForPath("indenture.txt", "pdftotext", time.Minute).(TextProvider); !ok {
		t.Error("Expected text provider for .txt extension")
	}
}
