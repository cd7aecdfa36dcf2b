package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Provider returns page-indexed plain text for a document
type Provider interface {
	// PageText returns concatenated text for the inclusive 1-indexed page
	// range. firstPage <= 0 means the start, lastPage <= 0 means the end;
	// a lastPage past the document's last page is clamped, not an error.
	// Page ordering is preserved with page breaks as newlines.
	PageText(ctx context.Context, path string, firstPage, lastPage int) (string, error)
}

// TextProvider reads plain-text files. Form feeds are treated as page
// breaks (the layout pdftotext emits); a file without form feeds is one page.
type TextProvider struct{}

// PageText implements Provider for plain-text files
func (TextProvider) PageText(_ context.Context, path string, firstPage, lastPage int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	pages := strings.Split(string(data), "\f")
	if firstPage <= 0 {
		firstPage = 1
	}
	if lastPage <= 0 || lastPage > len(pages) {
		lastPage = len(pages)
	}
	if firstPage > len(pages) {
		return "", fmt.Errorf("first page %d is past the end of the document (%d pages)", firstPage, len(pages))
	}
	if firstPage > lastPage {
		return "", fmt.Errorf("first page %d is after last page %d", firstPage, lastPage)
	}

	return strings.Join(pages[firstPage-1:lastPage], "\n"), nil
}

// PDFTextProvider extracts text from PDFs through an external pdftotext
// binary, keeping byte-level PDF parsing outside the process.
type PDFTextProvider struct {
	Command string
	Timeout time.Duration
}

// NewPDFTextProvider creates a provider around the given extractor binary
func NewPDFTextProvider(command string, timeout time.Duration) *PDFTextProvider {
	if command == "" {
		command = "pdftotext"
	}
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &PDFTextProvider{Command: command, Timeout: timeout}
}

// PageText implements Provider by shelling out with page-range flags.
// pdftotext clamps an out-of-range last page itself.
func (p *PDFTextProvider) PageText(ctx context.Context, path string, firstPage, lastPage int) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat document: %w", err)
	}

	args := []string{"-layout"}
	if firstPage > 0 {
		args = append(args, "-f", strconv.Itoa(firstPage))
	}
	if lastPage > 0 {
		args = append(args, "-l", strconv.Itoa(lastPage))
	}
	args = append(args, path, "-")

	ctxWithTimeout, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctxWithTimeout, p.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %s: %w", p.Command, msg, err)
		}
		return "", fmt.Errorf("%s: %w", p.Command, err)
	}

	return stdout.String(), nil
}

// ForPath picks a provider by file extension
func ForPath(path, pdftotext string, timeout time.Duration) Provider {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewPDFTextProvider(pdftotext, timeout)
	}
	return TextProvider{}
}
