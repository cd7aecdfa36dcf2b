package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/stipcheck/internal/model"
)

// Checker runs a compliance check for one document against one stips file
type Checker interface {
	Check(ctx context.Context, documentPath, stipsPath string) (*model.Report, error)
}

// CheckJob represents one document compliance check
type CheckJob struct {
	Document string
	Stips    string
	Checker  Checker
}

// Execute executes the check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	report, err := j.Checker.Check(ctx, j.Document, j.Stips)
	return &CheckResult{
		Document: j.Document,
		Report:   report,
		Error:    err,
	}
}

// CheckResult represents the result of a check job
type CheckResult struct {
	Document string
	Report   *model.Report
	Error    error
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks multiple documents concurrently against a shared
// stips file
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessDocuments checks the given documents concurrently
func (b *BatchProcessor) ProcessDocuments(ctx context.Context, documents []string, stipsPath string) []*CheckResult {
	if len(documents) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, doc := range documents {
		pool.Submit(&CheckJob{
			Document: doc,
			Stips:    stipsPath,
			Checker:  b.checker,
		})
	}

	results := pool.Wait()

	checkResults := make([]*CheckResult, len(results))
	for i, result := range results {
		checkResults[i] = result.(*CheckResult)
	}

	return checkResults
}

// ProcessFile reads document paths from a file and checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath, stipsPath string) ([]*CheckResult, error) {
	documents, err := ReadDocumentsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read document list: %w", err)
	}

	return b.ProcessDocuments(ctx, documents, stipsPath), nil
}

// ReadDocumentsFromFile reads document paths from a file (one per line)
func ReadDocumentsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var documents []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			documents = append(documents, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return documents, nil
}
