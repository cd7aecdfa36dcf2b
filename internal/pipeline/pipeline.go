package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/stipcheck/internal/adjudicate"
	"github.com/ppiankov/stipcheck/internal/cache"
	"github.com/ppiankov/stipcheck/internal/extract"
	"github.com/ppiankov/stipcheck/internal/llm"
	"github.com/ppiankov/stipcheck/internal/model"
	"github.com/ppiankov/stipcheck/internal/registry"
	"github.com/ppiankov/stipcheck/internal/section"
	"github.com/ppiankov/stipcheck/internal/source"
	"github.com/ppiankov/stipcheck/internal/worker"
)

// Pipeline orchestrates one compliance check: document text, evidence
// routing, per-requirement adjudication, and summary. Requirements are
// processed strictly one at a time; nothing inside a run is parallel.
// Separate runs may share one Pipeline: the registry is read-only and the
// limiter is concurrency-safe.
type Pipeline struct {
	registry    *registry.Registry
	router      *section.Router
	adjudicator *adjudicate.Adjudicator
	extractor   *extract.CovenantExtractor
	renderer    *Renderer
	oracle      model.OracleMeta
	config      *model.Config
}

// NewPipeline creates a pipeline from configuration. An oracle provider is
// required; nothing in a run works without one.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	reg := registry.Default()
	if cfg.RoutesFile != "" {
		custom, err := registry.FromYAML(cfg.RoutesFile)
		if err != nil {
			return nil, fmt.Errorf("load routes: %w", err)
		}
		reg = custom
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize oracle provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("no oracle provider configured (set llm.provider to openai, anthropic, or ollama)")
	}
	completer := llm.NewCompleter(provider, cfg.LLM.Model, cfg.LLM.MaxTokens)

	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			responseCache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			responseCache = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
	}

	var limiter adjudicate.Limiter
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}

	return &Pipeline{
		registry:    reg,
		router:      section.NewRouter(reg),
		adjudicator: adjudicate.NewAdjudicator(completer, responseCache, limiter, cfg.LLM.Model, cfg.Cache.TTL),
		extractor:   extract.NewCovenantExtractor(completer, reg),
		renderer:    NewRenderer(),
		oracle:      model.OracleMeta{Provider: provider.Name(), Model: cfg.LLM.Model},
		config:      cfg,
	}, nil
}

// Check runs the complete compliance workflow for one document. Only an
// unreadable document or an unusable stips file is fatal; everything after
// that degrades per requirement and partial results are always produced.
func (p *Pipeline) Check(ctx context.Context, documentPath, stipsPath string) (*model.Report, error) {
	verbose := p.config.Output.Verbose

	// 1. Load stipulations
	requirements, warnings, err := source.LoadStips(stipsPath)
	if err != nil {
		return nil, fmt.Errorf("load stips: %w", err)
	}
	if len(requirements) == 0 {
		return nil, fmt.Errorf("no usable stipulations in %s", stipsPath)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded %d stipulations\n", len(requirements))
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	// 2. Extract document text
	provider := source.ForPath(documentPath, p.config.Document.PDFToText, p.config.Document.ExtractTimeout)
	documentText, err := provider.PageText(ctx, documentPath, p.config.Document.FirstPage, p.config.Document.LastPage)
	if err != nil {
		return nil, fmt.Errorf("extract document text: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d characters of document text\n", len(documentText))
	}

	// 3. Route evidence spans for every requested category
	spans, routeWarnings := p.router.RouteAll(documentText, categoriesOf(requirements))
	warnings = append(warnings, routeWarnings...)
	for _, w := range routeWarnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	// 4. Adjudicate each requirement in order
	results := make([]model.Result, 0, len(requirements))
	verdicts := make([]model.Verdict, 0, len(requirements))
	for i, req := range requirements {
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Checking stipulation %d/%d: %s\n", i+1, len(requirements), truncateLabel(req.Description, 50))
		}

		span := spans[req.Category]
		verdict := p.adjudicator.Adjudicate(ctx, req, span)
		verdicts = append(verdicts, verdict)
		results = append(results, model.NewResult(req, span, verdict))
	}

	// 5. Summarize
	return &model.Report{
		Document:  documentPath,
		StipsFile: stipsPath,
		CheckedAt: time.Now().UTC(),
		Oracle:    p.oracle,
		Results:   results,
		Summary:   adjudicate.Summarize(verdicts),
		Warnings:  warnings,
	}, nil
}

// ExtractCovenants pulls financial covenants out of a document
func (p *Pipeline) ExtractCovenants(ctx context.Context, documentPath string) (*extract.Extraction, error) {
	provider := source.ForPath(documentPath, p.config.Document.PDFToText, p.config.Document.ExtractTimeout)
	documentText, err := provider.PageText(ctx, documentPath, p.config.Document.FirstPage, p.config.Document.LastPage)
	if err != nil {
		return nil, fmt.Errorf("extract document text: %w", err)
	}

	return p.extractor.Extract(ctx, documentText)
}

// RenderReport renders the report to the requested outputs and prints the
// run summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, csvPath, xlsxPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if csvPath != "" {
		if err := p.renderer.RenderCSV(report, csvPath); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote CSV: %s\n", csvPath)
		}
	}

	if xlsxPath != "" {
		if err := p.renderer.RenderXLSX(report, xlsxPath); err != nil {
			return fmt.Errorf("render XLSX: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote XLSX: %s\n", xlsxPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}

// categoriesOf returns the unique categories in input order
func categoriesOf(requirements []model.Requirement) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, req := range requirements {
		if !seen[req.Category] {
			seen[req.Category] = true
			categories = append(categories, req.Category)
		}
	}
	return categories
}

func truncateLabel(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
