package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/stipcheck/internal/model"
	"github.com/ppiankov/stipcheck/internal/pipeline"
)

var (
	stipsFile   string
	routesFile  string
	outJSON     string
	outCSV      string
	outXLSX     string
	firstPage   int
	lastPage    int
	pdfToText   string
	timeout     time.Duration
	noCache     bool
	cacheDir    string
	httpProxy   string
	httpsProxy  string
	llmProvider string
	llmModel    string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <document>",
	Short: "Check stipulations against a single indenture document",
	Long: `Check runs the full compliance workflow on one document:
- Load stipulations from a CSV or XLSX stips file
- Extract the document text (pdftotext for PDFs, raw read otherwise)
- Route each stipulation category to its indenture section
- Adjudicate each stipulation with the LLM under the strict verdict protocol
- Generate JSON/CSV/XLSX reports and a terminal summary

Example:
  stipcheck check indenture.pdf --stips stips.xlsx
  stipcheck check indenture.pdf --stips stips.csv --json report.json --xlsx report.xlsx
  stipcheck check indenture.txt --stips stips.csv --llm-provider ollama --llm-model llama3`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&stipsFile, "stips", "", "stipulations file (CSV or XLSX, required)")
	_ = checkCmd.MarkFlagRequired("stips")
	checkCmd.Flags().StringVar(&routesFile, "routes", "", "custom category routes YAML (overrides built-in routes)")

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	checkCmd.Flags().StringVar(&outCSV, "csv", "", "output CSV path (optional)")
	checkCmd.Flags().StringVar(&outXLSX, "xlsx", "", "output XLSX path (optional)")

	// Document flags
	checkCmd.Flags().IntVar(&firstPage, "first-page", 0, "first document page to read (0 = from start)")
	checkCmd.Flags().IntVar(&lastPage, "last-page", 0, "last document page to read (0 = to end)")
	checkCmd.Flags().StringVar(&pdfToText, "pdftotext", "pdftotext", "pdftotext binary for PDF extraction")

	// LLM flags
	checkCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "overall check timeout (increase for long stips files)")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the oracle response cache")
	checkCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "persist cached oracle responses to this directory")
	checkCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	checkCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default: provider default)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	document := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", document)
		fmt.Fprintf(os.Stderr, "Stips: %s\n", stipsFile)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	report, err := p.Check(ctx, document, stipsFile)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outCSV, outXLSX, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if report.Summary.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

// buildConfig assembles a Config from defaults and shared flags
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Document.FirstPage = firstPage
	cfg.Document.LastPage = lastPage
	cfg.Document.PDFToText = pdfToText
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.Output.Verbose = verbose
	cfg.RoutesFile = routesFile

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.LLM.HTTPProxy = httpProxy
	cfg.LLM.HTTPSProxy = httpsProxy

	// API keys come from the environment
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}
