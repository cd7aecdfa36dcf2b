package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/stipcheck/internal/pipeline"
)

var covenantsJSON string

// covenantsCmd represents the covenants command
var covenantsCmd = &cobra.Command{
	Use:   "covenants <document>",
	Short: "Extract financial covenants from an indenture document",
	Long: `Covenants locates the covenants section of an indenture and asks the
LLM to list the financial covenants it defines (OC/IC tests, interest
coverage, reinvestment conditions). Numeric thresholds found by pattern
scan are reported alongside.

Example:
  stipcheck covenants indenture.pdf
  stipcheck covenants indenture.pdf --json covenants.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCovenants,
}

func init() {
	rootCmd.AddCommand(covenantsCmd)

	covenantsCmd.Flags().StringVar(&covenantsJSON, "json", "", "output JSON path (optional)")
	covenantsCmd.Flags().IntVar(&firstPage, "first-page", 0, "first document page to read (0 = from start)")
	covenantsCmd.Flags().IntVar(&lastPage, "last-page", 0, "last document page to read (0 = to end)")
	covenantsCmd.Flags().StringVar(&pdfToText, "pdftotext", "pdftotext", "pdftotext binary for PDF extraction")
	covenantsCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "extraction timeout")
	covenantsCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	covenantsCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (default: provider default)")
}

func runCovenants(cmd *cobra.Command, args []string) error {
	document := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	extraction, err := p.ExtractCovenants(ctx, document)
	if err != nil {
		return fmt.Errorf("extract covenants: %w", err)
	}

	if covenantsJSON != "" {
		data, err := json.MarshalIndent(extraction, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal covenants: %w", err)
		}
		if err := os.WriteFile(covenantsJSON, data, 0o644); err != nil {
			return fmt.Errorf("write covenants: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", covenantsJSON)
		}
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Printf("  COVENANTS: %s\n", document)
	fmt.Println("═══════════════════════════════════════════════════════")
	if len(extraction.Covenants) == 0 {
		fmt.Println("  No covenants identified")
	}
	for _, c := range extraction.Covenants {
		fmt.Printf("  • %s", c.Name)
		if c.Threshold != "" {
			fmt.Printf(" (%s)", c.Threshold)
		}
		fmt.Println()
		if c.Condition != "" {
			fmt.Printf("    %s\n", c.Condition)
		}
	}
	if len(extraction.Thresholds) > 0 {
		fmt.Println("───────────────────────────────────────────────────────")
		fmt.Println("  Numeric thresholds found in section text:")
		for _, t := range extraction.Thresholds {
			fmt.Printf("  • %s\n", t)
		}
	}
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println()

	return nil
}
