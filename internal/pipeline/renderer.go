package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/stipcheck/internal/model"
)

var resultHeader = []string{
	"id", "category", "description", "section", "section_found",
	"status", "evidence_quote", "reasoning", "discrepancy_details", "confidence",
}

// Renderer writes reports to files and the terminal
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// RenderCSV writes one row per result
func (r *Renderer) RenderCSV(report *model.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(resultHeader); err != nil {
		return err
	}
	for _, res := range report.Results {
		if err := w.Write(resultRow(res)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// RenderXLSX writes a Results sheet plus a Summary sheet
func (r *Renderer) RenderXLSX(report *model.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const results = "Results"
	if err := f.SetSheetName("Sheet1", results); err != nil {
		return err
	}
	header := make([]interface{}, len(resultHeader))
	for i, h := range resultHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(results, "A1", &header); err != nil {
		return err
	}
	for i, res := range report.Results {
		row := resultRow(res)
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(results, cell, &cells); err != nil {
			return err
		}
	}

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"document", report.Document},
		{"stips_file", report.StipsFile},
		{"checked_at", report.CheckedAt.Format("2006-01-02 15:04:05 UTC")},
		{"provider", report.Oracle.Provider},
		{"model", report.Oracle.Model},
		{"total", report.Summary.Total},
		{"passed", report.Summary.Passed},
		{"failed", report.Summary.Failed},
		{"unclear", report.Summary.Unclear},
		{"errors", report.Summary.Errors},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summary, cell, &rows[i]); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// RenderSummary prints the run summary box to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	s := report.Summary

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println("  COMPLIANCE CHECK SUMMARY")
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Printf("  Document:     %s\n", report.Document)
	fmt.Printf("  Stipulations: %d\n", s.Total)
	fmt.Println("───────────────────────────────────────────────────────")
	fmt.Printf("  ✅ Passed:    %d\n", s.Passed)
	fmt.Printf("  ❌ Failed:    %d\n", s.Failed)
	fmt.Printf("  ❓ Unclear:   %d\n", s.Unclear)
	if s.Errors > 0 {
		fmt.Printf("  ⚠️  Errors:    %d\n", s.Errors)
	}
	fmt.Println("═══════════════════════════════════════════════════════")

	if s.Failed > 0 {
		fmt.Println()
		fmt.Println("Failed stipulations:")
		for _, res := range report.Results {
			if res.Status != model.StatusFail {
				continue
			}
			fmt.Printf("  • [%s] %s\n", res.ID, res.Description)
			if res.DiscrepancyDetails != "" {
				fmt.Printf("    %s\n", res.DiscrepancyDetails)
			}
		}
	}
	fmt.Println()
}

func resultRow(res model.Result) []string {
	return []string{
		res.ID,
		res.Category,
		res.Description,
		res.Section,
		strconv.FormatBool(res.SectionFound),
		string(res.Status),
		res.EvidenceQuote,
		res.Reasoning,
		res.DiscrepancyDetails,
		strconv.FormatFloat(res.Confidence, 'f', 2, 64),
	}
}
