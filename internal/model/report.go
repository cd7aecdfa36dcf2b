package model

import "time"

// Report represents the complete compliance check report for one document
type Report struct {
	Document  string    `json:"document"`             // Path or identifier of the checked document
	StipsFile string    `json:"stips_file,omitempty"` // Stipulation list the run consumed
	CheckedAt time.Time `json:"checked_at"`           // When the run occurred

	Oracle OracleMeta `json:"oracle"` // Which reasoning service adjudicated

	Results  []Result   `json:"results"` // One row per requirement, in input order
	Summary  RunSummary `json:"summary"`
	Warnings []string   `json:"warnings,omitempty"` // Non-fatal issues (missing sections, skipped rows)
}

// OracleMeta identifies the reasoning service used for a run
type OracleMeta struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// Result is one report row: the requirement, where its evidence came from,
// and the verdict the oracle returned.
type Result struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Section     string `json:"section,omitempty"`

	SectionFound bool `json:"section_found"` // Whether a bounded span was located
	SpanLength   int  `json:"span_length"`   // Characters of evidence handed to the oracle (pre-truncation)

	Status             VerdictStatus `json:"status"`
	EvidenceQuote      string        `json:"evidence_quote,omitempty"`
	Reasoning          string        `json:"reasoning,omitempty"`
	DiscrepancyDetails string        `json:"discrepancy_details,omitempty"`
	Confidence         float64       `json:"confidence,omitempty"`
}

// NewResult assembles a report row from a requirement, its evidence span and verdict
func NewResult(req Requirement, span EvidenceSpan, v Verdict) Result {
	return Result{
		ID:                 req.ID,
		Category:           req.Category,
		Description:        req.Description,
		Section:            req.Section,
		SectionFound:       span.Found,
		SpanLength:         span.Length,
		Status:             v.Status,
		EvidenceQuote:      v.EvidenceQuote,
		Reasoning:          v.Reasoning,
		DiscrepancyDetails: v.DiscrepancyDetails,
		Confidence:         v.Confidence,
	}
}
