package model

// Requirement represents a single stipulation to be checked against the document
type Requirement struct {
	ID          string `json:"id"`                // Unique within a run
	Category    string `json:"category"`          // Routing key into the pattern registry
	Description string `json:"description"`       // The compliance rule text
	Section     string `json:"section,omitempty"` // Optional section label from the stips file (display only)
}

// VerdictStatus classifies the adjudication outcome
type VerdictStatus string

const (
	StatusPass      VerdictStatus = "PASS"      // Evidence satisfies the stipulation
	StatusFail      VerdictStatus = "FAIL"      // Evidence violates or lacks the stipulation
	StatusAmbiguous VerdictStatus = "AMBIGUOUS" // Oracle could not decide
	StatusError     VerdictStatus = "ERROR"     // Transport or parse failure, no adjudication happened
)

// Verdict is the structured outcome for one requirement.
// Created exactly once per requirement, immutable after creation.
type Verdict struct {
	RequirementID      string        `json:"requirement_id"`
	Status             VerdictStatus `json:"status"`
	EvidenceQuote      string        `json:"evidence_quote,omitempty"`
	Reasoning          string        `json:"reasoning,omitempty"`
	DiscrepancyDetails string        `json:"discrepancy_details,omitempty"`
	Confidence         float64       `json:"confidence,omitempty"` // Certainty heuristic over reasoning (0-1)
}

// EvidenceSpan is the bounded document text believed relevant to a category
type EvidenceSpan struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	Found    bool   `json:"found"`  // true if the boundary pattern matched, false on fallback
	Length   int    `json:"length"` // Character count of Text
}

// RunSummary is the read-only aggregate over all verdicts of one run.
// Invariant: Total == Passed + Failed + Unclear + Errors.
type RunSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Unclear int `json:"unclear"`
	Errors  int `json:"errors"`
}

// Covenant is a financial covenant extracted from the document
type Covenant struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold,omitempty"`
	Condition string `json:"condition,omitempty"`
}
