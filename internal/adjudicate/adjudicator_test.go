package adjudicate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/stipcheck/internal/cache"
	"github.com/ppiankov/stipcheck/internal/model"
)

// stubOracle returns a canned response or error and counts calls
type stubOracle struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) Complete(_ context.Context, _, user string) (string, error) {
	s.calls++
	s.lastUser = user
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

var testReq = model.Requirement{
	ID:          "STIP-001",
	Category:    "Concentration Limitations",
	Description: "Single obligor exposure must not exceed 5%",
	Section:     "7.3",
}

var testSpan = model.EvidenceSpan{
	Category: "Concentration Limitations",
	Text:     "No more than 5% of the Collateral Principal Amount may consist of obligations of a single obligor.",
	Found:    true,
	Length:   99,
}

func TestAdjudicator_Adjudicate_Pass(t *testing.T) {
	oracle := &stubOracle{response: `{"status": "PASS", "evidence_quote": "No more than 5%", "reasoning": "The document explicitly states the 5% limit.", "discrepancy_details": ""}`}
	a := NewAdjudicator(oracle, nil, nil, "test-model", time.Hour)

	v := a.Adjudicate(context.Background(), testReq, testSpan)
	if v.Status != model.StatusPass {
		t.Errorf("Expected PASS, got %s", v.Status)
	}
	if v.RequirementID != "STIP-001" {
		t.Errorf("Expected requirement ID STIP-001, got %q", v.RequirementID)
	}
	if v.EvidenceQuote != "No more than 5%" {
		t.Errorf("Unexpected evidence quote: %q", v.EvidenceQuote)
	}
	if v.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0 for certain reasoning, got %v", v.Confidence)
	}
}

func TestAdjudicator_Adjudicate_Fail(t *testing.T) {
	oracle := &stubOracle{response: `{"status": "FAIL", "evidence_quote": "up to 7.5%", "reasoning": "The document limit is looser than required.", "discrepancy_details": "document allows 7.5%, stipulation requires 5%"}`}
	a := NewAdjudicator(oracle, nil, nil, "test-model", time.Hour)

	v := a.Adjudicate(context.Background(), testReq, testSpan)
	if v.Status != model.StatusFail {
		t.Errorf("Expected FAIL, got %s", v.Status)
	}
	if v.DiscrepancyDetails == "" {
		t.Error("Expected discrepancy details on FAIL")
	}
}

func TestAdjudicator_Adjudicate_Ambiguous(t *testing.T) {
	oracle := &stubOracle{response: `{"status": "AMBIGUOUS", "evidence_quote": "", "reasoning": "The evidence may refer to a different note class.", "discrepancy_details": ""}`}
	a := NewAdjudicator(oracle, nil, nil, "test-model", time.Hour)

	v := a.Adjudicate(context.Background(), testReq, testSpan)
	if v.Status != model.StatusAmbiguous {
		t.Errorf("Expected AMBIGUOUS, got %s", v.Status)
	}
}

func TestAdjudicator_Adjudicate_FencedResponse(t *testing.T) {
	oracle := &stubOracle{response: "```json\n{\"status\": \"PASS\", \"evidence_quote\": \"q\", \"reasoning\": \"r\", \"discrepancy_details\": \"\"}\n```"}
	a := NewAdjudicator(oracle, nil, nil, "test-model", time.Hour)

	v := a.Adjudicate(context.Background(), testReq, testSpan)
	if v.Status != model.StatusPass {
		t.Errorf("Expected fence-wrapped JSON to parse as PASS, got %s", v.Status)
	}
}

func TestAdjudicator_Adjudicate_MalformedJSON(t *testing.T) {
	oracle := &stubOracle{response: "the document seems fine to me"}
	a := NewAdjudicator(oracle, nil, nil, "test-model", time.Hour)

	v := a.Adjudicate(context.Background(), testReq, testSpan)
	if v.Status != model.StatusError {
		t.Errorf("Expected ERROR for malformed response, got %s", v.Status)
	}
	if !strings.Contains(v.Reasoning, "malformed") {
		t.Errorf("Expected reasoning to mention malformed response, got %q", v.Reasoning)
	}
}

func TestAdjudicator_Adjudicate_MissingStatus(t *testing.T) {
	oracle := &stubOracle{response: `{"evidence_quote": "q", "reasoning": "r", "discrepancy_details": ""}`}
	a := NewAdjudicator(oracle, nil, nil, "test-model", time.Hour)

	v := a.Adjudicate(context.Background(), testReq, testSpan)
	if v.Status != model.StatusError {
		t.Errorf("Expected ERROR for missing status field, got %s", v.Status)
	}
}

func TestAdjudicator_Adjudicate_UnexpectedStatus(t *testing.T) {
	oracle := &stubOracle{response: `{"status": "MAYBE", "evidence_quote": "", "reasoning": "", "discrepancy_details": ""}`}
	a := NewAdjudicator(oracle, nil, nil, "test-model", time.Hour)

	v := a.Adjudicate(context.Background(), testReq, testSpan)
	if v.Status != model.StatusError {
		t.Errorf("Expected ERROR for unexpected status, got %s", v.Status)
	}
}

func TestAdjudicator_Adjudicate_TransportError(t *testing.T) {
	oracle := &stubOracle{err: errors.New("connection refused")}
	a := NewAdjudicator(oracle, nil, nil, "test-model", time.Hour)

	v := a.Adjudicate(context.Background(), testReq, testSpan)
	if v.Status != model.StatusError {
		t.Errorf("Expected ERROR on transport failure, got %s", v.Status)
	}
	if !strings.Contains(v.Reasoning, "connection refused") {
		t.Errorf("Expected reasoning to carry the transport error, got %q", v.Reasoning)
	}
	if v.RequirementID != "STIP-001" {
		t.Errorf("Expected requirement ID on error verdict, got %q", v.RequirementID)
	}
}

func TestAdjudicator_Adjudicate_CacheHit(t *testing.T) {
	oracle := &stubOracle{response: `{"status": "PASS", "evidence_quote": "q", "reasoning": "r", "discrepancy_details": ""}`}
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	a := NewAdjudicator(oracle, c, nil, "test-model", time.Hour)

	first := a.Adjudicate(context.Background(), testReq, testSpan)
	second := a.Adjudicate(context.Background(), testReq, testSpan)

	if oracle.calls != 1 {
		t.Errorf("Expected one oracle call with cache enabled, got %d", oracle.calls)
	}
	if first.Status != second.Status || first.EvidenceQuote != second.EvidenceQuote {
		t.Error("Expected cached verdict to match the original")
	}
}

func TestAdjudicator_Adjudicate_ErrorsNotCached(t *testing.T) {
	oracle := &stubOracle{response: "not json"}
	c := cache.NewMemoryCache(time.Hour, time.Hour)
	a := NewAdjudicator(oracle, c, nil, "test-model", time.Hour)

	a.Adjudicate(context.Background(), testReq, testSpan)
	a.Adjudicate(context.Background(), testReq, testSpan)

	if oracle.calls != 2 {
		t.Errorf("Expected unparseable responses to bypass the cache, got %d calls", oracle.calls)
	}
}

func TestBuildUserPrompt_Contents(t *testing.T) {
	prompt := BuildUserPrompt(testReq, testSpan)

	for _, want := range []string{
		"Concentration Limitations",
		"Single obligor exposure must not exceed 5%",
		"7.3",
		"located section",
		testSpan.Text,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestBuildUserPrompt_FallbackNote(t *testing.T) {
	span := model.EvidenceSpan{Category: "X", Text: "whole doc", Found: false}
	prompt := BuildUserPrompt(testReq, span)

	if !strings.Contains(prompt, "section not located") {
		t.Error("Expected prompt to flag full-document fallback")
	}
}

func TestSystemPrompt_StatesProtocolRules(t *testing.T) {
	for _, want := range []string{"provided that", "Silence", "PASS", "FAIL", "AMBIGUOUS", "discrepancy_details"} {
		if !strings.Contains(SystemPrompt, want) {
			t.Errorf("Expected system prompt to contain %q", want)
		}
	}
}

func TestTruncateEvidence(t *testing.T) {
	short := "short evidence"
	if got := TruncateEvidence(short); got != short {
		t.Errorf("Expected short text unchanged, got %q", got)
	}

	long := strings.Repeat("a", MaxEvidenceChars+500)
	got := TruncateEvidence(long)
	if len(got) != MaxEvidenceChars {
		t.Errorf("Expected truncation to %d chars, got %d", MaxEvidenceChars, len(got))
	}

	// Multi-byte rune straddling the cut must not be split
	runes := strings.Repeat("é", MaxEvidenceChars)
	got = TruncateEvidence(runes)
	if len(got) > MaxEvidenceChars {
		t.Errorf("Expected at most %d bytes, got %d", MaxEvidenceChars, len(got))
	}
	if !strings.HasSuffix(got, "é") {
		t.Error("Expected truncation to land on a rune boundary")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
