package adjudicate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/stipcheck/internal/cache"
	"github.com/ppiankov/stipcheck/internal/model"
)

// MaxEvidenceChars bounds the evidence text forwarded to the oracle.
// Truncation always takes the prefix of the located span, never the whole
// unbounded document.
const MaxEvidenceChars = 12000

// SystemPrompt is the fixed instruction sent with every adjudication. The
// three rules are part of the protocol contract; changing them changes what
// PASS and FAIL mean across a whole report.
const SystemPrompt = `You are a CLO indenture compliance analyst. Decide whether the quoted document evidence satisfies the stipulation. Apply these rules exactly:
1. Numeric limits: a document limit at least as strict as the stipulation's limit is PASS (an exact match is PASS); a looser document limit is FAIL.
2. Prohibited carve-outs: if the stipulation demands the absence of an exception or carve-out and the evidence contains qualifying language such as "provided that" or "except for", the verdict is FAIL regardless of surrounding text.
3. Silence: if the stipulation mandates a clause and the evidence contains no matching clause at all, the verdict is FAIL. Silence is never implicit compliance.

Respond with a single JSON object and nothing else, with exactly these fields:
{"status": "PASS" | "FAIL" | "AMBIGUOUS", "evidence_quote": "<verbatim quote supporting the verdict>", "reasoning": "<brief determination rationale>", "discrepancy_details": "<what differs, or empty>"}`

// Oracle is the narrow reasoning-service contract. Tests substitute a
// deterministic stub; production wires an llm.Completer.
type Oracle interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Limiter throttles oracle calls, keyed by provider name
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// Adjudicator turns (requirement, evidence span) pairs into verdicts.
// Failures never escape as errors: transport and parse problems become
// terminal ERROR verdicts so a batch always yields one verdict per
// requirement.
type Adjudicator struct {
	oracle   Oracle
	cache    cache.Cache // nil disables caching
	limiter  Limiter     // nil disables throttling
	model    string      // recorded in cache keys only
	cacheTTL time.Duration
}

// NewAdjudicator creates an adjudicator. cache and limiter may be nil.
func NewAdjudicator(oracle Oracle, c cache.Cache, limiter Limiter, modelName string, cacheTTL time.Duration) *Adjudicator {
	return &Adjudicator{
		oracle:   oracle,
		cache:    c,
		limiter:  limiter,
		model:    modelName,
		cacheTTL: cacheTTL,
	}
}

// Adjudicate runs one requirement through the oracle and returns its verdict
func (a *Adjudicator) Adjudicate(ctx context.Context, req model.Requirement, span model.EvidenceSpan) model.Verdict {
	user := BuildUserPrompt(req, span)

	key := cache.Key(a.oracle.Name(), a.model, SystemPrompt, user)
	if a.cache != nil {
		if raw, found := a.cache.Get(key); found {
			if v, err := parseVerdict(string(raw)); err == nil {
				return a.finish(req, v)
			}
			// Unparseable cache entries are dropped, not surfaced
			_ = a.cache.Delete(key)
		}
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, a.oracle.Name()); err != nil {
			return errorVerdict(req.ID, fmt.Errorf("rate limit wait: %w", err))
		}
	}

	raw, err := a.oracle.Complete(ctx, SystemPrompt, user)
	if err != nil {
		return errorVerdict(req.ID, fmt.Errorf("oracle call failed: %w", err))
	}

	v, err := parseVerdict(raw)
	if err != nil {
		return errorVerdict(req.ID, err)
	}

	if a.cache != nil {
		_ = a.cache.Set(key, []byte(raw), a.cacheTTL)
	}

	return a.finish(req, v)
}

func (a *Adjudicator) finish(req model.Requirement, v model.Verdict) model.Verdict {
	v.RequirementID = req.ID
	v.Confidence = ConfidenceScore(v.Reasoning)
	return v
}

// BuildUserPrompt constructs the deterministic per-requirement prompt
func BuildUserPrompt(req model.Requirement, span model.EvidenceSpan) string {
	located := "located section"
	if !span.Found {
		located = "section not located, full document"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s\n", req.Category)
	if req.Section != "" {
		fmt.Fprintf(&b, "Document section hint: %s\n", req.Section)
	}
	fmt.Fprintf(&b, "Stipulation: %s\n\n", req.Description)
	fmt.Fprintf(&b, "Document evidence (%s):\n%s\n", located, TruncateEvidence(span.Text))
	return b.String()
}

// TruncateEvidence bounds the evidence prefix to MaxEvidenceChars without
// splitting a UTF-8 sequence
func TruncateEvidence(text string) string {
	if len(text) <= MaxEvidenceChars {
		return text
	}
	cut := MaxEvidenceChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// oracleVerdict is the strict response schema. Status is a pointer so a
// missing field is distinguishable from an empty one.
type oracleVerdict struct {
	Status             *string `json:"status"`
	EvidenceQuote      string  `json:"evidence_quote"`
	Reasoning          string  `json:"reasoning"`
	DiscrepancyDetails string  `json:"discrepancy_details"`
}

// parseVerdict parses the oracle's output into a typed verdict. Any shape
// other than the four-field object is a parse failure.
func parseVerdict(raw string) (model.Verdict, error) {
	cleaned := StripFences(raw)

	var ov oracleVerdict
	if err := json.Unmarshal([]byte(cleaned), &ov); err != nil {
		return model.Verdict{}, fmt.Errorf("malformed oracle response: %w", err)
	}
	if ov.Status == nil {
		return model.Verdict{}, fmt.Errorf("oracle response missing status field")
	}

	status := model.VerdictStatus(strings.ToUpper(strings.TrimSpace(*ov.Status)))
	switch status {
	case model.StatusPass, model.StatusFail, model.StatusAmbiguous:
	default:
		return model.Verdict{}, fmt.Errorf("oracle returned unexpected status %q", *ov.Status)
	}

	return model.Verdict{
		Status:             status,
		EvidenceQuote:      ov.EvidenceQuote,
		Reasoning:          ov.Reasoning,
		DiscrepancyDetails: ov.DiscrepancyDetails,
	}, nil
}

// StripFences removes a markdown code fence wrapper some models emit even
// when asked for bare JSON
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// errorVerdict is the only verdict kind that short-circuits without a quote
func errorVerdict(requirementID string, err error) model.Verdict {
	return model.Verdict{
		RequirementID: requirementID,
		Status:        model.StatusError,
		Reasoning:     err.Error(),
	}
}
