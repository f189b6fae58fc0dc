// Package analysis classifies completed call transcripts with a language
// model. One completion per call outcome; failures degrade the CRM update
// instead of failing the webhook acknowledgment.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/techzoneai/revive-voice-service/internal/domain"
)

// Completer is the narrow language-model contract: one structured completion
// for a system prompt plus user message. The returned bytes must be the JSON
// document produced under the analysis schema.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) ([]byte, error)
}

// Analyzer turns a call transcript into a CallAnalysis.
type Analyzer struct {
	llm Completer
}

// NewAnalyzer creates an analyzer over the given completer.
func NewAnalyzer(llm Completer) *Analyzer {
	return &Analyzer{llm: llm}
}

// Analyze invokes the model with the fixed analysis prompt and parses the
// structured result. Responses outside the schema, including interest values
// outside the three-level enum, are rejected with an AnalysisError rather
// than passed through.
func (a *Analyzer) Analyze(ctx context.Context, leadName, transcript string) (domain.CallAnalysis, error) {
	inputs := fmt.Sprintf("# Lead Name: %s\n# Call Transcript:\n%s", leadName, transcript)

	raw, err := a.llm.Complete(ctx, CallAnalysisPrompt, inputs)
	if err != nil {
		return domain.CallAnalysis{}, &domain.AnalysisError{Msg: "completion failed", Err: err}
	}

	var result domain.CallAnalysis
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.CallAnalysis{}, &domain.AnalysisError{Msg: "response is not valid analysis JSON", Err: err}
	}
	if !domain.ValidInterest(result.Interested) {
		return domain.CallAnalysis{}, &domain.AnalysisError{
			Msg: fmt.Sprintf("interest level %q outside the allowed set", result.Interested),
		}
	}
	return result, nil
}
