package services

import (
	"strings"
	"testing"

	"github.com/mivamind/casegrade-backend/internal/types"
)

func sampleTranscript() types.Transcript {
	return types.Transcript{
		{Role: types.RoleAgent, Message: "What are the risks?"},
		{Role: types.RoleUser, Message: "Market risk and credit risk."},
	}
}

func TestBuildGradingPromptIsDeterministic(t *testing.T) {
	rubric := loadTestRubric(t)
	first := BuildGradingPrompt(rubric, sampleTranscript(), nil)
	second := BuildGradingPrompt(rubric, sampleTranscript(), nil)
	if first != second {
		t.Fatalf("prompt is not deterministic for identical inputs")
	}
}

func TestBuildGradingPromptContents(t *testing.T) {
	rubric := loadTestRubric(t)
	prompt := BuildGradingPrompt(rubric, sampleTranscript(), nil)

	for _, want := range []string{
		`ONLY the turns spoken by the "user" role`,
		"critical_thinking",
		"comprehension",
		"communication",
		"agent: What are the risks?",
		"user: Market risk and credit risk.",
		`"overall_summary"`,
		`"individual_scores"`,
		`"performance_summary"`,
		"Respond with the JSON object only",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}

	for _, band := range rubric.Bands {
		if !strings.Contains(prompt, band.Summary) {
			t.Fatalf("prompt missing band anchor %q", band.Summary)
		}
	}
}

func TestBuildGradingPromptCaseStudyFraming(t *testing.T) {
	rubric := loadTestRubric(t)
	cs := &types.CaseStudy{
		Title:       "Fuel subsidy removal",
		Description: "The government is weighing the removal of fuel subsidies.",
	}

	withCase := BuildGradingPrompt(rubric, sampleTranscript(), cs)
	if !strings.Contains(withCase, "Fuel subsidy removal") {
		t.Fatalf("prompt missing case study title")
	}

	withoutCase := BuildGradingPrompt(rubric, sampleTranscript(), nil)
	if strings.Contains(withoutCase, "Case study under discussion") {
		t.Fatalf("prompt should omit case framing without a case study")
	}
	// Everything after the case framing must be identical.
	idx := strings.Index(withCase, "Score the student")
	if idx < 0 {
		t.Fatalf("prompt missing scoring instructions")
	}
	if withCase[idx:] != withoutCase[strings.Index(withoutCase, "Score the student"):] {
		t.Fatalf("non-case sections differ with and without a case study")
	}
}
