package services

import (
	"fmt"
	"strings"

	"github.com/mivamind/casegrade-backend/internal/types"
)

// BuildGradingPrompt renders the evaluation prompt for one transcript.
// It is a pure function: identical inputs always produce identical
// text, so prompt drift never adds to the backend's own variance.
func BuildGradingPrompt(rubric *Rubric, transcript types.Transcript, caseStudy *types.CaseStudy) string {
	var b strings.Builder

	b.WriteString("You are a grading assistant for MBA students practicing case-study conversations with a simulated counterpart.\n")
	b.WriteString("Evaluate ONLY the turns spoken by the \"user\" role. The \"agent\" turns are the simulated counterpart and must not be graded.\n\n")

	if caseStudy != nil {
		b.WriteString("Case study under discussion:\n")
		fmt.Fprintf(&b, "Title: %s\n", caseStudy.Title)
		fmt.Fprintf(&b, "Description: %s\n\n", caseStudy.Description)
	}

	b.WriteString("Score the student from 0 to 100 on each of the following criteria:\n")
	for i, c := range rubric.Criteria {
		fmt.Fprintf(&b, "%d. %s (\"%s\", weight %.2f): %s\n", i+1, c.Label, c.Name, c.Weight, c.Description)
	}

	b.WriteString("\nUse these score bands consistently on every criterion:\n")
	for _, band := range rubric.Bands {
		fmt.Fprintf(&b, "- %d-%d: %s\n", band.Min, band.Max, band.Summary)
	}

	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript.Render())
	b.WriteString("\n\n")

	b.WriteString("Return a single JSON object with exactly this structure and these key names:\n")
	b.WriteString(`{
    "overall_summary": "Two or three sentences summarizing the student's performance.",
    "final_score": 55,
    "individual_scores": {
`)
	for i, c := range rubric.Criteria {
		sep := ","
		if i == len(rubric.Criteria)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "        %q: 50%s\n", c.Name, sep)
	}
	b.WriteString(`    },
    "performance_summary": {
        "strengths": [
            {"title": "Short heading", "description": "One or two sentences of detail."}
        ],
        "weaknesses": [
            {"title": "Short heading", "description": "One or two sentences of detail."}
        ]
    }
}
`)
	b.WriteString("\nThe final_score must be the weighted sum of the individual scores using the weights above, rounded to the nearest integer.\n")
	b.WriteString("Respond with the JSON object only. Do not add any text, explanation, or formatting before or after it.\n")

	return b.String()
}
