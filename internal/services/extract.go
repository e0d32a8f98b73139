package services

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
	"github.com/mivamind/casegrade-backend/internal/types"
)

// ExtractGradingResult parses the raw backend text into a validated
// GradingResult. The backend is not schema-enforced, so the parse runs
// an ordered fallback chain: the whole text as JSON first, then the
// first balanced {...} span inside it. Anything the chain cannot turn
// into a schema-conforming object is apperr.ErrMalformedResult.
//
// final_score is recomputed from the individual scores and the rubric
// weights; the backend's own arithmetic is range-checked but never
// trusted.
func ExtractGradingResult(raw string, rubric *Rubric) (*types.GradingResult, error) {
	fields, err := parseObject(raw)
	if err != nil {
		return nil, err
	}
	return validateResult(fields, rubric)
}

func parseObject(raw string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err == nil {
		return fields, nil
	}
	span, ok := firstJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found in backend output", apperr.ErrMalformedResult)
	}
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return nil, fmt.Errorf("%w: embedded object does not parse: %v", apperr.ErrMalformedResult, err)
	}
	return fields, nil
}

// firstJSONObject scans for the first balanced {...} span, tracking
// nested braces and skipping brace characters inside string literals.
func firstJSONObject(s string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

func validateResult(fields map[string]json.RawMessage, rubric *Rubric) (*types.GradingResult, error) {
	out := &types.GradingResult{
		IndividualScores: make(map[string]int, len(rubric.Criteria)),
	}

	if raw, ok := fields["overall_summary"]; ok {
		if err := json.Unmarshal(raw, &out.OverallSummary); err != nil {
			return nil, fmt.Errorf("%w: overall_summary is not a string", apperr.ErrMalformedResult)
		}
	}

	rawScores, ok := fields["individual_scores"]
	if !ok {
		return nil, fmt.Errorf("%w: individual_scores missing", apperr.ErrMalformedResult)
	}
	var scores map[string]json.Number
	if err := json.Unmarshal(rawScores, &scores); err != nil {
		return nil, fmt.Errorf("%w: individual_scores is not an object of numbers", apperr.ErrMalformedResult)
	}
	for _, name := range rubric.CriterionNames() {
		num, present := scores[name]
		if !present {
			return nil, fmt.Errorf("%w: individual_scores missing criterion %q", apperr.ErrMalformedResult, name)
		}
		score, err := coerceScore(num)
		if err != nil {
			return nil, fmt.Errorf("%w: criterion %q: %v", apperr.ErrMalformedResult, name, err)
		}
		out.IndividualScores[name] = score
	}

	// The backend is asked for the weighted sum too; its value only has
	// to be a number in range, because it gets recomputed below.
	rawFinal, ok := fields["final_score"]
	if !ok {
		return nil, fmt.Errorf("%w: final_score missing", apperr.ErrMalformedResult)
	}
	var finalNum json.Number
	if err := json.Unmarshal(rawFinal, &finalNum); err != nil {
		return nil, fmt.Errorf("%w: final_score is not a number", apperr.ErrMalformedResult)
	}
	if _, err := coerceScore(finalNum); err != nil {
		return nil, fmt.Errorf("%w: final_score: %v", apperr.ErrMalformedResult, err)
	}
	out.FinalScore = rubric.WeightedScore(out.IndividualScores)

	rawSummary, ok := fields["performance_summary"]
	if !ok {
		return nil, fmt.Errorf("%w: performance_summary missing", apperr.ErrMalformedResult)
	}
	var summaryFields map[string]json.RawMessage
	if err := json.Unmarshal(rawSummary, &summaryFields); err != nil {
		return nil, fmt.Errorf("%w: performance_summary is not an object", apperr.ErrMalformedResult)
	}
	strengths, err := parseItems(summaryFields, "strengths")
	if err != nil {
		return nil, err
	}
	weaknesses, err := parseItems(summaryFields, "weaknesses")
	if err != nil {
		return nil, err
	}
	out.PerformanceSummary = types.PerformanceSummary{
		Strengths:  strengths,
		Weaknesses: weaknesses,
	}
	return out, nil
}

// parseItems decodes one strengths/weaknesses list. A missing title or
// description coerces to the empty string; that tolerance absorbs the
// minor shape drift an unconstrained backend produces. Anything beyond
// that is a hard failure.
func parseItems(fields map[string]json.RawMessage, key string) ([]types.PerformanceItem, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("%w: performance_summary missing %q", apperr.ErrMalformedResult, key)
	}
	var items []types.PerformanceItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: performance_summary %q is not a list of title/description objects", apperr.ErrMalformedResult, key)
	}
	if items == nil {
		items = []types.PerformanceItem{}
	}
	return items, nil
}

func coerceScore(num json.Number) (int, error) {
	f, err := num.Float64()
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", num.String())
	}
	score := int(math.Round(f))
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("score %v out of range [0,100]", f)
	}
	return score, nil
}
