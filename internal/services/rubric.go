package services

import (
	_ "embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

//go:embed rubric.yaml
var rubricYAML []byte

type RubricCriterion struct {
	Name        string  `yaml:"name"`
	Label       string  `yaml:"label"`
	Weight      float64 `yaml:"weight"`
	Description string  `yaml:"description"`
}

type RubricBand struct {
	Min     int    `yaml:"min"`
	Max     int    `yaml:"max"`
	Summary string `yaml:"summary"`
}

// Rubric is the fixed weighted set of evaluation criteria plus the
// ordinal score bands embedded into every grading prompt.
type Rubric struct {
	Criteria []RubricCriterion `yaml:"criteria"`
	Bands    []RubricBand      `yaml:"bands"`
}

// LoadRubric parses the embedded rubric definition and normalizes the
// weights so they sum to 1 even when the definition is misconfigured.
func LoadRubric() (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(rubricYAML, &r); err != nil {
		return nil, fmt.Errorf("parse rubric: %w", err)
	}
	if len(r.Criteria) == 0 {
		return nil, fmt.Errorf("rubric defines no criteria")
	}
	for _, c := range r.Criteria {
		if c.Name == "" {
			return nil, fmt.Errorf("rubric criterion missing name")
		}
		if c.Weight <= 0 {
			return nil, fmt.Errorf("rubric criterion %q has non-positive weight", c.Name)
		}
	}
	r.normalizeWeights()
	return &r, nil
}

// normalizeWeights rescales the criterion weights to sum to 1. A
// correctly configured rubric is left untouched.
func (r *Rubric) normalizeWeights() {
	var sum float64
	for _, c := range r.Criteria {
		sum += c.Weight
	}
	if sum == 0 || sum == 1.0 {
		return
	}
	for i := range r.Criteria {
		r.Criteria[i].Weight /= sum
	}
}

// CriterionNames returns the criteria names in definition order.
func (r *Rubric) CriterionNames() []string {
	names := make([]string, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		names = append(names, c.Name)
	}
	return names
}

// WeightedScore computes round(sum of weight * score) over the rubric
// criteria. The caller guarantees scores holds every criterion.
func (r *Rubric) WeightedScore(scores map[string]int) int {
	var total float64
	for _, c := range r.Criteria {
		total += c.Weight * float64(scores[c.Name])
	}
	return int(math.Round(total))
}
