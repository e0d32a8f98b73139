package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PerformanceItem is one titled strength or weakness in a grade report.
type PerformanceItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PerformanceSummary groups the ordered strength and weakness items.
type PerformanceSummary struct {
	Strengths  []PerformanceItem `json:"strengths"`
	Weaknesses []PerformanceItem `json:"weaknesses"`
}

// GradingResult is the validated structured output of one grading pass.
// FinalScore is always the server-side weighted recomputation over
// IndividualScores, not whatever the backend reported.
type GradingResult struct {
	OverallSummary     string             `json:"overall_summary"`
	FinalScore         int                `json:"final_score"`
	IndividualScores   map[string]int     `json:"individual_scores"`
	PerformanceSummary PerformanceSummary `json:"performance_summary"`
}

// Grade is the persisted record of one graded conversation. The unique
// index on conversation_id is the idempotency boundary of the pipeline:
// at most one row may ever exist per conversation, enforced by the
// database rather than the application. Rows are never mutated.
type Grade struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	CaseStudyID        *uuid.UUID     `gorm:"type:uuid;index" json:"case_study_id,omitempty"`
	ConversationID     string         `gorm:"uniqueIndex;not null;column:conversation_id" json:"conversation_id"`
	OverallSummary     string         `gorm:"not null;column:overall_summary" json:"overall_summary"`
	FinalScore         int            `gorm:"not null;column:final_score" json:"final_score"`
	IndividualScores   datatypes.JSON `gorm:"column:individual_scores" json:"individual_scores"`
	PerformanceSummary datatypes.JSON `gorm:"column:performance_summary" json:"performance_summary"`
	Timestamp          time.Time      `gorm:"not null" json:"timestamp"`
}

func (Grade) TableName() string {
	return "grades"
}

func (g *Grade) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func NewGrade(userID uuid.UUID, caseStudyID *uuid.UUID, conversationID string, result *GradingResult) (*Grade, error) {
	scores, err := json.Marshal(result.IndividualScores)
	if err != nil {
		return nil, err
	}
	summary, err := json.Marshal(result.PerformanceSummary)
	if err != nil {
		return nil, err
	}
	return &Grade{
		UserID:             userID,
		CaseStudyID:        caseStudyID,
		ConversationID:     conversationID,
		OverallSummary:     result.OverallSummary,
		FinalScore:         result.FinalScore,
		IndividualScores:   datatypes.JSON(scores),
		PerformanceSummary: datatypes.JSON(summary),
		Timestamp:          time.Now().UTC(),
	}, nil
}

// Result rebuilds the GradingResult value from the persisted columns.
func (g *Grade) Result() (*GradingResult, error) {
	out := &GradingResult{
		OverallSummary: g.OverallSummary,
		FinalScore:     g.FinalScore,
	}
	if len(g.IndividualScores) > 0 {
		if err := json.Unmarshal(g.IndividualScores, &out.IndividualScores); err != nil {
			return nil, err
		}
	}
	if len(g.PerformanceSummary) > 0 {
		if err := json.Unmarshal(g.PerformanceSummary, &out.PerformanceSummary); err != nil {
			return nil, err
		}
	}
	return out, nil
}
