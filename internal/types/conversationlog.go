package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConversationLog is the durable record of one captured transcript.
// Rows are append-only: the grading pipeline writes one per successful
// transcript fetch and never updates it.
type ConversationLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	CaseStudyID    *uuid.UUID     `gorm:"type:uuid;index" json:"case_study_id,omitempty"`
	ConversationID string         `gorm:"index;not null;column:conversation_id" json:"conversation_id"`
	Transcript     datatypes.JSON `gorm:"column:transcript" json:"transcript"`
	Timestamp      time.Time      `gorm:"not null" json:"timestamp"`
}

func (ConversationLog) TableName() string {
	return "conversation_logs"
}

func (cl *ConversationLog) BeforeCreate(tx *gorm.DB) error {
	if cl.ID == uuid.Nil {
		cl.ID = uuid.New()
	}
	return nil
}

func NewConversationLog(userID uuid.UUID, caseStudyID *uuid.UUID, conversationID string, transcript Transcript) (*ConversationLog, error) {
	raw, err := json.Marshal(transcript)
	if err != nil {
		return nil, err
	}
	return &ConversationLog{
		UserID:         userID,
		CaseStudyID:    caseStudyID,
		ConversationID: conversationID,
		Transcript:     datatypes.JSON(raw),
		Timestamp:      time.Now().UTC(),
	}, nil
}
