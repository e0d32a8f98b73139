package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CaseStudy struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"not null;column:description" json:"description"`
	AgentID     string    `gorm:"column:agent_id" json:"agent_id,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (CaseStudy) TableName() string {
	return "case_studies"
}

func (cs *CaseStudy) BeforeCreate(tx *gorm.DB) error {
	if cs.ID == uuid.Nil {
		cs.ID = uuid.New()
	}
	return nil
}
