package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/types"
)

// GradeRepo is the idempotency boundary of the grading pipeline. The
// orchestrator must call FindByConversationID before any expensive work
// and short-circuit on a hit. Create relies on the unique index on
// conversation_id: when two first-time gradings race, the database lets
// exactly one row through and Create reports the loss as
// gorm.ErrDuplicatedKey so the caller can re-read the winning row.
type GradeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error)
	FindByConversationID(ctx context.Context, tx *gorm.DB, conversationID string) (*types.Grade, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Grade, error)
}

type gradeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGradeRepo(db *gorm.DB, baseLog *logger.Logger) GradeRepo {
	repoLog := baseLog.With("repo", "GradeRepo")
	return &gradeRepo{db: db, log: repoLog}
}

func (gr *gradeRepo) Create(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	if err := transaction.WithContext(ctx).Create(grade).Error; err != nil {
		return nil, err
	}
	return grade, nil
}

// FindByConversationID returns (nil, nil) when no grade exists yet.
func (gr *gradeRepo) FindByConversationID(ctx context.Context, tx *gorm.DB, conversationID string) (*types.Grade, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	var result types.Grade
	err := transaction.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (gr *gradeRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Grade, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	var results []*types.Grade
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
