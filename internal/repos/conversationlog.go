package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/types"
)

// ConversationLogRepo records captured transcripts. Create is not
// idempotent: the pipeline calls it once per successful fetch, and a
// duplicate row from a retried grading call is a tolerated side effect.
type ConversationLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, log *types.ConversationLog) (*types.ConversationLog, error)
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ConversationLog, error)
}

type conversationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationLogRepo(db *gorm.DB, baseLog *logger.Logger) ConversationLogRepo {
	repoLog := baseLog.With("repo", "ConversationLogRepo")
	return &conversationLogRepo{db: db, log: repoLog}
}

func (clr *conversationLogRepo) Create(ctx context.Context, tx *gorm.DB, log *types.ConversationLog) (*types.ConversationLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = clr.db
	}
	if err := transaction.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

func (clr *conversationLogRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ConversationLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = clr.db
	}
	var results []*types.ConversationLog
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
