package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/types"
)

type CaseStudyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, caseStudy *types.CaseStudy) (*types.CaseStudy, error)
	GetByID(ctx context.Context, tx *gorm.DB, caseStudyID uuid.UUID) (*types.CaseStudy, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.CaseStudy, error)
}

type caseStudyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCaseStudyRepo(db *gorm.DB, baseLog *logger.Logger) CaseStudyRepo {
	repoLog := baseLog.With("repo", "CaseStudyRepo")
	return &caseStudyRepo{db: db, log: repoLog}
}

func (cr *caseStudyRepo) Create(ctx context.Context, tx *gorm.DB, caseStudy *types.CaseStudy) (*types.CaseStudy, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(caseStudy).Error; err != nil {
		return nil, err
	}
	return caseStudy, nil
}

func (cr *caseStudyRepo) GetByID(ctx context.Context, tx *gorm.DB, caseStudyID uuid.UUID) (*types.CaseStudy, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.CaseStudy
	if err := transaction.WithContext(ctx).
		Where("id = ?", caseStudyID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *caseStudyRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.CaseStudy, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.CaseStudy
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
