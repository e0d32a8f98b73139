package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
	"github.com/mivamind/casegrade-backend/internal/repos"
	"github.com/mivamind/casegrade-backend/internal/types"
)

// CaseStudyService manages the catalog of case studies students are
// interviewed about.
type CaseStudyService interface {
	Create(ctx context.Context, caseStudy *types.CaseStudy) (*types.CaseStudy, error)
	Get(ctx context.Context, caseStudyID uuid.UUID) (*types.CaseStudy, error)
	List(ctx context.Context) ([]*types.CaseStudy, error)
}

type caseStudyService struct {
	log  *logger.Logger
	repo repos.CaseStudyRepo
}

func NewCaseStudyService(log *logger.Logger, repo repos.CaseStudyRepo) CaseStudyService {
	return &caseStudyService{
		log:  log.With("service", "CaseStudyService"),
		repo: repo,
	}
}

func (cs *caseStudyService) Create(ctx context.Context, caseStudy *types.CaseStudy) (*types.CaseStudy, error) {
	caseStudy.Title = strings.TrimSpace(caseStudy.Title)
	if caseStudy.Title == "" {
		return nil, fmt.Errorf("%w: title required", apperr.ErrInvalidArgument)
	}
	created, err := cs.repo.Create(ctx, nil, caseStudy)
	if err != nil {
		return nil, fmt.Errorf("%w: create case study: %v", apperr.ErrPersistence, err)
	}
	cs.log.Info("Case study created", "case_study_id", created.ID.String(), "title", created.Title)
	return created, nil
}

func (cs *caseStudyService) Get(ctx context.Context, caseStudyID uuid.UUID) (*types.CaseStudy, error) {
	found, err := cs.repo.GetByID(ctx, nil, caseStudyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: case study %s", apperr.ErrNotFound, caseStudyID)
		}
		return nil, fmt.Errorf("%w: case study lookup: %v", apperr.ErrPersistence, err)
	}
	return found, nil
}

func (cs *caseStudyService) List(ctx context.Context) ([]*types.CaseStudy, error) {
	found, err := cs.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list case studies: %v", apperr.ErrPersistence, err)
	}
	return found, nil
}
