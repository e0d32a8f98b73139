package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
	"github.com/mivamind/casegrade-backend/internal/repos"
	"github.com/mivamind/casegrade-backend/internal/types"
)

// TranscriptSource fetches a conversation's message sequence from the
// conversational-AI service. Implementations own their retry policy for
// the eventual-consistency window after session end.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, conversationID string) (types.Transcript, error)
}

// GradeCache is an optional fast path in front of the grade repository.
type GradeCache interface {
	Get(ctx context.Context, conversationID string) (*types.GradingResult, error)
	Set(ctx context.Context, conversationID string, result *types.GradingResult)
}

// GradingService runs the whole grading pipeline for one conversation:
// idempotency check, transcript fetch and persistence, prompt build,
// backend invocation, result extraction, grade persistence.
type GradingService interface {
	GradeConversation(ctx context.Context, conversationID, userEmail string, caseStudyID *uuid.UUID) (*types.GradingResult, error)
	GetGrade(ctx context.Context, conversationID string) (*types.Grade, error)
	ListGradesForUser(ctx context.Context, userEmail string) ([]*types.Grade, error)
}

type gradingService struct {
	log         *logger.Logger
	users       repos.UserRepo
	caseStudies repos.CaseStudyRepo
	logs        repos.ConversationLogRepo
	grades      repos.GradeRepo
	transcripts TranscriptSource
	ai          AIClient
	rubric      *Rubric
	cache       GradeCache
}

func NewGradingService(
	log *logger.Logger,
	users repos.UserRepo,
	caseStudies repos.CaseStudyRepo,
	logs repos.ConversationLogRepo,
	grades repos.GradeRepo,
	transcripts TranscriptSource,
	ai AIClient,
	rubric *Rubric,
	cache GradeCache,
) GradingService {
	return &gradingService{
		log:         log.With("service", "GradingService"),
		users:       users,
		caseStudies: caseStudies,
		logs:        logs,
		grades:      grades,
		transcripts: transcripts,
		ai:          ai,
		rubric:      rubric,
		cache:       cache,
	}
}

// GradeConversation grades one conversation at most once. A previously
// computed grade is returned as-is with no backend call; re-grading is
// deliberately not supported. All state is request-scoped.
func (gs *gradingService) GradeConversation(ctx context.Context, conversationID, userEmail string, caseStudyID *uuid.UUID) (*types.GradingResult, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversation id required", apperr.ErrInvalidArgument)
	}
	if userEmail == "" {
		return nil, fmt.Errorf("%w: user email required", apperr.ErrInvalidArgument)
	}
	log := gs.log.With("conversation_id", conversationID, "user_email", userEmail)

	if gs.cache != nil {
		if cached, err := gs.cache.Get(ctx, conversationID); err == nil && cached != nil {
			log.Debug("Grade served from cache")
			return cached, nil
		}
	}

	existing, err := gs.grades.FindByConversationID(ctx, nil, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: grade lookup: %v", apperr.ErrPersistence, err)
	}
	if existing != nil {
		result, err := existing.Result()
		if err != nil {
			return nil, fmt.Errorf("%w: decode stored grade: %v", apperr.ErrPersistence, err)
		}
		log.Info("Conversation already graded, returning stored result")
		gs.cacheSet(ctx, conversationID, result)
		return result, nil
	}

	user, err := gs.getOrCreateUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	var caseStudy *types.CaseStudy
	if caseStudyID != nil {
		caseStudy, err = gs.caseStudies.GetByID(ctx, nil, *caseStudyID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: case study lookup: %v", apperr.ErrPersistence, err)
			}
			// A stale case-study reference does not block grading.
			log.Warn("Case study not found, grading without case framing", "case_study_id", caseStudyID.String())
			caseStudy = nil
		}
	}

	transcript, err := gs.transcripts.FetchTranscript(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	log.Info("Transcript fetched", "messages", len(transcript))

	var caseStudyRef *uuid.UUID
	if caseStudy != nil {
		caseStudyRef = &caseStudy.ID
	}
	convLog, err := types.NewConversationLog(user.ID, caseStudyRef, conversationID, transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: encode transcript: %v", apperr.ErrPersistence, err)
	}
	if _, err := gs.logs.Create(ctx, nil, convLog); err != nil {
		return nil, fmt.Errorf("%w: store transcript: %v", apperr.ErrPersistence, err)
	}

	prompt := BuildGradingPrompt(gs.rubric, transcript, caseStudy)
	raw, err := gs.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := ExtractGradingResult(raw, gs.rubric)
	if err != nil {
		log.Error("Backend output failed validation", "error", err)
		return nil, err
	}

	grade, err := types.NewGrade(user.ID, caseStudyRef, conversationID, result)
	if err != nil {
		return nil, fmt.Errorf("%w: encode grade: %v", apperr.ErrPersistence, err)
	}
	if _, err := gs.grades.Create(ctx, nil, grade); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent first-time grading won the unique index on
			// conversation_id; its row is the grade of record.
			log.Warn("Concurrent grading persisted first, returning its result")
			winner, findErr := gs.grades.FindByConversationID(ctx, nil, conversationID)
			if findErr != nil || winner == nil {
				return nil, fmt.Errorf("%w: grade conflict re-read: %v", apperr.ErrPersistence, findErr)
			}
			winnerResult, decodeErr := winner.Result()
			if decodeErr != nil {
				return nil, fmt.Errorf("%w: decode stored grade: %v", apperr.ErrPersistence, decodeErr)
			}
			gs.cacheSet(ctx, conversationID, winnerResult)
			return winnerResult, nil
		}
		return nil, fmt.Errorf("%w: store grade: %v", apperr.ErrPersistence, err)
	}

	log.Info("Conversation graded", "final_score", result.FinalScore)
	gs.cacheSet(ctx, conversationID, result)
	return result, nil
}

// GetGrade returns the stored grade for one conversation.
func (gs *gradingService) GetGrade(ctx context.Context, conversationID string) (*types.Grade, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversation id required", apperr.ErrInvalidArgument)
	}
	grade, err := gs.grades.FindByConversationID(ctx, nil, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: grade lookup: %v", apperr.ErrPersistence, err)
	}
	if grade == nil {
		return nil, fmt.Errorf("%w: conversation %s has no grade", apperr.ErrNotFound, conversationID)
	}
	return grade, nil
}

// ListGradesForUser returns every grade belonging to the user, newest
// first. An unknown user has no grades rather than being an error.
func (gs *gradingService) ListGradesForUser(ctx context.Context, userEmail string) ([]*types.Grade, error) {
	user, err := gs.users.GetByEmail(ctx, nil, userEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []*types.Grade{}, nil
		}
		return nil, fmt.Errorf("%w: user lookup: %v", apperr.ErrPersistence, err)
	}
	grades, err := gs.grades.ListByUserID(ctx, nil, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list grades: %v", apperr.ErrPersistence, err)
	}
	return grades, nil
}

func (gs *gradingService) cacheSet(ctx context.Context, conversationID string, result *types.GradingResult) {
	if gs.cache != nil {
		gs.cache.Set(ctx, conversationID, result)
	}
}

func (gs *gradingService) getOrCreateUser(ctx context.Context, email string) (*types.User, error) {
	user, err := gs.users.GetByEmail(ctx, nil, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user lookup: %v", apperr.ErrPersistence, err)
	}
	created, err := gs.users.Create(ctx, nil, &types.User{
		Email: email,
		Role:  types.UserRoleStudent,
	})
	if err != nil {
		// Another request may have created the user meanwhile.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return gs.users.GetByEmail(ctx, nil, email)
		}
		return nil, fmt.Errorf("%w: create user: %v", apperr.ErrPersistence, err)
	}
	gs.log.Info("User created", "user_email", email)
	return created, nil
}
