package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
	"github.com/mivamind/casegrade-backend/internal/types"
)

type fakeUserRepo struct {
	byEmail map[string]*types.User
	created int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*types.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return nil, gorm.ErrDuplicatedKey
	}
	user.ID = uuid.New()
	f.byEmail[user.Email] = user
	f.created++
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	for _, u := range f.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, userEmail string) (*types.User, error) {
	if u, ok := f.byEmail[userEmail]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCaseStudyRepo struct {
	byID map[uuid.UUID]*types.CaseStudy
}

func newFakeCaseStudyRepo() *fakeCaseStudyRepo {
	return &fakeCaseStudyRepo{byID: map[uuid.UUID]*types.CaseStudy{}}
}

func (f *fakeCaseStudyRepo) Create(ctx context.Context, tx *gorm.DB, cs *types.CaseStudy) (*types.CaseStudy, error) {
	if cs.ID == uuid.Nil {
		cs.ID = uuid.New()
	}
	f.byID[cs.ID] = cs
	return cs, nil
}

func (f *fakeCaseStudyRepo) GetByID(ctx context.Context, tx *gorm.DB, caseStudyID uuid.UUID) (*types.CaseStudy, error) {
	if cs, ok := f.byID[caseStudyID]; ok {
		return cs, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCaseStudyRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.CaseStudy, error) {
	out := make([]*types.CaseStudy, 0, len(f.byID))
	for _, cs := range f.byID {
		out = append(out, cs)
	}
	return out, nil
}

type fakeConversationLogRepo struct {
	logs []*types.ConversationLog
}

func (f *fakeConversationLogRepo) Create(ctx context.Context, tx *gorm.DB, log *types.ConversationLog) (*types.ConversationLog, error) {
	f.logs = append(f.logs, log)
	return log, nil
}

func (f *fakeConversationLogRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ConversationLog, error) {
	var out []*types.ConversationLog
	for _, l := range f.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeGradeRepo struct {
	byConversation map[string]*types.Grade
}

func newFakeGradeRepo() *fakeGradeRepo {
	return &fakeGradeRepo{byConversation: map[string]*types.Grade{}}
}

func (f *fakeGradeRepo) Create(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error) {
	if _, ok := f.byConversation[grade.ConversationID]; ok {
		return nil, gorm.ErrDuplicatedKey
	}
	grade.ID = uuid.New()
	f.byConversation[grade.ConversationID] = grade
	return grade, nil
}

func (f *fakeGradeRepo) FindByConversationID(ctx context.Context, tx *gorm.DB, conversationID string) (*types.Grade, error) {
	if g, ok := f.byConversation[conversationID]; ok {
		return g, nil
	}
	return nil, nil
}

func (f *fakeGradeRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Grade, error) {
	var out []*types.Grade
	for _, g := range f.byConversation {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeTranscriptSource struct {
	transcript types.Transcript
	err        error
	calls      int
}

func (f *fakeTranscriptSource) FetchTranscript(ctx context.Context, conversationID string) (types.Transcript, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.transcript, nil
}

type fakeAIClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type gradingFixture struct {
	users       *fakeUserRepo
	caseStudies *fakeCaseStudyRepo
	logs        *fakeConversationLogRepo
	grades      *fakeGradeRepo
	transcripts *fakeTranscriptSource
	ai          *fakeAIClient
	service     GradingService
}

func newGradingFixture(t *testing.T) *gradingFixture {
	t.Helper()
	rubric := loadTestRubric(t)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	fx := &gradingFixture{
		users:       newFakeUserRepo(),
		caseStudies: newFakeCaseStudyRepo(),
		logs:        &fakeConversationLogRepo{},
		grades:      newFakeGradeRepo(),
		transcripts: &fakeTranscriptSource{transcript: sampleTranscript()},
		ai:          &fakeAIClient{response: validResultJSON},
	}
	fx.service = NewGradingService(log, fx.users, fx.caseStudies, fx.logs, fx.grades, fx.transcripts, fx.ai, rubric, nil)
	return fx
}

func TestGradeConversationComputesWeightedScore(t *testing.T) {
	fx := newGradingFixture(t)

	result, err := fx.service.GradeConversation(context.Background(), "conv-1", "student@example.com", nil)
	if err != nil {
		t.Fatalf("GradeConversation: %v", err)
	}
	if result.FinalScore != 55 {
		t.Fatalf("final score: want=55 got=%d", result.FinalScore)
	}
	if fx.ai.calls != 1 {
		t.Fatalf("backend calls: want=1 got=%d", fx.ai.calls)
	}
	if len(fx.logs.logs) != 1 {
		t.Fatalf("stored transcripts: want=1 got=%d", len(fx.logs.logs))
	}
	if fx.users.created != 1 {
		t.Fatalf("created users: want=1 got=%d", fx.users.created)
	}
}

func TestGradeConversationIsIdempotent(t *testing.T) {
	fx := newGradingFixture(t)

	first, err := fx.service.GradeConversation(context.Background(), "conv-1", "student@example.com", nil)
	if err != nil {
		t.Fatalf("first GradeConversation: %v", err)
	}
	second, err := fx.service.GradeConversation(context.Background(), "conv-1", "student@example.com", nil)
	if err != nil {
		t.Fatalf("second GradeConversation: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ across calls:\nfirst=%+v\nsecond=%+v", first, second)
	}
	if fx.ai.calls != 1 {
		t.Fatalf("backend calls across both gradings: want=1 got=%d", fx.ai.calls)
	}
	if fx.transcripts.calls != 1 {
		t.Fatalf("transcript fetches across both gradings: want=1 got=%d", fx.transcripts.calls)
	}
	if len(fx.logs.logs) != 1 {
		t.Fatalf("stored transcripts: want=1 got=%d", len(fx.logs.logs))
	}
}

func TestGradeConversationTranscriptNotReady(t *testing.T) {
	fx := newGradingFixture(t)
	fx.transcripts.err = fmt.Errorf("%w: transcript still empty", apperr.ErrTranscriptNotReady)

	_, err := fx.service.GradeConversation(context.Background(), "conv-1", "student@example.com", nil)
	if !errors.Is(err, apperr.ErrTranscriptNotReady) {
		t.Fatalf("want ErrTranscriptNotReady, got %v", err)
	}
	if fx.ai.calls != 0 {
		t.Fatalf("backend must not run without a transcript, got %d calls", fx.ai.calls)
	}
	if len(fx.grades.byConversation) != 0 {
		t.Fatalf("no grade may be stored on fetch failure, got %d", len(fx.grades.byConversation))
	}
}

func TestGradeConversationMalformedBackendOutput(t *testing.T) {
	fx := newGradingFixture(t)
	fx.ai.response = "I cannot produce a grade for this conversation."

	_, err := fx.service.GradeConversation(context.Background(), "conv-1", "student@example.com", nil)
	if !errors.Is(err, apperr.ErrMalformedResult) {
		t.Fatalf("want ErrMalformedResult, got %v", err)
	}
	if len(fx.grades.byConversation) != 0 {
		t.Fatalf("no grade may be stored for malformed output, got %d", len(fx.grades.byConversation))
	}
	// The transcript was fetched before the failure and stays recorded.
	if len(fx.logs.logs) != 1 {
		t.Fatalf("stored transcripts: want=1 got=%d", len(fx.logs.logs))
	}
}

func TestGradeConversationUnknownCaseStudyStillGrades(t *testing.T) {
	fx := newGradingFixture(t)
	missing := uuid.New()

	result, err := fx.service.GradeConversation(context.Background(), "conv-1", "student@example.com", &missing)
	if err != nil {
		t.Fatalf("GradeConversation: %v", err)
	}
	if result.FinalScore != 55 {
		t.Fatalf("final score: want=55 got=%d", result.FinalScore)
	}
	if stored := fx.grades.byConversation["conv-1"]; stored.CaseStudyID != nil {
		t.Fatalf("stale case study reference must not be persisted")
	}
}

func TestGradeConversationDuplicateCreateReturnsWinner(t *testing.T) {
	fx := newGradingFixture(t)

	// A competing request lands its row between our existence check and
	// our insert. Simulate by pre-seeding the repo while keeping
	// FindByConversationID's first answer empty.
	winner, err := types.NewGrade(uuid.New(), nil, "conv-1", &types.GradingResult{
		OverallSummary:   "winner",
		FinalScore:       61,
		IndividualScores: map[string]int{"critical_thinking": 55, "comprehension": 60, "communication": 70},
	})
	if err != nil {
		t.Fatalf("NewGrade: %v", err)
	}
	racing := &racingGradeRepo{inner: fx.grades, winner: winner}
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	service := NewGradingService(log, fx.users, fx.caseStudies, fx.logs, racing, fx.transcripts, fx.ai, loadTestRubric(t), nil)

	result, err := service.GradeConversation(context.Background(), "conv-1", "student@example.com", nil)
	if err != nil {
		t.Fatalf("GradeConversation: %v", err)
	}
	if result.OverallSummary != "winner" {
		t.Fatalf("want the winning row's result, got %+v", result)
	}
}

// racingGradeRepo reports no grade on the first lookup, rejects the
// insert as a duplicate, then serves the winning row.
type racingGradeRepo struct {
	inner   *fakeGradeRepo
	winner  *types.Grade
	lookups int
}

func (r *racingGradeRepo) Create(ctx context.Context, tx *gorm.DB, grade *types.Grade) (*types.Grade, error) {
	return nil, gorm.ErrDuplicatedKey
}

func (r *racingGradeRepo) FindByConversationID(ctx context.Context, tx *gorm.DB, conversationID string) (*types.Grade, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.winner, nil
}

func (r *racingGradeRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Grade, error) {
	return r.inner.ListByUserID(ctx, tx, userID)
}
