package app

import (
	"fmt"

	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	CaseStudy services.CaseStudyService
	Grading   services.GradingService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	authService, err := services.NewAuthService(log, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	caseStudyService := services.NewCaseStudyService(log, reposet.CaseStudy)

	aiClient, err := services.NewOpenAIClient(log, services.AIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Timeout:     cfg.OpenAITimeout,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init openai client: %w", err)
	}

	rubric, err := services.LoadRubric()
	if err != nil {
		return Services{}, fmt.Errorf("load rubric: %w", err)
	}

	// A nil *GradeCache must stay a nil interface inside the grading
	// service, so the conversion is explicit here.
	var cache services.GradeCache
	if clients.GradeCache != nil {
		cache = clients.GradeCache
	}

	gradingService := services.NewGradingService(
		log,
		reposet.User,
		reposet.CaseStudy,
		reposet.ConversationLog,
		reposet.Grade,
		clients.ElevenLabs,
		aiClient,
		rubric,
		cache,
	)

	return Services{
		Auth:      authService,
		CaseStudy: caseStudyService,
		Grading:   gradingService,
	}, nil
}
