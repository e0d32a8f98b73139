package app

import (
	"github.com/mivamind/casegrade-backend/internal/handlers"
	"github.com/mivamind/casegrade-backend/internal/logger"
	"github.com/mivamind/casegrade-backend/internal/middleware"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Grade        *handlers.GradeHandler
	CaseStudy    *handlers.CaseStudyHandler
	Conversation *handlers.ConversationHandler
}

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireHandlers(cfg Config, serviceset Services, clients Clients) Handlers {
	return Handlers{
		Auth:         handlers.NewAuthHandler(serviceset.Auth),
		Grade:        handlers.NewGradeHandler(serviceset.Grading),
		CaseStudy:    handlers.NewCaseStudyHandler(serviceset.CaseStudy),
		Conversation: handlers.NewConversationHandler(clients.ElevenLabs, cfg.ElevenLabsAgentID),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, serviceset.Auth),
	}
}
