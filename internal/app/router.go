package app

import (
	"github.com/gin-gonic/gin"

	"github.com/mivamind/casegrade-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:         "casegrade-backend",
		AllowedOrigins:      cfg.AllowedOrigins,
		AuthHandler:         handlerset.Auth,
		AuthMiddleware:      middlewareset.Auth,
		GradeHandler:        handlerset.Grade,
		CaseStudyHandler:    handlerset.CaseStudy,
		ConversationHandler: handlerset.Conversation,
	})
}
