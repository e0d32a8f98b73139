package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mivamind/casegrade-backend/internal/handlers"
	"github.com/mivamind/casegrade-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName         string
	AllowedOrigins      []string
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	GradeHandler        *handlers.GradeHandler
	CaseStudyHandler    *handlers.CaseStudyHandler
	ConversationHandler *handlers.ConversationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Grading
	protected.POST("/grade/:conversation_id", cfg.GradeHandler.GradeConversation)
	protected.GET("/grades", cfg.GradeHandler.ListGrades)
	protected.GET("/grades/:conversation_id", cfg.GradeHandler.GetGrade)
	// Case studies
	protected.POST("/case-studies", cfg.CaseStudyHandler.Create)
	protected.GET("/case-studies", cfg.CaseStudyHandler.List)
	protected.GET("/case-studies/:id", cfg.CaseStudyHandler.Get)
	// Voice sessions
	protected.GET("/signed-url", cfg.ConversationHandler.GetSignedURL)

	return router
}
