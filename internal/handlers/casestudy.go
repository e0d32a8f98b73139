package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
	"github.com/mivamind/casegrade-backend/internal/services"
	"github.com/mivamind/casegrade-backend/internal/types"
)

type CaseStudyHandler struct {
	caseStudyService services.CaseStudyService
}

func NewCaseStudyHandler(caseStudyService services.CaseStudyService) *CaseStudyHandler {
	return &CaseStudyHandler{caseStudyService: caseStudyService}
}

type createCaseStudyRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	AgentID     string `json:"agent_id"`
}

func (ch *CaseStudyHandler) Create(c *gin.Context) {
	var req createCaseStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
		return
	}
	created, err := ch.caseStudyService.Create(c.Request.Context(), &types.CaseStudy{
		Title:       req.Title,
		Description: req.Description,
		AgentID:     req.AgentID,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"case_study": created})
}

func (ch *CaseStudyHandler) Get(c *gin.Context) {
	caseStudyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, fmt.Errorf("%w: invalid case study id", apperr.ErrInvalidArgument))
		return
	}
	found, err := ch.caseStudyService.Get(c.Request.Context(), caseStudyID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"case_study": found})
}

func (ch *CaseStudyHandler) List(c *gin.Context) {
	found, err := ch.caseStudyService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"case_studies": found})
}
