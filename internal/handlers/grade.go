package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
	"github.com/mivamind/casegrade-backend/internal/requestdata"
	"github.com/mivamind/casegrade-backend/internal/services"
)

type GradeHandler struct {
	gradingService services.GradingService
}

func NewGradeHandler(gradingService services.GradingService) *GradeHandler {
	return &GradeHandler{gradingService: gradingService}
}

type gradeRequest struct {
	CaseStudyID *uuid.UUID `json:"case_study_id"`
}

// GradeConversation triggers the grading pipeline for one conversation.
// Re-posting a graded conversation returns the stored result unchanged.
func (gh *GradeHandler) GradeConversation(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, fmt.Errorf("%w: no authenticated user", apperr.ErrUnauthorized))
		return
	}
	conversationID := c.Param("conversation_id")

	var req gradeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
			return
		}
	}

	result, err := gh.gradingService.GradeConversation(c.Request.Context(), conversationID, rd.Email, req.CaseStudyID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (gh *GradeHandler) GetGrade(c *gin.Context) {
	grade, err := gh.gradingService.GetGrade(c.Request.Context(), c.Param("conversation_id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	result, err := grade.Result()
	if err != nil {
		RespondError(c, fmt.Errorf("%w: decode stored grade: %v", apperr.ErrPersistence, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversation_id": grade.ConversationID,
		"timestamp":       grade.Timestamp,
		"grade":           result,
	})
}

func (gh *GradeHandler) ListGrades(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, fmt.Errorf("%w: no authenticated user", apperr.ErrUnauthorized))
		return
	}
	grades, err := gh.gradingService.ListGradesForUser(c.Request.Context(), rd.Email)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"grades": grades})
}
