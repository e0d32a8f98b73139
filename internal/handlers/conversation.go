package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mivamind/casegrade-backend/internal/pkg/apperr"
)

// SignedURLProvider hands out short-lived session URLs for the voice
// agent. The ElevenLabs client satisfies it.
type SignedURLProvider interface {
	GetSignedURL(ctx context.Context, agentID string) (string, error)
}

type ConversationHandler struct {
	signedURLs     SignedURLProvider
	defaultAgentID string
}

func NewConversationHandler(signedURLs SignedURLProvider, defaultAgentID string) *ConversationHandler {
	return &ConversationHandler{signedURLs: signedURLs, defaultAgentID: defaultAgentID}
}

// GetSignedURL proxies the signed-url request so the agent API key
// never reaches the browser.
func (ch *ConversationHandler) GetSignedURL(c *gin.Context) {
	agentID := c.Query("agent_id")
	if agentID == "" {
		agentID = ch.defaultAgentID
	}
	if agentID == "" {
		RespondError(c, fmt.Errorf("%w: agent_id required", apperr.ErrInvalidArgument))
		return
	}
	signedURL, err := ch.signedURLs.GetSignedURL(c.Request.Context(), agentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"signed_url": signedURL})
}
