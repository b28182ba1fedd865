package service

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jayabdulraman/social-agent-backend/internal/chat/types"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/response"
	"github.com/jayabdulraman/social-agent-backend/internal/stream"
	"go.uber.org/zap"
)

const errorApology = "Sorry, I encountered an error processing your request."

// Runner executes one chat request against an encoder. It is
// satisfied by biz.Orchestrator.
type Runner interface {
	Run(ctx context.Context, req *types.ChatRequest, userID string, enc *stream.Encoder) error
}

// ChatService handles POST /api/chat.
type ChatService struct {
	orchestrator Runner
	cfg          *conf.ChatConfig
	log          *logger.Logger
}

// NewChatService creates a ChatService.
func NewChatService(orchestrator Runner, cfg *conf.ChatConfig, log *logger.Logger) *ChatService {
	return &ChatService{
		orchestrator: orchestrator,
		cfg:          cfg,
		log:          log,
	}
}

// HandleChat runs one chat request and streams the response as plain
// text with embedded event segments.
func (s *ChatService) HandleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "messages are required")
		return
	}
	if req.LastUserContent() == "" {
		response.BadRequest(c, "message content is required")
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = s.cfg.DefaultUserID
	}

	// Fixed ceiling for the whole request; in-flight provider calls
	// are simply truncated when it expires.
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")

	enc := stream.NewEncoder(c.Writer)
	if err := s.orchestrator.Run(ctx, &req, userID, enc); err != nil {
		s.log.Error("chat request failed", zap.Error(err))

		if !c.Writer.Written() {
			c.String(http.StatusInternalServerError, errorApology)
			return
		}
		// Partial output is already on the wire and is not retracted;
		// the error is appended as visible text.
		_ = enc.WriteText("\n\n" + errorApology)
	}
	_ = enc.Close()
}
