package service

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/connector"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/cache"
	apperrors "github.com/jayabdulraman/social-agent-backend/internal/pkg/errors"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/response"
	"github.com/jayabdulraman/social-agent-backend/internal/social/biz"
	"go.uber.org/zap"
)

const twitterVerifyTool = "TWITTER_USER_LOOKUP_ME"

// TwitterService handles the /api/twitter endpoints.
type TwitterService struct {
	platformService
	publisher *biz.Publisher
}

// NewTwitterService creates a TwitterService. cacheClient may be nil.
func NewTwitterService(publisher *biz.Publisher, registry *connector.Registry, cfg *conf.ConnectorConfig, chatCfg *conf.ChatConfig, cacheClient *cache.Client, log *logger.Logger) *TwitterService {
	return &TwitterService{
		platformService: platformService{
			platform:      "twitter",
			registry:      registry,
			baseURL:       cfg.BaseURL,
			timeout:       cfg.Timeout,
			integration:   cfg.Twitter,
			defaultUserID: chatCfg.DefaultUserID,
			verifyTool:    twitterVerifyTool,
			cache:         cacheClient,
			log:           log,
		},
		publisher: publisher,
	}
}

// HandlePost serves POST /api/twitter/post.
func (s *TwitterService) HandlePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" || req.UserID == "" {
		missingFields(c, "Content and userId are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), publishTimeout)
	defer cancel()

	card, err := s.publisher.PublishTweet(ctx, req.Content, req.UserID)
	if err != nil {
		s.log.Error("tweet publish failed", zap.Error(err))
		postError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Tweet posted successfully!",
		"twitterData": card,
	})
}

// HandleAuth serves POST /api/twitter/auth and starts account linking.
func (s *TwitterService) HandleAuth(c *gin.Context) {
	var req authRequest
	_ = c.ShouldBindJSON(&req)
	userID := req.UserID
	if userID == "" {
		userID = s.defaultUserID
	}

	client, err := s.client()
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrConnectorNotConfigured)
		return
	}

	conn, err := client.InitiateConnection(c.Request.Context(), userID)
	if err != nil {
		s.log.Error("twitter auth initiation failed", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrConnectorAuthFailed)
		return
	}

	c.JSON(http.StatusOK, conn)
}

// HandleAuthCallback serves GET /api/twitter/auth, the browser return
// leg of the OAuth flow. The connector tracks the real state; this just
// tells the user the window can close.
func (s *TwitterService) HandleAuthCallback(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Authentication completed. You can close this window.",
	})
}

// HandleStatus serves GET /api/twitter/status.
func (s *TwitterService) HandleStatus(c *gin.Context) {
	userID := c.DefaultQuery("userId", s.defaultUserID)
	connectionID := c.Query("connectionId")
	c.JSON(http.StatusOK, s.connectionStatus(c.Request.Context(), userID, connectionID))
}
