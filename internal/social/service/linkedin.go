package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/connector"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/cache"
	apperrors "github.com/jayabdulraman/social-agent-backend/internal/pkg/errors"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/response"
	"github.com/jayabdulraman/social-agent-backend/internal/social/biz"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const linkedinVerifyTool = "LINKEDIN_GET_MY_INFO"

// LinkedInService handles the /api/linkedin endpoints.
type LinkedInService struct {
	platformService
	publisher *biz.Publisher
}

// NewLinkedInService creates a LinkedInService. cacheClient may be nil.
func NewLinkedInService(publisher *biz.Publisher, registry *connector.Registry, cfg *conf.ConnectorConfig, chatCfg *conf.ChatConfig, cacheClient *cache.Client, log *logger.Logger) *LinkedInService {
	return &LinkedInService{
		platformService: platformService{
			platform:      "linkedin",
			registry:      registry,
			baseURL:       cfg.BaseURL,
			timeout:       cfg.Timeout,
			integration:   cfg.LinkedIn,
			defaultUserID: chatCfg.DefaultUserID,
			verifyTool:    linkedinVerifyTool,
			cache:         cacheClient,
			log:           log,
		},
		publisher: publisher,
	}
}

// HandlePost serves POST /api/linkedin/post. LinkedIn additionally
// needs the member urn the post is attributed to.
func (s *LinkedInService) HandlePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" || req.UserID == "" {
		missingFields(c, "Content and userId are required")
		return
	}
	if req.AuthorID == "" {
		missingFields(c, "Author ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), publishTimeout)
	defer cancel()

	card, err := s.publisher.PublishLinkedInPost(ctx, req.Content, req.UserID, req.AuthorID)
	if err != nil {
		s.log.Error("linkedin publish failed", zap.Error(err))
		postError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "LinkedIn post published successfully!",
		"linkedinData": card,
	})
}

// HandleProfile serves GET /api/linkedin/profile. It fetches the
// authenticated member's profile through the connector and extracts
// the author urn that HandlePost requires.
func (s *LinkedInService) HandleProfile(c *gin.Context) {
	userID := c.DefaultQuery("userId", s.defaultUserID)

	client, err := s.client()
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrConnectorNotConfigured)
		return
	}

	result, err := client.ExecuteTool(c.Request.Context(), linkedinVerifyTool, userID, json.RawMessage("{}"))
	if err != nil {
		s.log.Error("linkedin profile fetch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to get LinkedIn profile",
		})
		return
	}
	if !result.Successful {
		message := result.Error
		if message == "" {
			message = "Failed to get LinkedIn profile"
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   message,
		})
		return
	}

	profile := gjson.GetBytes(result.Data, "response_dict")
	authorID := profile.Get("author_id").String()
	if authorID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Could not extract author ID from LinkedIn profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"authorId": authorID,
		"profile": gin.H{
			"id":          authorID,
			"name":        profile.Get("name").String(),
			"given_name":  profile.Get("given_name").String(),
			"family_name": profile.Get("family_name").String(),
			"email":       profile.Get("email").String(),
			"picture":     profile.Get("picture").String(),
			"locale":      profile.Get("locale").Value(),
		},
		"rawData": json.RawMessage(profile.Raw),
	})
}

// HandleAuth serves POST /api/linkedin/auth.
func (s *LinkedInService) HandleAuth(c *gin.Context) {
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
		s.log.Error("linkedin auth initiation failed", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrConnectorAuthFailed)
		return
	}

	c.JSON(http.StatusOK, conn)
}

// HandleAuthCallback serves GET /api/linkedin/auth.
func (s *LinkedInService) HandleAuthCallback(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Authentication completed. You can close this window.",
	})
}

// HandleStatus serves GET /api/linkedin/status.
func (s *LinkedInService) HandleStatus(c *gin.Context) {
	userID := c.DefaultQuery("userId", s.defaultUserID)
	connectionID := c.Query("connectionId")
	c.JSON(http.StatusOK, s.connectionStatus(c.Request.Context(), userID, connectionID))
}
