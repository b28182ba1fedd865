package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/connector"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/cache"
	apperrors "github.com/jayabdulraman/social-agent-backend/internal/pkg/errors"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	statusCacheTTL = 60 * time.Second

	// Ceiling for one publish: the posting-agent call plus the
	// connector execution.
	publishTimeout = 30 * time.Second
)

type postRequest struct {
	Content  string `json:"content"`
	UserID   string `json:"userId"`
	AuthorID string `json:"authorId"`
}

type authRequest struct {
	UserID string `json:"userId"`
}

type statusResponse struct {
	Authenticated bool   `json:"authenticated"`
	ConnectionID  string `json:"connectionId,omitempty"`
	Status        string `json:"status,omitempty"`
}

// platformService carries what the twitter and linkedin handlers share:
// connector access for one integration and the cached status check.
type platformService struct {
	platform      string
	registry      *connector.Registry
	baseURL       string
	timeout       time.Duration
	integration   conf.ConnectorIntegrationConfig
	defaultUserID string
	verifyTool    string
	cache         *cache.Client
	log           *logger.Logger
}

func (s *platformService) client() (*connector.Client, error) {
	return s.registry.Acquire(&connector.Config{
		BaseURL:      s.baseURL,
		APIKey:       s.integration.APIKey,
		AuthConfigID: s.integration.AuthConfigID,
		Timeout:      s.timeout,
	})
}

// connectionStatus resolves the link state for a user, verifying a
// reportedly active connection with a cheap read-only tool call. The
// result is cached briefly so the frontend can poll.
func (s *platformService) connectionStatus(ctx context.Context, userID, connectionID string) statusResponse {
	key := s.platform + ":status:" + userID + ":" + connectionID
	if s.cache != nil {
		var cached statusResponse
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached
		}
	}

	resp := s.lookupStatus(ctx, userID, connectionID)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, resp, statusCacheTTL); err != nil {
			s.log.Warn("status cache write failed", zap.Error(err))
		}
	}
	return resp
}

func (s *platformService) lookupStatus(ctx context.Context, userID, connectionID string) statusResponse {
	client, err := s.client()
	if err != nil {
		return statusResponse{Authenticated: false}
	}

	var status *connector.ConnectionStatus
	if connectionID != "" {
		status, err = client.GetConnection(ctx, connectionID)
	} else {
		status, err = client.GetUserConnection(ctx, userID)
	}
	if err != nil {
		s.log.Warn("connection status lookup failed",
			zap.String("platform", s.platform),
			zap.Error(err),
		)
		return statusResponse{Authenticated: false}
	}

	resp := statusResponse{
		Authenticated: status.Authenticated,
		ConnectionID:  status.ID,
		Status:        status.Status,
	}

	// An ACTIVE record can still carry revoked credentials; only a
	// successful tool call proves the link works.
	if resp.Authenticated && s.verifyTool != "" {
		result, verr := client.ExecuteTool(ctx, s.verifyTool, userID, json.RawMessage("{}"))
		if verr != nil || !result.Successful {
			resp.Authenticated = false
			resp.Status = "EXPIRED"
		}
	}
	return resp
}

// postError writes the publish endpoints' error shape.
func postError(c *gin.Context, err error) {
	code := apperrors.ExtractCode(err)
	c.JSON(apperrors.GetHTTPStatus(code), gin.H{
		"success": false,
		"error":   apperrors.FormatError(code, apperrors.GetDetails(err)),
	})
}

func missingFields(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}
