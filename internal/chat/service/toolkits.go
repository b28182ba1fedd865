package service

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/connector"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/cache"
	apperrors "github.com/jayabdulraman/social-agent-backend/internal/pkg/errors"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/response"
	"go.uber.org/zap"
)

const toolkitCacheTTL = 5 * time.Minute

// ToolkitService proxies the connector's toolkit catalog so the
// frontend never sees the connector API key.
type ToolkitService struct {
	registry *connector.Registry
	cfg      *conf.ConnectorConfig
	cache    *cache.Client
	log      *logger.Logger
}

// NewToolkitService creates a ToolkitService. cacheClient may be nil,
// which disables response caching.
func NewToolkitService(registry *connector.Registry, cfg *conf.ConnectorConfig, cacheClient *cache.Client, log *logger.Logger) *ToolkitService {
	return &ToolkitService{
		registry: registry,
		cfg:      cfg,
		cache:    cacheClient,
		log:      log,
	}
}

// HandleListToolkits serves GET /api/toolkits.
func (s *ToolkitService) HandleListToolkits(c *gin.Context) {
	client, err := s.client()
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrConnectorNotConfigured)
		return
	}

	category := c.Query("category")
	cursor := c.Query("cursor")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	key := fmt.Sprintf("toolkits:%s:%s:%d", category, cursor, limit)
	if data, ok := s.cached(c, key); ok {
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	data, err := client.ListToolkits(c.Request.Context(), category, cursor, limit)
	if err != nil {
		s.log.Error("toolkit listing failed", zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrConnectorRequestFailed)
		return
	}

	s.store(c, key, data)
	c.Data(http.StatusOK, "application/json", data)
}

// HandleListToolkitTools serves GET /api/toolkits/:slug/tools.
func (s *ToolkitService) HandleListToolkitTools(c *gin.Context) {
	client, err := s.client()
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrConnectorNotConfigured)
		return
	}

	slug := c.Param("slug")
	cursor := c.Query("cursor")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	key := fmt.Sprintf("toolkit-tools:%s:%s:%d", slug, cursor, limit)
	if data, ok := s.cached(c, key); ok {
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	data, err := client.ListToolkitTools(c.Request.Context(), slug, cursor, limit)
	if err != nil {
		s.log.Error("toolkit tool listing failed", zap.String("slug", slug), zap.Error(err))
		response.ErrorWithCode(c, apperrors.ErrConnectorRequestFailed)
		return
	}

	s.store(c, key, data)
	c.Data(http.StatusOK, "application/json", data)
}

// client returns a connector client using whichever integration has a
// key configured. The catalog endpoints are integration-agnostic.
func (s *ToolkitService) client() (*connector.Client, error) {
	integration := s.cfg.Twitter
	if integration.APIKey == "" {
		integration = s.cfg.LinkedIn
	}
	return s.registry.Acquire(&connector.Config{
		BaseURL:      s.cfg.BaseURL,
		APIKey:       integration.APIKey,
		AuthConfigID: integration.AuthConfigID,
		Timeout:      s.cfg.Timeout,
	})
}

func (s *ToolkitService) cached(c *gin.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.GetBytes(c.Request.Context(), key)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *ToolkitService) store(c *gin.Context, key string, data []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetBytes(c.Request.Context(), key, data, toolkitCacheTTL); err != nil {
		s.log.Warn("toolkit cache write failed", zap.Error(err))
	}
}
