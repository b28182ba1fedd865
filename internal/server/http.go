package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	chatservice "github.com/jayabdulraman/social-agent-backend/internal/chat/service"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	socialservice "github.com/jayabdulraman/social-agent-backend/internal/social/service"
	"go.uber.org/zap"
)

// Services groups the HTTP handler sets the server exposes.
type Services struct {
	Chat     *chatservice.ChatService
	Toolkits *chatservice.ToolkitService
	Twitter  *socialservice.TwitterService
	LinkedIn *socialservice.LinkedInService
}

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(config *conf.Config, log *logger.Logger, services *Services) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.GinLogger(log))
	router.Use(logger.GinRecovery(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/chat", services.Chat.HandleChat)

		api.GET("/toolkits", services.Toolkits.HandleListToolkits)
		api.GET("/toolkits/:slug/tools", services.Toolkits.HandleListToolkitTools)

		twitter := api.Group("/twitter")
		{
			twitter.POST("/post", services.Twitter.HandlePost)
			twitter.POST("/auth", services.Twitter.HandleAuth)
			twitter.GET("/auth", services.Twitter.HandleAuthCallback)
			twitter.GET("/status", services.Twitter.HandleStatus)
		}

		linkedin := api.Group("/linkedin")
		{
			linkedin.POST("/post", services.LinkedIn.HandlePost)
			linkedin.POST("/auth", services.LinkedIn.HandleAuth)
			linkedin.GET("/auth", services.LinkedIn.HandleAuthCallback)
			linkedin.GET("/status", services.LinkedIn.HandleStatus)
			linkedin.GET("/profile", services.LinkedIn.HandleProfile)
		}
	}

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
			// No global write timeout: chat responses stream for as
			// long as the orchestrator runs.
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
