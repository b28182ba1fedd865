package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	chatbiz "github.com/jayabdulraman/social-agent-backend/internal/chat/biz"
	chatservice "github.com/jayabdulraman/social-agent-backend/internal/chat/service"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/connector"
	"github.com/jayabdulraman/social-agent-backend/internal/data"
	llmfactory "github.com/jayabdulraman/social-agent-backend/internal/llm/factory"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/jayabdulraman/social-agent-backend/internal/server"
	socialbiz "github.com/jayabdulraman/social-agent-backend/internal/social/biz"
	socialdata "github.com/jayabdulraman/social-agent-backend/internal/social/data"
	socialservice "github.com/jayabdulraman/social-agent-backend/internal/social/service"
	searchprovider "github.com/jayabdulraman/social-agent-backend/internal/websearch/provider"
	searchtypes "github.com/jayabdulraman/social-agent-backend/internal/websearch/types"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully")

	d, cleanup, err := data.New(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Model providers and tool connector.
	providers := llmfactory.New(&config.LLM)
	defer providers.Close()

	registry := connector.NewRegistry(log)
	provisioner := chatbiz.NewProvisioner(registry, &config.Connector, log)

	searcher := newSearcher(config, log)

	orchestrator := chatbiz.NewOrchestrator(providers, provisioner, searcher, &config.Chat, log)

	var cardRepo *socialdata.CardRepo
	if d.DB != nil {
		cardRepo = socialdata.NewCardRepo(d.DB, log)
		orchestrator.SetCardStore(cardRepo)
	}

	publisher := socialbiz.NewPublisher(providers, registry, cardRepo, &config.Connector, log)

	services := &server.Services{
		Chat:     chatservice.NewChatService(orchestrator, &config.Chat, log),
		Toolkits: chatservice.NewToolkitService(registry, &config.Connector, d.Cache, log),
		Twitter:  socialservice.NewTwitterService(publisher, registry, &config.Connector, &config.Chat, d.Cache, log),
		LinkedIn: socialservice.NewLinkedInService(publisher, registry, &config.Connector, &config.Chat, d.Cache, log),
	}

	httpServer := server.NewHTTPServer(config, log, services)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// newSearcher builds the web-search provider, or nil when none is
// configured. The research workflow degrades gracefully without one.
func newSearcher(config *conf.Config, log *logger.Logger) searchprovider.Provider {
	if config.WebSearch.Provider == "" {
		log.Warn("web search not configured, research workflow disabled")
		return nil
	}

	searcher, err := searchprovider.NewFactory().Create(&searchtypes.ProviderConfig{
		ID:         searchtypes.ProviderID(config.WebSearch.Provider),
		Name:       config.WebSearch.Provider,
		APIHost:    config.WebSearch.APIHost,
		APIKey:     config.WebSearch.APIKey,
		Timeout:    config.WebSearch.Timeout,
		MaxRetries: config.WebSearch.MaxRetries,
	})
	if err != nil {
		log.Warn("web search provider init failed", zap.Error(err))
		return nil
	}
	return searcher
}
