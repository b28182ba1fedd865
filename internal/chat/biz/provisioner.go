package biz

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/connector"
	llmtypes "github.com/jayabdulraman/social-agent-backend/internal/llm/types"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// ExecFunc runs one provisioned tool with raw JSON arguments.
type ExecFunc func(ctx context.Context, args json.RawMessage) (*connector.ExecutionResult, error)

// ProvisionedTool pairs a tool definition with its bound executor.
type ProvisionedTool struct {
	Definition llmtypes.Tool
	Toolkit    string
	Execute    ExecFunc
}

// ToolProvisioner obtains callable tools for a user and tool
// categories. An empty result means "no tools available" and is
// never an error.
type ToolProvisioner interface {
	Provision(ctx context.Context, userID string, categories []string) map[string]ProvisionedTool
}

// Provisioner resolves tool categories against the connector service.
type Provisioner struct {
	registry *connector.Registry
	cfg      *conf.ConnectorConfig
	log      *logger.Logger
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(registry *connector.Registry, cfg *conf.ConnectorConfig, log *logger.Logger) *Provisioner {
	return &Provisioner{
		registry: registry,
		cfg:      cfg,
		log:      log,
	}
}

// Provision maps the requested categories to connector integrations
// and fetches their tool definitions. Unknown categories, missing
// credentials and connector failures all degrade to an empty result;
// the caller falls back to plain generation.
func (p *Provisioner) Provision(ctx context.Context, userID string, categories []string) map[string]ProvisionedTool {
	tools := make(map[string]ProvisionedTool)

	for _, category := range categories {
		integration, toolkit := p.matchIntegration(category)
		if integration == nil {
			p.log.Debug("unknown tool category", zap.String("category", category))
			continue
		}

		client, err := p.registry.Acquire(&connector.Config{
			BaseURL:      p.cfg.BaseURL,
			APIKey:       integration.APIKey,
			AuthConfigID: integration.AuthConfigID,
			Timeout:      p.cfg.Timeout,
		})
		if err != nil {
			p.log.Debug("connector unavailable for category",
				zap.String("category", category),
				zap.Error(err),
			)
			continue
		}

		defs, err := client.GetTools(ctx, userID, []string{toolkit})
		if err != nil {
			p.log.Warn("tool provisioning failed",
				zap.String("toolkit", toolkit),
				zap.Error(err),
			)
			continue
		}

		for _, def := range defs {
			slug := def.Slug
			tools[slug] = ProvisionedTool{
				Definition: llmtypes.NewTool(slug, def.Description, parameterSchema(def.InputParameters)),
				Toolkit:    toolkit,
				Execute: func(ctx context.Context, args json.RawMessage) (*connector.ExecutionResult, error) {
					return client.ExecuteTool(ctx, slug, userID, args)
				},
			}
		}
	}

	return tools
}

func (p *Provisioner) matchIntegration(category string) (*conf.ConnectorIntegrationConfig, string) {
	upper := strings.ToUpper(category)
	switch {
	case strings.Contains(upper, "TWITTER"):
		return &p.cfg.Twitter, "TWITTER"
	case strings.Contains(upper, "LINKEDIN"):
		return &p.cfg.LinkedIn, "LINKEDIN"
	default:
		return nil, ""
	}
}

func parameterSchema(raw json.RawMessage) map[string]interface{} {
	var schema map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &schema); err == nil && len(schema) > 0 {
			return schema
		}
	}
	return map[string]interface{}{"type": "object"}
}
