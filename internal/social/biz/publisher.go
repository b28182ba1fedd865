package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/connector"
	llmtypes "github.com/jayabdulraman/social-agent-backend/internal/llm/types"
	apperrors "github.com/jayabdulraman/social-agent-backend/internal/pkg/errors"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	"github.com/jayabdulraman/social-agent-backend/internal/social/data"
	"github.com/jayabdulraman/social-agent-backend/internal/social/types"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// The posting agent always runs on a fixed, cheap model; the user's
// chat model selection does not apply to the publish action.
const publishModel = "gpt-4.1-mini"

const (
	twitterCreationTool  = "TWITTER_CREATION_OF_A_POST"
	linkedinCreationTool = "LINKEDIN_CREATE_LINKED_IN_POST"
)

// Publisher executes the explicit publish action: one model call with
// the single creation tool, connector execution, result parsing and
// the preview to posted card transition.
type Publisher struct {
	providers llmtypes.Factory
	registry  *connector.Registry
	repo      *data.CardRepo
	cfg       *conf.ConnectorConfig
	log       *logger.Logger
}

// NewPublisher creates a Publisher. repo may be nil, which disables
// card persistence.
func NewPublisher(providers llmtypes.Factory, registry *connector.Registry, repo *data.CardRepo, cfg *conf.ConnectorConfig, log *logger.Logger) *Publisher {
	return &Publisher{
		providers: providers,
		registry:  registry,
		repo:      repo,
		cfg:       cfg,
		log:       log,
	}
}

// PublishTweet posts content to Twitter and returns the success card.
func (p *Publisher) PublishTweet(ctx context.Context, content, userID string) (*types.Card, error) {
	client, err := p.acquire(p.cfg.Twitter)
	if err != nil {
		return nil, err
	}

	result, err := p.runPostingAgent(ctx, client, userID, twitterCreationTool,
		fmt.Sprintf("Post this tweet exactly as written: %s", content),
		map[string]interface{}{"text": content},
	)
	if err != nil {
		return nil, err
	}

	tweetID := gjson.GetBytes(result.Data, "data.id").String()
	if tweetID == "" {
		return nil, apperrors.New(apperrors.ErrPostResultUnparsed, "tweet id missing from result")
	}

	postedText := gjson.GetBytes(result.Data, "data.text").String()
	if postedText == "" {
		postedText = content
	}

	card := &types.Card{
		Type:      types.CardTwitterSuccess,
		Content:   postedText,
		UserID:    userID,
		Timestamp: time.Now().UnixMilli(),
		Posted:    true,
		TweetID:   tweetID,
		TweetURL:  fmt.Sprintf(types.TwitterPostURLTemplate, tweetID),
	}

	p.persist(ctx, "twitter", content, card, tweetID, card.TweetURL)
	return card, nil
}

// PublishLinkedInPost posts content to LinkedIn and returns the
// success card. authorID is the member urn the post is published as.
func (p *Publisher) PublishLinkedInPost(ctx context.Context, content, userID, authorID string) (*types.Card, error) {
	client, err := p.acquire(p.cfg.LinkedIn)
	if err != nil {
		return nil, err
	}

	result, err := p.runPostingAgent(ctx, client, userID, linkedinCreationTool,
		fmt.Sprintf("Publish this LinkedIn post exactly as written: %s", content),
		map[string]interface{}{
			"author":     authorID,
			"commentary": content,
			"visibility": "PUBLIC",
		},
	)
	if err != nil {
		return nil, err
	}

	shareID := gjson.GetBytes(result.Data, "response_data.share_id").String()
	if shareID == "" {
		shareID = gjson.GetBytes(result.Data, "id").String()
	}
	if shareID == "" {
		return nil, apperrors.New(apperrors.ErrPostResultUnparsed, "share id missing from result")
	}

	card := &types.Card{
		Type:      types.CardLinkedInSuccess,
		Content:   content,
		UserID:    userID,
		Timestamp: time.Now().UnixMilli(),
		Posted:    true,
		PostID:    shareID,
		PostURL:   fmt.Sprintf(types.LinkedInPostURLTemplate, shareID),
	}

	p.persist(ctx, "linkedin", content, card, shareID, card.PostURL)
	return card, nil
}

func (p *Publisher) acquire(integration conf.ConnectorIntegrationConfig) (*connector.Client, error) {
	client, err := p.registry.Acquire(&connector.Config{
		BaseURL:      p.cfg.BaseURL,
		APIKey:       integration.APIKey,
		AuthConfigID: integration.AuthConfigID,
		Timeout:      p.cfg.Timeout,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConnectorNotConfigured)
	}
	return client, nil
}

// runPostingAgent asks the model to issue the creation tool call,
// falling back to defaultArgs when it answers in prose, then executes
// the call through the connector.
func (p *Publisher) runPostingAgent(ctx context.Context, client *connector.Client, userID, toolSlug, prompt string, defaultArgs map[string]interface{}) (*connector.ExecutionResult, error) {
	args, err := json.Marshal(defaultArgs)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "marshal tool arguments")
	}

	if provider, perr := p.providers.CreateProvider("openai"); perr == nil {
		resp, cerr := provider.CreateChatCompletion(ctx, llmtypes.ChatCompletionRequest{
			Model: publishModel,
			Messages: []llmtypes.Message{
				llmtypes.SystemMessage("You post content to social media using the provided tool. Always call the tool with the content exactly as given."),
				llmtypes.UserMessage(prompt),
			},
			Tools: []llmtypes.Tool{
				llmtypes.NewTool(toolSlug, "Publish the post", nil),
			},
			ToolChoice: llmtypes.Auto(),
		})
		if cerr == nil {
			for _, tc := range resp.FirstMessage().ToolCalls {
				if tc.Function.Name == toolSlug && tc.Function.Arguments != "" {
					args = json.RawMessage(tc.Function.Arguments)
					break
				}
			}
		} else {
			p.log.Warn("posting agent call failed, using direct arguments", zap.Error(cerr))
		}
	}

	result, err := client.ExecuteTool(ctx, toolSlug, userID, args)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConnectorExecuteFailed)
	}
	if !result.Successful {
		return nil, apperrors.New(apperrors.ErrPostPublishFailed, result.Error)
	}
	return result, nil
}

// persist records the publish outcome, transitioning a matching
// preview card when one exists. Persistence failures are logged, not
// surfaced; the post already happened.
func (p *Publisher) persist(ctx context.Context, platform, originalContent string, card *types.Card, postID, postURL string) {
	if p.repo == nil {
		return
	}

	preview, err := p.repo.FindLatestPreview(ctx, platform, card.UserID, originalContent)
	if err != nil {
		p.log.Warn("preview lookup failed", zap.Error(err))
		return
	}

	if preview != nil {
		if err := p.repo.MarkPosted(ctx, preview.ID, postID, postURL); err != nil {
			p.log.Warn("card transition failed", zap.String("id", preview.ID), zap.Error(err))
		}
		return
	}

	if _, err := p.repo.SavePosted(ctx, platform, card); err != nil {
		p.log.Warn("posted card save failed", zap.Error(err))
	}
}
