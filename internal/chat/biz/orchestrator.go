package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	chattypes "github.com/jayabdulraman/social-agent-backend/internal/chat/types"
	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	llmtypes "github.com/jayabdulraman/social-agent-backend/internal/llm/types"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	socialtypes "github.com/jayabdulraman/social-agent-backend/internal/social/types"
	"github.com/jayabdulraman/social-agent-backend/internal/stream"
	searchprovider "github.com/jayabdulraman/social-agent-backend/internal/websearch/provider"
	wstypes "github.com/jayabdulraman/social-agent-backend/internal/websearch/types"
	"go.uber.org/zap"
)

// Mode is the orchestration strategy for one request.
type Mode int

const (
	// ModePlain is a single completion with no tools.
	ModePlain Mode = iota
	// ModeToolAugmented lets the model call connector tools, then
	// narrates the results in a second, tools-disabled call.
	ModeToolAugmented
	// ModeResearchPublish runs the research-then-synthesize workflow
	// and emits a preview card instead of publishing.
	ModeResearchPublish
)

const (
	maxTweetLength = 280

	plainSystemPrompt = "You are a helpful assistant. If the user asks you to post " +
		"to Twitter/X or LinkedIn, let them know they can enable the corresponding " +
		"tools for this chat to do it directly."

	toolSystemPrompt = "You are a helpful assistant with access to external tools. " +
		"Decide on your own whether a tool is needed to fulfil the request. " +
		"When you call a tool, use the exact argument schema it declares."

	researchSystemPrompt = "You are a research assistant. Use the web_search tool to " +
		"gather current information on the user's topic, then write a concise research " +
		"summary of the findings."

	synthesisSystemPrompt = "You are a social media copywriter. Using the research " +
		"summary provided, write a single short, opinionated post about the topic. " +
		"Stay under 280 characters, no hashtag spam. End your reply with a line in " +
		"exactly this form:\nTWEET_CONTENT: <the post text>"
)

var tweetContentPattern = regexp.MustCompile(`TWEET_CONTENT:\s*(.+)`)

// CardStore persists preview cards produced by the research workflow.
type CardStore interface {
	SavePreview(ctx context.Context, platform string, card *socialtypes.Card) (string, error)
}

// Orchestrator drives one chat request through the selected mode.
type Orchestrator struct {
	providers   llmtypes.Factory
	provisioner ToolProvisioner
	searcher    searchprovider.Provider
	cards       CardStore
	log         *logger.Logger

	maxSteps      int
	maxToolRounds int
}

// NewOrchestrator creates an Orchestrator. searcher may be nil, which
// disables the research step of ModeResearchPublish.
func NewOrchestrator(
	providers llmtypes.Factory,
	provisioner ToolProvisioner,
	searcher searchprovider.Provider,
	cfg *conf.ChatConfig,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		providers:     providers,
		provisioner:   provisioner,
		searcher:      searcher,
		log:           log,
		maxSteps:      cfg.MaxSteps,
		maxToolRounds: cfg.MaxToolRounds,
	}
}

// SetCardStore enables preview-card persistence.
func (o *Orchestrator) SetCardStore(store CardStore) {
	o.cards = store
}

// SelectMode picks the orchestration strategy from the requested tool
// categories.
func SelectMode(categories []string) Mode {
	if len(categories) == 0 {
		return ModePlain
	}
	for _, category := range categories {
		if strings.Contains(strings.ToUpper(category), "TWITTER") {
			return ModeResearchPublish
		}
	}
	return ModeToolAugmented
}

// Run executes the request and writes the response to enc. Errors are
// returned after whatever partial output was already streamed; the
// caller decides how to surface them.
func (o *Orchestrator) Run(ctx context.Context, req *chattypes.ChatRequest, userID string, enc *stream.Encoder) error {
	handle := ResolveModel(req.Model)

	provider, err := o.providers.CreateProvider(handle.Provider)
	if err != nil {
		return fmt.Errorf("create provider %s: %w", handle.Provider, err)
	}

	mode := SelectMode(req.Tools)
	o.log.Info("chat request",
		zap.String("model", handle.ModelID),
		zap.String("provider", handle.Provider),
		zap.Int("mode", int(mode)),
		zap.Int("messages", len(req.Messages)),
	)

	switch mode {
	case ModeToolAugmented:
		return o.runToolAugmented(ctx, provider, handle, req, userID, enc)
	case ModeResearchPublish:
		return o.runResearchPublish(ctx, provider, handle, req, userID, enc)
	default:
		return o.runPlain(ctx, provider, handle, req, enc)
	}
}

func (o *Orchestrator) runPlain(ctx context.Context, provider llmtypes.Provider, handle Handle, req *chattypes.ChatRequest, enc *stream.Encoder) error {
	msgs := buildMessages(plainSystemPrompt, req.Messages)

	chunks, err := provider.CreateChatCompletionStream(ctx, llmtypes.ChatCompletionRequest{
		Model:    handle.ModelID,
		Messages: msgs,
	})
	if err != nil {
		return fmt.Errorf("start generation: %w", err)
	}

	for chunk := range chunks {
		if chunk.Error != nil {
			return fmt.Errorf("stream generation: %w", chunk.Error)
		}
		if chunk.Content != "" {
			if err := enc.WriteText(chunk.Content); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *Orchestrator) runToolAugmented(ctx context.Context, provider llmtypes.Provider, handle Handle, req *chattypes.ChatRequest, userID string, enc *stream.Encoder) error {
	tools := o.provisioner.Provision(ctx, userID, req.Tools)
	if len(tools) == 0 {
		// Degrade to plain generation; provisioning failure is never fatal.
		o.log.Info("no tools available, falling back to plain generation")
		return o.runPlain(ctx, provider, handle, req, enc)
	}

	defs := make([]llmtypes.Tool, 0, len(tools))
	for _, tool := range tools {
		defs = append(defs, tool.Definition)
	}

	msgs := buildMessages(toolSystemPrompt, req.Messages)
	var resultSummaries []string
	steps := 0

	for round := 0; round < o.maxToolRounds && steps < o.maxSteps; round++ {
		resp, err := provider.CreateChatCompletion(ctx, llmtypes.ChatCompletionRequest{
			Model:      handle.ModelID,
			Messages:   msgs,
			Tools:      defs,
			ToolChoice: llmtypes.Auto(),
		})
		if err != nil {
			return fmt.Errorf("tool round %d: %w", round, err)
		}
		steps++

		msg := resp.FirstMessage()
		if len(msg.ToolCalls) == 0 {
			// Converged without further calls.
			if len(resultSummaries) == 0 && msg.Content != "" {
				return enc.WriteText(msg.Content)
			}
			break
		}

		msgs = append(msgs, msg)

		for _, tc := range msg.ToolCalls {
			if steps >= o.maxSteps {
				break
			}
			result := o.executeToolCall(ctx, tools, tc, enc)
			msgs = append(msgs, llmtypes.ToolMessage(tc.ID, tc.Function.Name, result))
			resultSummaries = append(resultSummaries, fmt.Sprintf("%s -> %s", tc.Function.Name, result))
			steps++
		}
	}

	return o.narrate(ctx, provider, handle, req, resultSummaries, enc)
}

// executeToolCall dispatches one call and writes both stream events.
// Execution failure is captured in the result payload so sibling calls
// and the narration step still proceed.
func (o *Orchestrator) executeToolCall(ctx context.Context, tools map[string]ProvisionedTool, tc llmtypes.ToolCall, enc *stream.Encoder) string {
	args := json.RawMessage(tc.Function.Arguments)

	if err := enc.WriteToolCall(stream.ToolCallEvent{
		ToolCallID: tc.ID,
		ToolName:   tc.Function.Name,
		Args:       args,
	}); err != nil {
		o.log.Warn("write tool-call event failed", zap.Error(err))
	}

	var result string
	tool, ok := tools[tc.Function.Name]
	switch {
	case !ok:
		result = fmt.Sprintf(`{"successful":false,"error":"unknown tool %s"}`, tc.Function.Name)
	default:
		res, err := tool.Execute(ctx, args)
		if err != nil {
			o.log.Warn("tool execution failed",
				zap.String("tool", tc.Function.Name),
				zap.Error(err),
			)
			result = fmt.Sprintf(`{"successful":false,"error":%q}`, err.Error())
		} else {
			data, _ := json.Marshal(res)
			result = string(data)
		}
	}

	if err := enc.WriteToolResult(stream.ToolResultEvent{
		ToolCallID: tc.ID,
		ToolName:   tc.Function.Name,
		Result:     json.RawMessage(result),
	}); err != nil {
		o.log.Warn("write tool-result event failed", zap.Error(err))
	}

	return result
}

// narrate issues the tools-disabled second call that explains what the
// tools did. Interleaving acting and narrating in one pass proved
// unreliable, hence the explicit separation.
func (o *Orchestrator) narrate(ctx context.Context, provider llmtypes.Provider, handle Handle, req *chattypes.ChatRequest, resultSummaries []string, enc *stream.Encoder) error {
	prompt := "The following tools were executed for the user's request:\n" +
		strings.Join(resultSummaries, "\n") +
		"\n\nOriginal request: " + req.LastUserContent() +
		"\n\nExplain to the user what was done and what the results were."

	chunks, err := provider.CreateChatCompletionStream(ctx, llmtypes.ChatCompletionRequest{
		Model: handle.ModelID,
		Messages: []llmtypes.Message{
			llmtypes.SystemMessage("You summarize completed tool actions for the user in clear natural language."),
			llmtypes.UserMessage(prompt),
		},
	})
	if err != nil {
		return fmt.Errorf("start narration: %w", err)
	}

	for chunk := range chunks {
		if chunk.Error != nil {
			return fmt.Errorf("stream narration: %w", chunk.Error)
		}
		if chunk.Content != "" {
			if err := enc.WriteText(chunk.Content); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *Orchestrator) runResearchPublish(ctx context.Context, provider llmtypes.Provider, handle Handle, req *chattypes.ChatRequest, userID string, enc *stream.Encoder) error {
	topic := req.LastUserContent()

	if o.searcher == nil {
		o.log.Info("no search provider configured, falling back to plain generation")
		return o.runPlain(ctx, provider, handle, req, enc)
	}

	researchText, sources, err := o.research(ctx, provider, handle, topic, enc)
	if err != nil {
		// Search failure degrades to plain generation rather than
		// failing the whole request.
		o.log.Warn("research step failed, falling back to plain generation", zap.Error(err))
		return o.runPlain(ctx, provider, handle, req, enc)
	}

	post, err := o.synthesize(ctx, provider, handle, topic, researchText)
	if err != nil {
		return fmt.Errorf("synthesis step: %w", err)
	}

	if researchText != "" {
		if err := enc.WriteText(researchText + "\n"); err != nil {
			return err
		}
	}

	card := socialtypes.NewTwitterPreview(post, userID, sources, researchText)
	if o.cards != nil {
		if _, err := o.cards.SavePreview(ctx, "twitter", card); err != nil {
			o.log.Warn("preview card persistence failed", zap.Error(err))
		}
	}
	return enc.WritePreviewCard(stream.MarkerTwitterPreview, card)
}

// research runs the forced-search step: one mandatory web_search tool
// call, executed against the search provider, followed by a summary
// completion over the results.
func (o *Orchestrator) research(ctx context.Context, provider llmtypes.Provider, handle Handle, topic string, enc *stream.Encoder) (string, []socialtypes.Source, error) {
	searchTool := llmtypes.NewTool("web_search", "Search the web for current information on a topic.",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		})

	msgs := []llmtypes.Message{
		llmtypes.SystemMessage(researchSystemPrompt),
		llmtypes.UserMessage(topic),
	}

	resp, err := provider.CreateChatCompletion(ctx, llmtypes.ChatCompletionRequest{
		Model:      handle.ModelID,
		Messages:   msgs,
		Tools:      []llmtypes.Tool{searchTool},
		ToolChoice: llmtypes.Force("web_search"),
	})
	if err != nil {
		return "", nil, fmt.Errorf("research call: %w", err)
	}

	query := topic
	callID := "search_" + uuid.New().String()
	msg := resp.FirstMessage()
	if len(msg.ToolCalls) > 0 {
		tc := msg.ToolCalls[0]
		callID = tc.ID
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err == nil && args.Query != "" {
			query = args.Query
		}
	}

	if err := enc.WriteToolCall(stream.ToolCallEvent{
		ToolCallID: callID,
		ToolName:   "web_search",
		Args:       json.RawMessage(fmt.Sprintf(`{"query":%q}`, query)),
	}); err != nil {
		o.log.Warn("write tool-call event failed", zap.Error(err))
	}

	searchResp, err := o.searcher.Search(ctx, &wstypes.SearchRequest{
		Query:      query,
		MaxResults: 5,
	})
	if err != nil {
		return "", nil, fmt.Errorf("web search: %w", err)
	}

	sources := make([]socialtypes.Source, 0, len(searchResp.Results))
	var findings strings.Builder
	for _, result := range searchResp.Results {
		sources = append(sources, socialtypes.Source{Title: result.Title, URL: result.URL})
		fmt.Fprintf(&findings, "- %s (%s): %s\n", result.Title, result.URL, result.Content)
	}

	resultPayload, _ := json.Marshal(map[string]interface{}{
		"successful": true,
		"query":      query,
		"results":    searchResp.Results,
	})
	if err := enc.WriteToolResult(stream.ToolResultEvent{
		ToolCallID: callID,
		ToolName:   "web_search",
		Result:     resultPayload,
	}); err != nil {
		o.log.Warn("write tool-result event failed", zap.Error(err))
	}

	summaryResp, err := provider.CreateChatCompletion(ctx, llmtypes.ChatCompletionRequest{
		Model: handle.ModelID,
		Messages: []llmtypes.Message{
			llmtypes.SystemMessage(researchSystemPrompt),
			llmtypes.UserMessage(fmt.Sprintf("Topic: %s\n\nSearch findings:\n%s\n\nWrite the research summary.", topic, findings.String())),
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("research summary call: %w", err)
	}

	return strings.TrimSpace(summaryResp.Text()), sources, nil
}

// synthesize runs the tool-free second agent and extracts the post
// text behind the TWEET_CONTENT marker, truncating the raw output to
// the platform limit when the marker is missing.
func (o *Orchestrator) synthesize(ctx context.Context, provider llmtypes.Provider, handle Handle, topic, researchText string) (string, error) {
	resp, err := provider.CreateChatCompletion(ctx, llmtypes.ChatCompletionRequest{
		Model: handle.ModelID,
		Messages: []llmtypes.Message{
			llmtypes.SystemMessage(synthesisSystemPrompt),
			llmtypes.UserMessage(fmt.Sprintf("Topic: %s\n\nResearch summary:\n%s", topic, researchText)),
		},
	})
	if err != nil {
		return "", err
	}

	raw := strings.TrimSpace(resp.Text())
	if m := tweetContentPattern.FindStringSubmatch(raw); m != nil {
		return truncatePost(strings.TrimSpace(m[1])), nil
	}
	return truncatePost(raw), nil
}

func truncatePost(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTweetLength {
		return text
	}
	return string(runes[:maxTweetLength-3]) + "..."
}

func buildMessages(systemPrompt string, history []chattypes.ChatMessage) []llmtypes.Message {
	msgs := make([]llmtypes.Message, 0, len(history)+1)
	msgs = append(msgs, llmtypes.SystemMessage(systemPrompt))
	for _, m := range history {
		msgs = append(msgs, llmtypes.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}
