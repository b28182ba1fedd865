package biz

// Handle is a resolved (provider, model id) pair. Immutable once
// resolved for a request.
type Handle struct {
	Provider string
	ModelID  string
}

// DefaultHandle is used for any unrecognized or absent model label.
var DefaultHandle = Handle{Provider: "openai", ModelID: "gpt-4o-mini"}

// modelTable maps the UI's human-readable labels to provider handles.
// Matching is exact and case-sensitive; no fuzzy fallback.
var modelTable = map[string]Handle{
	"gpt-5":        {Provider: "openai", ModelID: "gpt-5"},
	"gpt-5-mini":   {Provider: "openai", ModelID: "gpt-5-mini"},
	"gpt-5-nano":   {Provider: "openai", ModelID: "gpt-5-nano"},
	"o3":           {Provider: "openai", ModelID: "o3"},
	"o4-mini":      {Provider: "openai", ModelID: "o4-mini"},
	"GPT-4.1":      {Provider: "openai", ModelID: "gpt-4.1"},
	"GPT-4.1 Mini": {Provider: "openai", ModelID: "gpt-4.1-mini"},

	"Claude 4 Opus":     {Provider: "anthropic", ModelID: "claude-opus-4-20250514"},
	"Claude 4 Sonnet":   {Provider: "anthropic", ModelID: "claude-sonnet-4-20250514"},
	"Claude 3.5 Sonnet": {Provider: "anthropic", ModelID: "claude-3-5-sonnet-20241022"},
	"Claude 3.5 Haiku":  {Provider: "anthropic", ModelID: "claude-3-5-haiku-20241022"},

	"Gemini 2.5 Pro":            {Provider: "google", ModelID: "gemini-2.5-pro"},
	"Gemini 2.5 Flash":          {Provider: "google", ModelID: "gemini-2.5-flash"},
	"Gemini 2.0 Flash":          {Provider: "google", ModelID: "gemini-2.0-flash"},
	"Gemini 2.0 Flash Thinking": {Provider: "google", ModelID: "gemini-2.0-flash-thinking-exp"},

	"DeepSeek R1 Llama 70B": {Provider: "groq", ModelID: "deepseek-r1-distill-llama-70b"},
	"Llama 3.3 70B":         {Provider: "groq", ModelID: "llama-3.3-70b-versatile"},
}

// ResolveModel maps a model label to a handle. Never fails: anything
// outside the table, including the empty string, resolves to
// DefaultHandle.
func ResolveModel(label string) Handle {
	if handle, ok := modelTable[label]; ok {
		return handle
	}
	return DefaultHandle
}

// SupportedModels lists every label in the table.
func SupportedModels() []string {
	labels := make([]string, 0, len(modelTable))
	for label := range modelTable {
		labels = append(labels, label)
	}
	return labels
}
