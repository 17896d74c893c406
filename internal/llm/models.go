package llm

// ModelInfo describes a model offered to users.
// The catalog is advisory: any id the provider accepts can be used.
type ModelInfo struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Provider string `json:"provider" yaml:"provider"`
	Free     bool   `json:"free" yaml:"free"`
}

var catalog = []ModelInfo{
	{ID: "google/gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: "Google", Free: true},
	{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", Provider: "Anthropic"},
	{ID: "openai/gpt-4.1", Name: "GPT-4.1", Provider: "OpenAI"},
}

// Models returns a copy of the model catalog
func Models() []ModelInfo {
	out := make([]ModelInfo, len(catalog))
	copy(out, catalog)
	return out
}

// DefaultModel is the first catalog entry
func DefaultModel() string {
	return catalog[0].ID
}
