package llm

import (
	"context"
	"regexp"
	"strings"

	"github.com/ppiankov/schoolscope/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one system + user exchange and returns the model's text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is a single-turn prompt.
type CompletionRequest struct {
	System string
	Prompt string

	// Model overrides the provider's configured model when set
	Model string

	// MaxTokens limits the response length; 0 uses the provider default
	MaxTokens int

	// Temperature; 0 leaves the provider default
	Temperature float32
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	Text string

	// CitedURLs are the URLs found in Text, in order of first appearance
	CitedURLs []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Timeout:   600,
		MaxTokens: 4000,
	}
}

// ConfigFromModel converts the loaded configuration into an llm.Config.
// The proxy settings are shared with the page fetcher.
func ConfigFromModel(llmCfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:   llmCfg.Provider,
		Model:      llmCfg.Model,
		APIKey:     llmCfg.APIKey,
		BaseURL:    llmCfg.BaseURL,
		Timeout:    llmCfg.Timeout,
		MaxTokens:  llmCfg.MaxTokens,
		HTTPProxy:  httpCfg.HTTPProxy,
		HTTPSProxy: httpCfg.HTTPSProxy,
		NoProxy:    httpCfg.NoProxy,
	}
}

func (c Config) model(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

func (c Config) maxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1000
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]>"']+`)

// ExtractURLs extracts all URLs from text, deduplicated, with trailing
// punctuation removed.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, url := range matches {
		url = strings.TrimRight(url, ".,;:!?")
		if !seen[url] {
			seen[url] = true
			unique = append(unique, url)
		}
	}

	return unique
}

// LeakedURLs returns the URLs cited in text that are not in allowed.
// Trailing slashes are ignored when comparing.
func LeakedURLs(text string, allowed []string) []string {
	ok := make(map[string]bool, len(allowed))
	for _, u := range allowed {
		ok[strings.TrimRight(u, "/")] = true
	}

	var leaked []string
	for _, u := range ExtractURLs(text) {
		if !ok[strings.TrimRight(u, "/")] {
			leaked = append(leaked, u)
		}
	}
	return leaked
}
