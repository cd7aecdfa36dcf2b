package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewProvider creates a new oracle provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "anthropic", "claude":
		p, err := NewAnthropicProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "ollama":
		p, err := NewOllamaProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "":
		// No provider configured - return nil (oracle disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown oracle provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// Completer binds a Provider to a fixed model and token budget so callers
// only deal in system/user prompt pairs. It satisfies the adjudicator's
// Oracle contract.
type Completer struct {
	provider  Provider
	model     string
	maxTokens int
}

// NewCompleter creates a completer over the given provider
func NewCompleter(provider Provider, model string, maxTokens int) *Completer {
	return &Completer{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Name returns the underlying provider name
func (c *Completer) Name() string {
	return c.provider.Name()
}

// Complete sends one exchange and returns the raw completion text
func (c *Completer) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.provider.Complete(ctx, CompleteRequest{
		System:    system,
		User:      user,
		Model:     c.model,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
