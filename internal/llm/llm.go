package llm

import (
	"context"
	"fmt"
)

// Message is a single chat message in provider-neutral form.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest contains the data sent to a model for one completion.
type ChatRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ChatResponse contains the model output and token accounting.
type ChatResponse struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatClient is the chat-completion provider abstraction.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Name() string
	Model() string
}

// Embedder produces a fixed-length vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// NewChat creates a chat client by provider name.
func NewChat(provider, model string) (ChatClient, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "ollama", "lmstudio":
		return NewOpenAICompatible(model, localBaseURL(), "ollama")
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

// NewEmbed creates an embedder by provider name.
func NewEmbed(provider, model string) (Embedder, error) {
	switch provider {
	case "openai":
		return NewOpenAIEmbedder(model)
	case "ollama":
		return NewOpenAICompatibleEmbedder(model, localBaseURL(), "ollama")
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}
