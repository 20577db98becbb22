package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// OpenAIEmbedder implements Embedder against an OpenAI-compatible
// embeddings API.
type OpenAIEmbedder struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIEmbedder creates an embedder for the hosted OpenAI API.
func NewOpenAIEmbedder(model string) (*OpenAIEmbedder, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, &AuthError{Provider: "openai", Message: "OPENAI_API_KEY environment variable is not set"}
	}
	baseURL := os.Getenv("GLINT_OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIEmbedder{
		name:    "openai",
		apiKey:  key,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// NewOpenAICompatibleEmbedder creates an embedder for a local
// OpenAI-shaped endpoint such as ollama.
func NewOpenAICompatibleEmbedder(model, baseURL, key string) (*OpenAIEmbedder, error) {
	return &OpenAIEmbedder{
		name:    "openai-compatible",
		apiKey:  key,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (e *OpenAIEmbedder) Model() string { return e.model }

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data []embeddingData `json:"data"`
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embeddingRequest{Input: []string{text}, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	oc := &OpenAI{name: e.name, apiKey: e.apiKey, baseURL: e.baseURL, client: e.client}

	var vector []float32
	err = retryWithBackoff(ctx, 3, func() error {
		respBody, err := oc.post(ctx, "/embeddings", payload)
		if err != nil {
			return err
		}
		var result embeddingResponse
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
			return fmt.Errorf("empty embedding in API response")
		}
		vector = result.Data[0].Embedding
		return nil
	})
	return vector, err
}
