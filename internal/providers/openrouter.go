package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter implements the Generator interface for OpenRouter's
// OpenAI-compatible chat completions endpoint.
type OpenRouter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenRouter creates a new OpenRouter provider.
func NewOpenRouter(apiKey, model, baseURL string) (*OpenRouter, error) {
	if apiKey == "" {
		return nil, missingKey("openrouter", "OPENROUTER_API_KEY")
	}
	if baseURL == "" {
		baseURL = defaultOpenRouterURL
	}
	return &OpenRouter{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (o *OpenRouter) Name() string { return "openrouter" }

func (o *OpenRouter) Generate(ctx context.Context, req Request) (Response, error) {
	messages := make([]openrouterMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openrouterMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, openrouterMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(openrouterRequest{
		Model:     o.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return Response{}, o.fail(0, fmt.Errorf("marshaling request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, bytes.NewReader(payload))
	if err != nil {
		return Response{}, o.fail(0, fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return Response{}, o.fail(0, fmt.Errorf("sending request: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, o.fail(httpResp.StatusCode, fmt.Errorf("reading response: %w", err))
	}

	var result openrouterResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return Response{}, o.fail(httpResp.StatusCode, fmt.Errorf("API error: %s", string(respBody)))
		}
		return Response{}, o.fail(httpResp.StatusCode, fmt.Errorf("parsing response: %w", err))
	}

	// The error envelope can arrive with a 200 status.
	if len(result.Choices) > 0 {
		return Response{
			Content:    strings.TrimSpace(result.Choices[0].Message.Content),
			TokensUsed: result.Usage.TotalTokens,
		}, nil
	}
	if len(result.Error) > 0 && string(result.Error) != "null" {
		var e openrouterError
		_ = json.Unmarshal(result.Error, &e)
		if e.Message == "" {
			e.Message = "Unknown error"
		}
		details, _ := json.MarshalIndent(json.RawMessage(result.Error), "", "    ")
		status := httpResp.StatusCode
		if status == http.StatusOK {
			status = e.Code
		}
		return Response{}, o.fail(status, fmt.Errorf("OpenRouter API error: %s\nError details: %s", e.Message, details))
	}
	return Response{}, o.fail(httpResp.StatusCode, fmt.Errorf("unknown error while processing OpenRouter API response"))
}

func (o *OpenRouter) fail(status int, err error) error {
	return &GenerationError{Provider: o.Name(), StatusCode: status, Err: err}
}

type openrouterRequest struct {
	Model     string              `json:"model"`
	Messages  []openrouterMessage `json:"messages"`
	MaxTokens int                 `json:"max_tokens,omitempty"`
}

type openrouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openrouterResponse struct {
	Choices []openrouterChoice `json:"choices"`
	Usage   openrouterUsage    `json:"usage"`
	Error   json.RawMessage    `json:"error"`
}

type openrouterChoice struct {
	Message openrouterMessage `json:"message"`
}

type openrouterUsage struct {
	TotalTokens int `json:"total_tokens"`
}

type openrouterError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
