package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAI implements the Generator interface for OpenAI's API.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, missingKey("openai", "OPENAI_API_KEY")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req Request) (Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(o.model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		genErr := &GenerationError{Provider: o.Name(), Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			genErr.StatusCode = apiErr.StatusCode
		}
		return Response{}, genErr
	}
	if len(completion.Choices) == 0 {
		return Response{}, &GenerationError{Provider: o.Name(), Err: fmt.Errorf("no choices in response")}
	}

	return Response{
		Content:    strings.TrimSpace(completion.Choices[0].Message.Content),
		TokensUsed: int(completion.Usage.TotalTokens),
	}, nil
}
