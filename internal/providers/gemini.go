package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Generator interface for Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a new Gemini provider. Call Close when done.
func NewGemini(apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, missingKey("gemini", "GEMINI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &GenerationError{Provider: "gemini", Err: fmt.Errorf("creating client: %w", err)}
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

// Close releases the underlying client connection.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	if _, err := lastMessage(req.Messages); err != nil {
		return Response{}, &GenerationError{Provider: g.Name(), Err: err}
	}
	turns := geminiContents(req.Messages)
	last := turns[len(turns)-1]
	if last.Role != "user" {
		return Response{}, &GenerationError{Provider: g.Name(), Err: fmt.Errorf("last message must come from the user")}
	}

	model := g.client.GenerativeModel(g.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	cs := model.StartChat()
	cs.History = turns[:len(turns)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return Response{}, &GenerationError{Provider: g.Name(), Err: err}
	}

	content := geminiText(resp)
	if content == "" {
		return Response{}, &GenerationError{Provider: g.Name(), Err: fmt.Errorf("no content in response")}
	}
	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return Response{Content: content, TokensUsed: tokens}, nil
}

// earlierConversation opens a chat whose first recorded turn is the model's.
const earlierConversation = "Earlier conversation on this pull request:"

// geminiContents converts messages to Gemini turns. Gemini calls the
// assistant "model", requires user and model turns to alternate, and requires
// the first turn to be the user's. Consecutive messages with the same role
// are merged into one turn with several parts.
func geminiContents(msgs []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs)+1)
	for _, m := range msgs {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		if len(contents) == 0 && role == "model" {
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(earlierConversation)},
			})
		}
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, genai.Text(m.Content))
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return contents
}

func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
