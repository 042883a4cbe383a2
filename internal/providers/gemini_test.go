package providers

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestGemini_Name(t *testing.T) {
	g := &Gemini{model: "test"}
	if g.Name() != "gemini" {
		t.Errorf("Name() = %q, want %q", g.Name(), "gemini")
	}
}

func TestGemini_EmptyRequest(t *testing.T) {
	g := &Gemini{model: "test"}
	if _, err := g.Generate(context.Background(), Request{}); err == nil {
		t.Error("expected error for request without messages")
	}
}

func TestGemini_LastMessageMustBeUser(t *testing.T) {
	g := &Gemini{model: "test"}
	_, err := g.Generate(context.Background(), Request{Messages: []Message{
		{Role: RoleUser, Content: "q"},
		{Role: RoleAssistant, Content: "a"},
	}})
	if err == nil {
		t.Error("expected error when the request ends with an assistant turn")
	}
}

func TestGeminiContents(t *testing.T) {
	type turn struct {
		role  string
		parts []string
	}
	user := func(c string) Message { return Message{Role: RoleUser, Content: c} }
	assistant := func(c string) Message { return Message{Role: RoleAssistant, Content: c} }

	tests := []struct {
		name string
		msgs []Message
		want []turn
	}{
		{
			name: "alternating",
			msgs: []Message{user("q"), assistant("a"), user("q2")},
			want: []turn{{"user", []string{"q"}}, {"model", []string{"a"}}, {"user", []string{"q2"}}},
		},
		{
			name: "re-review starts with the bot",
			msgs: []Message{assistant("earlier review"), user("why?"), user("review this")},
			want: []turn{
				{"user", []string{earlierConversation}},
				{"model", []string{"earlier review"}},
				{"user", []string{"why?", "review this"}},
			},
		},
		{
			name: "consecutive user turns",
			msgs: []Message{user("one"), user("two")},
			want: []turn{{"user", []string{"one", "two"}}},
		},
		{
			name: "consecutive model turns",
			msgs: []Message{user("q"), assistant("a1"), assistant("a2"), user("q2")},
			want: []turn{{"user", []string{"q"}}, {"model", []string{"a1", "a2"}}, {"user", []string{"q2"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geminiContents(tt.msgs)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d turns, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].Role != w.role {
					t.Errorf("turn %d role = %q, want %q", i, got[i].Role, w.role)
				}
				if len(got[i].Parts) != len(w.parts) {
					t.Fatalf("turn %d has %d parts, want %d", i, len(got[i].Parts), len(w.parts))
				}
				for j, p := range w.parts {
					if text, ok := got[i].Parts[j].(genai.Text); !ok || string(text) != p {
						t.Errorf("turn %d part %d = %v, want %q", i, j, got[i].Parts[j], p)
					}
				}
			}
			for i := 1; i < len(got); i++ {
				if got[i].Role == got[i-1].Role {
					t.Errorf("turns %d and %d share role %q", i-1, i, got[i].Role)
				}
			}
			if got[0].Role != "user" || got[len(got)-1].Role != "user" {
				t.Errorf("turns must start and end with the user, got %q ... %q", got[0].Role, got[len(got)-1].Role)
			}
		})
	}
}

func TestGeminiText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(" hello "), genai.Text("world\n")}},
		}},
	}
	if got := geminiText(resp); got != "hello world" {
		t.Errorf("geminiText() = %q, want %q", got, "hello world")
	}
	if got := geminiText(&genai.GenerateContentResponse{}); got != "" {
		t.Errorf("geminiText(empty) = %q, want empty", got)
	}
}
