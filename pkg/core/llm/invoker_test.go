package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type MockProvider struct {
	InvokeFunc func(ctx context.Context, prompt string, opts Options) (*Completion, error)
	Model      string
}

func (m *MockProvider) Invoke(ctx context.Context, prompt string, opts Options) (*Completion, error) {
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, prompt, opts)
	}
	return &Completion{Text: "mock answer"}, nil
}

func (m *MockProvider) ModelID() string {
	if m.Model != "" {
		return m.Model
	}
	return "mock-model"
}

func TestInvoker_SuccessEnvelope(t *testing.T) {
	provider := &MockProvider{
		Model: "deepseek-chat",
		InvokeFunc: func(ctx context.Context, prompt string, opts Options) (*Completion, error) {
			return &Completion{
				Text:  "Revenue was $100M.",
				Usage: &Usage{InputTokens: 1200, OutputTokens: 42},
			}, nil
		},
	}

	result := NewInvoker(provider).AskPrompt(context.Background(), "prompt")
	if !result.Success {
		t.Fatalf("Success = false, error: %s", result.Error)
	}
	if result.Response != "Revenue was $100M." {
		t.Errorf("Response = %q", result.Response)
	}
	if result.Usage == nil || result.Usage.InputTokens != 1200 || result.Usage.OutputTokens != 42 {
		t.Errorf("Usage = %+v", result.Usage)
	}
	if result.ModelID != "deepseek-chat" {
		t.Errorf("ModelID = %s", result.ModelID)
	}
	if result.Timestamp == "" {
		t.Error("Timestamp must be set")
	}
	if result.Error != "" {
		t.Errorf("Error must be empty on success, got %q", result.Error)
	}
}

func TestInvoker_FailureEnvelope(t *testing.T) {
	provider := &MockProvider{
		InvokeFunc: func(ctx context.Context, prompt string, opts Options) (*Completion, error) {
			return nil, fmt.Errorf("DEEPSEEK_API_CALL_ERROR: connection refused")
		},
	}

	result := NewInvoker(provider).AskPrompt(context.Background(), "prompt")
	if result.Success {
		t.Fatal("Success = true on provider error")
	}
	if !strings.Contains(result.Error, "connection refused") {
		t.Errorf("Error = %q", result.Error)
	}
	if result.Response != "" {
		t.Errorf("Response must be empty on failure, got %q", result.Response)
	}
	if result.Timestamp == "" {
		t.Error("Timestamp must be set on failure too")
	}
}

func TestInvoker_StripsMarkdownFences(t *testing.T) {
	provider := &MockProvider{
		InvokeFunc: func(ctx context.Context, prompt string, opts Options) (*Completion, error) {
			return &Completion{Text: "```markdown\nThe answer is 42.\n```"}, nil
		},
	}

	result := NewInvoker(provider).AskPrompt(context.Background(), "prompt")
	if result.Response != "The answer is 42." {
		t.Errorf("Response = %q, fences should be stripped", result.Response)
	}
}

func TestInvoker_AskUsesHigherTokenLimit(t *testing.T) {
	var gotOpts Options
	provider := &MockProvider{
		InvokeFunc: func(ctx context.Context, prompt string, opts Options) (*Completion, error) {
			gotOpts = opts
			return &Completion{Text: "ok"}, nil
		},
	}

	inv := NewInvoker(provider)
	inv.Ask(context.Background(), "bare question")
	if gotOpts.MaxTokens != 2000 {
		t.Errorf("Ask MaxTokens = %d, want 2000", gotOpts.MaxTokens)
	}

	inv.AskPrompt(context.Background(), "context prompt")
	if gotOpts.MaxTokens != 1000 {
		t.Errorf("AskPrompt MaxTokens = %d, want 1000", gotOpts.MaxTokens)
	}
	if gotOpts.Temperature != 0.1 {
		t.Errorf("Temperature = %v, want 0.1", gotOpts.Temperature)
	}
}

func TestInvoker_AskStructured(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantOK     bool
		wantAnswer string
		wantFound  bool
	}{
		{
			name:       "clean JSON",
			response:   `{"answer": "Revenue was $100M", "found_in_document": true}`,
			wantOK:     true,
			wantAnswer: "Revenue was $100M",
			wantFound:  true,
		},
		{
			name:       "sloppy JSON gets repaired",
			response:   `{'answer': 'Not disclosed', 'found_in_document': false}`,
			wantOK:     true,
			wantAnswer: "Not disclosed",
			wantFound:  false,
		},
		{
			name:     "unparsable response downgrades envelope",
			response: "42",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockProvider{
				InvokeFunc: func(ctx context.Context, prompt string, opts Options) (*Completion, error) {
					return &Completion{Text: tt.response}, nil
				},
			}

			result, answer := NewInvoker(provider).AskStructured(context.Background(), "prompt")
			if result.Success != tt.wantOK {
				t.Fatalf("Success = %v, want %v (error: %s)", result.Success, tt.wantOK, result.Error)
			}
			if !tt.wantOK {
				if answer != nil {
					t.Error("answer must be nil on parse failure")
				}
				return
			}
			if answer == nil {
				t.Fatal("answer is nil")
			}
			if answer.Answer != tt.wantAnswer {
				t.Errorf("Answer = %q, want %q", answer.Answer, tt.wantAnswer)
			}
			if answer.FoundInDocument != tt.wantFound {
				t.Errorf("FoundInDocument = %v, want %v", answer.FoundInDocument, tt.wantFound)
			}
			if result.Response != tt.wantAnswer {
				t.Errorf("envelope Response = %q, want the parsed answer", result.Response)
			}
		})
	}
}
