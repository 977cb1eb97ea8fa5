package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.0-flash-exp"

// GeminiProvider calls the Gemini API through the official GenAI SDK.
type GeminiProvider struct {
	Model string // e.g. "gemini-2.0-flash-exp"
}

var _ Provider = (*GeminiProvider)(nil)

// ModelID returns the fixed model identifier used in response envelopes.
func (p *GeminiProvider) ModelID() string {
	if p.Model != "" {
		return p.Model
	}
	return geminiDefaultModel
}

// Invoke sends a generateContent request and returns text plus usage counters.
func (p *GeminiProvider) Invoke(ctx context.Context, prompt string, opts Options) (*Completion, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}

	result, err := client.Models.GenerateContent(ctx, p.ModelID(), genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}

	completion := &Completion{Text: result.Text()}
	if result.UsageMetadata != nil {
		completion.Usage = &Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
		}
	}

	return completion, nil
}
