package llm

import (
	"context"
	"fmt"
	"time"

	"filingqa/pkg/core/utils"
)

// InferenceResult is the structured success/failure envelope for one model
// invocation. Exactly one of Response/Error is set depending on Success.
// Errors never propagate past this boundary.
type InferenceResult struct {
	Success   bool   `json:"success"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
	Usage     *Usage `json:"usage,omitempty"`
	ModelID   string `json:"model_id"`
	Timestamp string `json:"timestamp"`
}

// StructuredAnswer is the JSON shape requested in structured mode.
type StructuredAnswer struct {
	Answer          string `json:"answer"`
	FoundInDocument bool   `json:"found_in_document"`
}

// Invoker wraps a Provider and turns its results into InferenceResult
// envelopes.
type Invoker struct {
	provider    Provider
	MaxTokens   int
	Temperature float64
}

// NewInvoker creates an invoker with the default token limit and temperature.
func NewInvoker(provider Provider) *Invoker {
	return &Invoker{
		provider:    provider,
		MaxTokens:   1000,
		Temperature: 0.1,
	}
}

// ModelID exposes the underlying provider's model identifier.
func (v *Invoker) ModelID() string {
	return v.provider.ModelID()
}

// Invoke sends the prompt and returns an envelope. Transport and service
// errors become failure envelopes carrying the error description.
func (v *Invoker) Invoke(ctx context.Context, prompt string, maxTokens int, temperature float64) *InferenceResult {
	completion, err := v.provider.Invoke(ctx, prompt, Options{
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})

	result := &InferenceResult{
		ModelID:   v.provider.ModelID(),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Response = utils.CleanMarkdown(completion.Text)
	if !utils.ValidateMarkdown(result.Response) {
		fmt.Printf("[llm] %s returned text that does not parse as markdown\n", result.ModelID)
	}
	result.Usage = completion.Usage
	return result
}

// Ask handles the bare-question call shape: no document, the question is the
// whole prompt. A higher token limit, matching exploratory use.
func (v *Invoker) Ask(ctx context.Context, question string) *InferenceResult {
	return v.Invoke(ctx, question, 2000, v.Temperature)
}

// AskPrompt handles the context-bearing call shape with the default limits.
func (v *Invoker) AskPrompt(ctx context.Context, prompt string) *InferenceResult {
	return v.Invoke(ctx, prompt, v.MaxTokens, v.Temperature)
}

// AskStructured sends a prompt that requests a JSON answer and parses the
// response leniently (models fence and malform JSON routinely). A parse
// failure downgrades the envelope to a failure result.
func (v *Invoker) AskStructured(ctx context.Context, prompt string) (*InferenceResult, *StructuredAnswer) {
	result := v.Invoke(ctx, prompt, v.MaxTokens, v.Temperature)
	if !result.Success {
		return result, nil
	}

	var answer StructuredAnswer
	if err := utils.SmartParse(result.Response, &answer); err != nil {
		result.Success = false
		result.Error = "malformed structured response: " + err.Error()
		result.Response = ""
		return result, nil
	}

	result.Response = answer.Answer
	return result, &answer
}
