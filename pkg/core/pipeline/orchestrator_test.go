package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"filingqa/pkg/core/edgar"
	"filingqa/pkg/core/llm"
	"filingqa/pkg/core/ticker"
)

// --- Mocks ---

type MockResolver struct {
	ResolveFunc func(symbol string) (ticker.Record, bool)
}

func (m *MockResolver) Resolve(symbol string) (ticker.Record, bool) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(symbol)
	}
	return ticker.Record{CIK: "0000320193", Name: "Apple Inc.", Ticker: "AAPL"}, true
}

type MockSubmissions struct {
	FetchFunc func(cik string) (*edgar.SubmissionsResponse, error)
}

func (m *MockSubmissions) FetchSubmissions(cik string) (*edgar.SubmissionsResponse, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(cik)
	}
	return &edgar.SubmissionsResponse{
		CIK:  cik,
		Name: "Apple Inc.",
		Filings: edgar.Filings{
			Recent: edgar.RecentFilings{
				AccessionNumber: []string{"0000320193-24-000069", "0000320193-24-000123"},
				FilingDate:      []string{"2024-05-03", "2024-11-01"},
				ReportDate:      []string{"2024-03-30", "2024-09-28"},
				Form:            []string{"10-Q", "10-K"},
				PrimaryDocument: []string{"aapl-q2.htm", "aapl-10k.htm"},
			},
		},
	}, nil
}

type MockDocuments struct {
	FetchFunc func(url string) (string, error)
	Called    bool
}

func (m *MockDocuments) Fetch(url string) (string, error) {
	m.Called = true
	if m.FetchFunc != nil {
		return m.FetchFunc(url)
	}
	return "<html><body><p>Total net sales were $90,753 million.</p></body></html>", nil
}

type MockAnswerer struct {
	AskPromptFunc func(ctx context.Context, prompt string) *llm.InferenceResult
	Called        bool
	LastPrompt    string
}

func (m *MockAnswerer) AskPrompt(ctx context.Context, prompt string) *llm.InferenceResult {
	m.Called = true
	m.LastPrompt = prompt
	if m.AskPromptFunc != nil {
		return m.AskPromptFunc(ctx, prompt)
	}
	return &llm.InferenceResult{
		Success:  true,
		Response: "Net sales were $90,753 million.",
		Usage:    &llm.Usage{InputTokens: 5000, OutputTokens: 30},
		ModelID:  "deepseek-chat",
	}
}

func (m *MockAnswerer) AskStructured(ctx context.Context, prompt string) (*llm.InferenceResult, *llm.StructuredAnswer) {
	m.Called = true
	m.LastPrompt = prompt
	return &llm.InferenceResult{Success: true, Response: "yes", ModelID: "deepseek-chat"},
		&llm.StructuredAnswer{Answer: "yes", FoundInDocument: true}
}

func (m *MockAnswerer) ModelID() string { return "deepseek-chat" }

func newTestOrchestrator(resolver *MockResolver, subs *MockSubmissions, docs *MockDocuments, answerer *MockAnswerer) *Orchestrator {
	cfg := DefaultConfig()
	return NewOrchestrator(resolver, subs, docs, answerer, cfg)
}

// --- Tests ---

func TestOrchestrator_Success(t *testing.T) {
	docs := &MockDocuments{}
	answerer := &MockAnswerer{}
	o := newTestOrchestrator(&MockResolver{}, &MockSubmissions{}, docs, answerer)

	resp := o.Answer(context.Background(), Request{
		Question: "What were net sales?",
		Ticker:   "AAPL",
		Year:     2024,
	})

	if !resp.Success {
		t.Fatalf("Success = false: %s", resp.Error)
	}
	if resp.CompanyName != "Apple Inc." {
		t.Errorf("CompanyName = %s", resp.CompanyName)
	}
	if resp.FormType != "10-Q" {
		t.Errorf("FormType default = %s, want 10-Q", resp.FormType)
	}
	if resp.FilingInfo == nil {
		t.Fatal("FilingInfo missing on success")
	}
	if resp.FilingInfo.AccessionNumber != "0000320193-24-000069" {
		t.Errorf("selected accession = %s, want the 10-Q", resp.FilingInfo.AccessionNumber)
	}
	if resp.FilingInfo.Form != "10-Q" {
		t.Errorf("FilingInfo.Form = %s", resp.FilingInfo.Form)
	}
	if resp.Answer != "Net sales were $90,753 million." {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resp.Usage == nil || resp.Usage.InputTokens != 5000 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if resp.ModelID != "deepseek-chat" {
		t.Errorf("ModelID = %s", resp.ModelID)
	}
	if resp.RequestID == "" || resp.Timestamp == "" {
		t.Error("RequestID and Timestamp must be set")
	}
	if !strings.Contains(answerer.LastPrompt, "What were net sales?") {
		t.Error("question missing from assembled prompt")
	}
	if !strings.Contains(answerer.LastPrompt, "Total net sales were $90,753 million.") {
		t.Error("normalized document text missing from prompt")
	}
	if strings.Contains(answerer.LastPrompt, "<html>") {
		t.Error("raw markup leaked into the prompt")
	}
}

func TestOrchestrator_MissingParameters(t *testing.T) {
	o := newTestOrchestrator(&MockResolver{}, &MockSubmissions{}, &MockDocuments{}, &MockAnswerer{})

	tests := []struct {
		name string
		req  Request
	}{
		{"no question", Request{Ticker: "AAPL", Year: 2024}},
		{"no ticker", Request{Question: "q", Year: 2024}},
		{"no year", Request{Question: "q", Ticker: "AAPL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := o.Answer(context.Background(), tt.req)
			if resp.Success {
				t.Fatal("Success = true with missing parameters")
			}
			if resp.ErrorCode != ErrMissingParameters {
				t.Errorf("ErrorCode = %s, want %s", resp.ErrorCode, ErrMissingParameters)
			}
			if StatusFor(resp.ErrorCode) != 400 {
				t.Errorf("status = %d, want 400", StatusFor(resp.ErrorCode))
			}
		})
	}
}

func TestOrchestrator_TickerNotFound(t *testing.T) {
	resolver := &MockResolver{
		ResolveFunc: func(symbol string) (ticker.Record, bool) {
			return ticker.Record{}, false
		},
	}
	o := newTestOrchestrator(resolver, &MockSubmissions{}, &MockDocuments{}, &MockAnswerer{})

	resp := o.Answer(context.Background(), Request{Question: "q", Ticker: "ZZZZ", Year: 2024})
	if resp.Success {
		t.Fatal("Success = true for unknown ticker")
	}
	if resp.ErrorCode != ErrTickerNotFound {
		t.Errorf("ErrorCode = %s", resp.ErrorCode)
	}
	if !strings.Contains(resp.Error, "ZZZZ") {
		t.Errorf("Error should name the ticker: %s", resp.Error)
	}
}

func TestOrchestrator_NoMatchingFiling(t *testing.T) {
	o := newTestOrchestrator(&MockResolver{}, &MockSubmissions{}, &MockDocuments{}, &MockAnswerer{})

	resp := o.Answer(context.Background(), Request{Question: "q", Ticker: "AAPL", Year: 2019, FormType: "10-K"})
	if resp.Success {
		t.Fatal("Success = true with no filings in year")
	}
	if resp.ErrorCode != ErrNoMatchingFiling {
		t.Errorf("ErrorCode = %s", resp.ErrorCode)
	}
	if !strings.Contains(resp.Error, "10-K") || !strings.Contains(resp.Error, "2019") {
		t.Errorf("Error should name form and year: %s", resp.Error)
	}
}

func TestOrchestrator_SubmissionsFailure(t *testing.T) {
	subs := &MockSubmissions{
		FetchFunc: func(cik string) (*edgar.SubmissionsResponse, error) {
			return nil, fmt.Errorf("submissions API returned status 503")
		},
	}
	o := newTestOrchestrator(&MockResolver{}, subs, &MockDocuments{}, &MockAnswerer{})

	resp := o.Answer(context.Background(), Request{Question: "q", Ticker: "AAPL", Year: 2024})
	if resp.ErrorCode != ErrNoSubmissions {
		t.Errorf("ErrorCode = %s, want %s", resp.ErrorCode, ErrNoSubmissions)
	}
}

func TestOrchestrator_DocumentFetchFailureSkipsInference(t *testing.T) {
	docs := &MockDocuments{
		FetchFunc: func(url string) (string, error) {
			return "", fmt.Errorf("document fetch returned status 403")
		},
	}
	answerer := &MockAnswerer{}
	o := newTestOrchestrator(&MockResolver{}, &MockSubmissions{}, docs, answerer)

	resp := o.Answer(context.Background(), Request{Question: "q", Ticker: "AAPL", Year: 2024})
	if resp.Success {
		t.Fatal("Success = true after fetch failure")
	}
	if resp.ErrorCode != ErrDocumentFetchFailed {
		t.Errorf("ErrorCode = %s", resp.ErrorCode)
	}
	if answerer.Called {
		t.Error("inference must not run when the document fetch fails")
	}
}

func TestOrchestrator_InferenceFailure(t *testing.T) {
	answerer := &MockAnswerer{
		AskPromptFunc: func(ctx context.Context, prompt string) *llm.InferenceResult {
			return &llm.InferenceResult{Success: false, Error: "rate limited", ModelID: "deepseek-chat"}
		},
	}
	o := newTestOrchestrator(&MockResolver{}, &MockSubmissions{}, &MockDocuments{}, answerer)

	resp := o.Answer(context.Background(), Request{Question: "q", Ticker: "AAPL", Year: 2024})
	if resp.Success {
		t.Fatal("Success = true after inference failure")
	}
	if resp.ErrorCode != ErrInferenceFailed {
		t.Errorf("ErrorCode = %s", resp.ErrorCode)
	}
	if !strings.Contains(resp.Error, "rate limited") {
		t.Errorf("Error should carry the provider message: %s", resp.Error)
	}
}

func TestOrchestrator_StructuredMode(t *testing.T) {
	answerer := &MockAnswerer{}
	o := newTestOrchestrator(&MockResolver{}, &MockSubmissions{}, &MockDocuments{}, answerer)

	resp := o.Answer(context.Background(), Request{Question: "q", Ticker: "AAPL", Year: 2024, Structured: true})
	if !resp.Success {
		t.Fatalf("Success = false: %s", resp.Error)
	}
	if resp.FoundInDocument == nil || !*resp.FoundInDocument {
		t.Error("FoundInDocument must be set in structured mode")
	}
	if !strings.Contains(answerer.LastPrompt, "found_in_document") {
		t.Error("structured mode must use the JSON template")
	}
}
