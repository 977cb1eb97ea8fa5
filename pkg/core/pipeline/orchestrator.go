// Package pipeline sequences ticker resolution, filing discovery, document
// retrieval and model invocation into one question-answering request.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"filingqa/pkg/core/edgar"
	"filingqa/pkg/core/llm"
	"filingqa/pkg/core/prompt"
	"filingqa/pkg/core/ticker"
)

// TickerResolver resolves a ticker symbol to an issuer record.
type TickerResolver interface {
	Resolve(symbol string) (ticker.Record, bool)
}

// SubmissionsSource retrieves a company's filing history.
type SubmissionsSource interface {
	FetchSubmissions(cik string) (*edgar.SubmissionsResponse, error)
}

// DocumentSource retrieves raw filing markup by URL.
type DocumentSource interface {
	Fetch(url string) (string, error)
}

// Answerer invokes the inference service. Failures come back inside the
// envelope, never as errors.
type Answerer interface {
	AskPrompt(ctx context.Context, prompt string) *llm.InferenceResult
	AskStructured(ctx context.Context, prompt string) (*llm.InferenceResult, *llm.StructuredAnswer)
	ModelID() string
}

// Orchestrator runs the request pipeline: ResolveTicker -> FetchSubmissions ->
// SelectFiling -> FetchDocument -> AssemblePrompt -> Invoke -> Respond.
// Each stage either advances or terminates the request with a typed error;
// there are no retries and no backtracking.
type Orchestrator struct {
	resolver    TickerResolver
	submissions SubmissionsSource
	documents   DocumentSource
	answerer    Answerer
	config      Config
}

// NewOrchestrator wires the pipeline stages.
func NewOrchestrator(resolver TickerResolver, submissions SubmissionsSource, documents DocumentSource, answerer Answerer, config Config) *Orchestrator {
	return &Orchestrator{
		resolver:    resolver,
		submissions: submissions,
		documents:   documents,
		answerer:    answerer,
		config:      config,
	}
}

// Answer executes one request end to end and always returns an envelope.
func (o *Orchestrator) Answer(ctx context.Context, req Request) *Response {
	if req.FormType == "" {
		req.FormType = "10-Q"
	}

	// Validate input before touching any external service.
	if req.Question == "" || req.Ticker == "" || req.Year == 0 {
		return o.fail(req, ErrMissingParameters, "Missing required parameters: question, ticker, year")
	}

	// ResolveTicker
	rec, ok := o.resolver.Resolve(req.Ticker)
	if !ok {
		return o.fail(req, ErrTickerNotFound, fmt.Sprintf("Company not found for ticker: %s", req.Ticker))
	}

	// FetchSubmissions
	subs, err := o.submissions.FetchSubmissions(rec.CIK)
	if err != nil {
		fmt.Printf("[pipeline] submissions fetch failed for %s: %v\n", rec.CIK, err)
		return o.fail(req, ErrNoSubmissions, fmt.Sprintf("No submissions found for %s", rec.Name))
	}

	// SelectFiling
	filings, err := edgar.BuildFilings(subs.Filings.Recent)
	if err != nil {
		fmt.Printf("[pipeline] malformed submissions for %s: %v\n", rec.CIK, err)
		return o.fail(req, ErrNoSubmissions, fmt.Sprintf("No submissions found for %s", rec.Name))
	}
	matched := edgar.Filter(filings, []string{req.FormType}, int(req.Year), int(req.Year))
	if len(matched) == 0 {
		return o.fail(req, ErrNoMatchingFiling, fmt.Sprintf("No %s filings found for %s in %d", req.FormType, rec.Name, req.Year))
	}
	selected := matched[0]

	// FetchDocument
	url := edgar.DocumentURL(rec.CIK, selected.AccessionNumber, selected.PrimaryDocument)
	raw, err := o.documents.Fetch(url)
	if err != nil {
		fmt.Printf("[pipeline] document fetch failed: %v\n", err)
		return o.fail(req, ErrDocumentFetchFailed, "Failed to download filing content")
	}

	doc, err := edgar.Normalize(raw)
	if err != nil {
		fmt.Printf("[pipeline] document normalization failed: %v\n", err)
		return o.fail(req, ErrDocumentFetchFailed, "Failed to extract filing text")
	}

	// AssemblePrompt
	templateID := prompt.QADocumentID
	if req.Structured {
		templateID = prompt.QAStructuredID
	}
	promptText, truncated, err := prompt.AssembleWith(templateID, req.Question, doc.Text, o.config.MaxContextChars)
	if err != nil {
		fmt.Printf("[pipeline] prompt assembly failed: %v\n", err)
		return o.fail(req, ErrInferenceFailed, "Failed to assemble prompt")
	}
	doc.Truncated = truncated

	// Invoke
	var result *llm.InferenceResult
	var structured *llm.StructuredAnswer
	if req.Structured {
		result, structured = o.answerer.AskStructured(ctx, promptText)
	} else {
		result = o.answerer.AskPrompt(ctx, promptText)
	}
	if !result.Success {
		return o.fail(req, ErrInferenceFailed, fmt.Sprintf("Failed to generate AI response: %s", result.Error))
	}

	// Respond
	resp := &Response{
		Success:     true,
		RequestID:   uuid.NewString(),
		Question:    req.Question,
		Ticker:      rec.Ticker,
		Year:        req.Year,
		FormType:    req.FormType,
		CompanyName: rec.Name,
		FilingInfo: &FilingInfo{
			FilingDate:      selected.FilingDate,
			AccessionNumber: selected.AccessionNumber,
			PrimaryDocument: selected.PrimaryDocument,
			Form:            selected.Form,
		},
		Answer:    result.Response,
		Usage:     result.Usage,
		ModelID:   result.ModelID,
		Truncated: truncated,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if structured != nil {
		resp.FoundInDocument = &structured.FoundInDocument
	}
	return resp
}

func (o *Orchestrator) fail(req Request, code ErrorCode, message string) *Response {
	return &Response{
		Success:   false,
		RequestID: uuid.NewString(),
		Ticker:    req.Ticker,
		Year:      req.Year,
		FormType:  req.FormType,
		Error:     message,
		ErrorCode: code,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
