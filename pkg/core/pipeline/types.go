package pipeline

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"filingqa/pkg/core/agent"
	"filingqa/pkg/core/llm"
)

// ErrorCode classifies pipeline failures for status mapping.
type ErrorCode string

const (
	ErrMissingParameters   ErrorCode = "missing_parameters"
	ErrTickerNotFound      ErrorCode = "ticker_not_found"
	ErrNoSubmissions       ErrorCode = "no_submissions"
	ErrNoMatchingFiling    ErrorCode = "no_matching_filing"
	ErrDocumentFetchFailed ErrorCode = "document_fetch_failed"
	ErrInferenceFailed     ErrorCode = "inference_failed"
)

// StatusFor maps an error code to its HTTP-equivalent status.
func StatusFor(code ErrorCode) int {
	switch code {
	case ErrMissingParameters:
		return http.StatusBadRequest
	case ErrTickerNotFound, ErrNoSubmissions, ErrNoMatchingFiling:
		return http.StatusNotFound
	case ErrDocumentFetchFailed, ErrInferenceFailed:
		return http.StatusInternalServerError
	case "":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Year accepts either a JSON number or a numeric string ("2024" and 2024 are
// equivalent on the wire).
type Year int

// UnmarshalJSON implements the flexible decoding.
func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*y = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid year value %s", string(data))
	}
	*y = Year(n)
	return nil
}

// Request is one question-answering request.
type Request struct {
	Question   string `json:"question"`
	Ticker     string `json:"ticker"`
	Year       Year   `json:"year"`
	FormType   string `json:"form_type"`
	Structured bool   `json:"structured,omitempty"`
}

// FilingInfo echoes the selected filing in the response envelope.
// Field names follow the submissions source.
type FilingInfo struct {
	FilingDate      string `json:"filingDate"`
	AccessionNumber string `json:"accessionNumber"`
	PrimaryDocument string `json:"primaryDocument"`
	Form            string `json:"form"`
}

// Response is the normalized envelope returned to callers, independent of
// transport wrapping. On success it echoes the request plus the company,
// filing and inference fields; on failure it carries the error and timestamp.
type Response struct {
	Success         bool        `json:"success"`
	RequestID       string      `json:"request_id"`
	Question        string      `json:"question,omitempty"`
	Ticker          string      `json:"ticker,omitempty"`
	Year            Year        `json:"year,omitempty"`
	FormType        string      `json:"form_type,omitempty"`
	CompanyName     string      `json:"company_name,omitempty"`
	FilingInfo      *FilingInfo `json:"filing_info,omitempty"`
	Answer          string      `json:"response,omitempty"`
	FoundInDocument *bool       `json:"found_in_document,omitempty"`
	Usage           *llm.Usage  `json:"usage,omitempty"`
	ModelID         string      `json:"model_id,omitempty"`
	Truncated       bool        `json:"context_truncated,omitempty"`
	Error           string      `json:"error,omitempty"`
	ErrorCode       ErrorCode   `json:"-"`
	Timestamp       string      `json:"timestamp"`
}

var _ json.Unmarshaler = (*Year)(nil)

// Config holds the tunables of one pipeline instance.
type Config struct {
	UserAgent       string       `yaml:"user_agent"`
	TickerCachePath string       `yaml:"ticker_cache"`
	UseTickerCache  bool         `yaml:"use_ticker_cache"`
	MaxContextChars int          `yaml:"max_context_chars"`
	MaxTokens       int          `yaml:"max_tokens"`
	Temperature     float64      `yaml:"temperature"`
	LLM             agent.Config `yaml:"llm"`
}

// DefaultConfig returns the defaults used when no config file is present.
func DefaultConfig() Config {
	return Config{
		UserAgent:       "FilingQA/1.0 (contact@example.com)",
		TickerCachePath: "company_tickers.json",
		UseTickerCache:  true,
		MaxContextChars: 150000,
		MaxTokens:       1000,
		Temperature:     0.1,
		LLM: agent.Config{
			ActiveProvider: "deepseek",
		},
	}
}
