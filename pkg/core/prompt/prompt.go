// Package prompt provides the prompt library and context-budgeted prompt
// assembly for filing question answering. Templates are registered at startup
// and can be replaced at runtime, so wording is tunable without code changes.
package prompt

// Template is a reusable prompt with metadata.
type Template struct {
	ID             string `json:"id"`                   // e.g. "qa.document"
	Name           string `json:"name"`                 // human-readable name
	Description    string `json:"description"`          // purpose of the prompt
	UserPromptTmpl string `json:"user_prompt_template"` // Go template for the user prompt
	Version        string `json:"version"`              // version for tracking changes
}

// TruncationMarker is appended when document text exceeds the context budget.
const TruncationMarker = "...\n[Document truncated due to length]"

// QADocumentID is the template for context-bearing question answering.
const QADocumentID = "qa.document"

// QAStructuredID is the template for JSON-mode question answering.
const QAStructuredID = "qa.structured"

// defaultTemplates are compiled-in fallbacks; LoadFromDirectory can override
// them from JSON files.
var defaultTemplates = []*Template{
	{
		ID:          QADocumentID,
		Name:        "Filing Q&A with document context",
		Description: "Answers a question using only the provided SEC filing text",
		Version:     "1.0",
		UserPromptTmpl: `You are a financial analyst AI assistant. You have been provided with a company's SEC filing document. Please answer the following question based ONLY on the information contained in the document.

Question: {{.Question}}

Document Content:
{{.Document}}

Please provide a clear, concise answer based on the information in the document. If the specific information requested is not available in the document, please state that clearly.`,
	},
	{
		ID:          QAStructuredID,
		Name:        "Filing Q&A with JSON response",
		Description: "Same grounding rules, but the answer comes back as JSON",
		Version:     "1.0",
		UserPromptTmpl: `You are a financial analyst AI assistant. You have been provided with a company's SEC filing document. Answer the following question based ONLY on the information contained in the document.

Question: {{.Question}}

Document Content:
{{.Document}}

Respond with a JSON object of the shape {"answer": "<your answer>", "found_in_document": <true|false>}. Set found_in_document to false and explain what is missing when the document does not contain the requested information.`,
	},
}
