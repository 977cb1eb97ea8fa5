package prompt

import (
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"
)

// Assemble renders the question and document text into the final prompt,
// enforcing the character budget. Text longer than maxChars is cut at maxChars
// (backing up to the nearest rune boundary so multi-byte characters are never
// split) and the truncation marker appended; shorter text is embedded
// verbatim. The returned bool reports whether truncation happened.
func Assemble(question, documentText string, maxChars int) (string, bool, error) {
	return AssembleWith(QADocumentID, question, documentText, maxChars)
}

// AssembleWith renders a specific registered template.
func AssembleWith(templateID, question, documentText string, maxChars int) (string, bool, error) {
	truncated := false
	if maxChars > 0 && len(documentText) > maxChars {
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(documentText[cut]) {
			cut--
		}
		documentText = documentText[:cut] + TruncationMarker
		truncated = true
	}

	t, err := Get().GetTemplate(templateID)
	if err != nil {
		return "", false, err
	}

	tmpl, err := template.New(templateID).Parse(t.UserPromptTmpl)
	if err != nil {
		return "", false, fmt.Errorf("failed to parse template %s: %w", templateID, err)
	}

	var out strings.Builder
	data := struct {
		Question string
		Document string
	}{Question: question, Document: documentText}

	if err := tmpl.Execute(&out, data); err != nil {
		return "", false, fmt.Errorf("failed to render template %s: %w", templateID, err)
	}

	return out.String(), truncated, nil
}
