package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAssemble_UnderBudget(t *testing.T) {
	doc := "Total revenue was $100 million for the quarter."
	out, truncated, err := Assemble("What was revenue?", doc, 150000)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if truncated {
		t.Error("document under budget must not be truncated")
	}
	if !strings.Contains(out, doc) {
		t.Error("document text must be embedded verbatim")
	}
	if !strings.Contains(out, "What was revenue?") {
		t.Error("question missing from prompt")
	}
	if !strings.Contains(out, "based ONLY on the information contained in the document") {
		t.Error("grounding instruction missing from prompt")
	}
	if strings.Contains(out, TruncationMarker) {
		t.Error("marker must not appear without truncation")
	}
}

func TestAssemble_OverBudget(t *testing.T) {
	doc := strings.Repeat("a", 500)
	maxChars := 100

	out, truncated, err := Assemble("q", doc, maxChars)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !truncated {
		t.Fatal("document over budget must report truncation")
	}
	if !strings.Contains(out, doc[:maxChars]+TruncationMarker) {
		t.Error("prompt must carry exactly maxChars of text followed by the marker")
	}
	if strings.Contains(out, strings.Repeat("a", maxChars+1)) {
		t.Error("more than maxChars of document text leaked into the prompt")
	}
}

func TestAssemble_CutRespectsRuneBoundaries(t *testing.T) {
	// Filings are full of section signs and curly quotes; a budget landing
	// mid-rune must not leave invalid UTF-8 before the marker.
	doc := strings.Repeat("a", 99) + "§§§"
	maxChars := 100

	out, truncated, err := Assemble("q", doc, maxChars)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !truncated {
		t.Fatal("document over budget must report truncation")
	}
	if !utf8.ValidString(out) {
		t.Fatal("prompt contains invalid UTF-8 after truncation")
	}
	if !strings.Contains(out, strings.Repeat("a", 99)+TruncationMarker) {
		t.Error("cut should back up to the rune boundary before the marker")
	}
	if strings.Contains(out, "§") {
		t.Error("partial rune content leaked past the budget")
	}
}

func TestAssemble_ExactBudgetNotTruncated(t *testing.T) {
	doc := strings.Repeat("b", 100)
	out, truncated, err := Assemble("q", doc, 100)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if truncated {
		t.Error("text exactly at budget must pass verbatim")
	}
	if !strings.Contains(out, doc) {
		t.Error("document text missing")
	}
}

func TestAssemble_ZeroBudgetDisablesTruncation(t *testing.T) {
	doc := strings.Repeat("c", 1000)
	out, truncated, err := Assemble("q", doc, 0)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if truncated {
		t.Error("zero budget means no limit")
	}
	if !strings.Contains(out, doc) {
		t.Error("document text missing")
	}
}

func TestAssembleWith_UnknownTemplate(t *testing.T) {
	if _, _, err := AssembleWith("does.not.exist", "q", "doc", 100); err == nil {
		t.Fatal("AssembleWith() should fail on unknown template id")
	}
}

func TestAssembleWith_StructuredTemplate(t *testing.T) {
	out, _, err := AssembleWith(QAStructuredID, "What was revenue?", "doc text", 0)
	if err != nil {
		t.Fatalf("AssembleWith() error = %v", err)
	}
	if !strings.Contains(out, `"found_in_document"`) {
		t.Error("structured template must request the JSON shape")
	}
}
