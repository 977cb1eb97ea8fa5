package edgar

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Document is the normalized plain-text body of a filing. Text carries no
// markup and uses single spaces as separators. Truncated stays false here;
// the context assembler owns budgeting.
type Document struct {
	Text           string `json:"text"`
	OriginalLength int    `json:"original_length"`
	Truncated      bool   `json:"truncated"`
}

// DocumentClient downloads filing documents from the EDGAR archives.
type DocumentClient struct {
	client    *http.Client
	userAgent string
}

// NewDocumentClient creates a document fetcher with the SEC User-Agent header.
func NewDocumentClient(userAgent string) *DocumentClient {
	return &DocumentClient{
		client:    &http.Client{Timeout: 60 * time.Second},
		userAgent: userAgent,
	}
}

// DocumentURL builds the canonical archive location for a filing document.
// The accession number directory drops the dashes.
func DocumentURL(cik, accessionNumber, primaryDocument string) string {
	accessionNoDashes := strings.ReplaceAll(accessionNumber, "-", "")
	return fmt.Sprintf(archivesURL, cik, accessionNoDashes, primaryDocument)
}

// Fetch downloads raw filing markup. A single attempt; network errors and
// non-200 responses surface as errors, never as partial content.
func (d *DocumentClient) Fetch(url string) (string, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("document request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("document fetch returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read document body: %w", err)
	}

	return string(body), nil
}

var multiSpace = regexp.MustCompile(`\s{2,}`)

// Normalize reduces raw filing markup to plain prose text: script and style
// content is dropped, visible text extracted, lines split on runs of two or
// more spaces, empty fragments discarded, and the rest rejoined with single
// spaces. Lossy on layout; only prose survives. Applying it to already-clean
// text returns the text unchanged.
func Normalize(rawMarkup string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawMarkup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document markup: %w", err)
	}

	doc.Find("script, style").Remove()
	text := doc.Text()

	var fragments []string
	for _, line := range strings.Split(text, "\n") {
		for _, chunk := range multiSpace.Split(line, -1) {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				fragments = append(fragments, chunk)
			}
		}
	}
	clean := strings.Join(fragments, " ")

	return &Document{
		Text:           clean,
		OriginalLength: len(clean),
	}, nil
}
