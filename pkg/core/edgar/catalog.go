// Package edgar provides SEC EDGAR API integration: filing discovery from the
// submissions API and document retrieval from the EDGAR archives.
// API documentation: https://www.sec.gov/developer
package edgar

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"
)

const (
	submissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	archivesURL    = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"
)

// SubmissionsResponse is the top-level company submissions document.
type SubmissionsResponse struct {
	CIK     string   `json:"cik"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Filings Filings  `json:"filings"`
}

// Filings contains the recent filing lists.
type Filings struct {
	Recent RecentFilings `json:"recent"`
}

// RecentFilings holds filing attributes as parallel arrays: position i across
// all arrays describes one filing.
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"` // e.g. "0000320193-24-000069"
	FilingDate      []string `json:"filingDate"`      // e.g. "2024-05-03"
	ReportDate      []string `json:"reportDate"`      // fiscal period end, may be empty
	Form            []string `json:"form"`            // "10-K", "10-Q", "8-K"
	PrimaryDocument []string `json:"primaryDocument"` // filename
}

// Filing is one SEC filing, denormalized from the parallel arrays.
type Filing struct {
	Form            string `json:"form"`
	FilingDate      string `json:"filingDate"`
	AccessionNumber string `json:"accessionNumber"`
	PrimaryDocument string `json:"primaryDocument"`
	ReportDate      string `json:"reportDate,omitempty"`
}

// filingTime parses the ISO filing date for sorting. Falls back to the zero
// time so unparsable dates sort last by date and then lexically.
func (f Filing) filingTime() time.Time {
	t, err := time.Parse("2006-01-02", f.FilingDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// filingYear extracts the calendar year of the filing date, 0 if unknown.
func (f Filing) filingYear() int {
	if len(f.FilingDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(f.FilingDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Catalog fetches and filters a company's filing history.
type Catalog struct {
	client    *http.Client
	userAgent string
}

// NewCatalog creates a catalog client. The SEC requires an identifying
// User-Agent on every request.
func NewCatalog(userAgent string) *Catalog {
	return &Catalog{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: userAgent,
	}
}

// FetchSubmissions retrieves the submissions document for a CIK.
// CIK must be zero-padded to 10 digits.
func (c *Catalog) FetchSubmissions(cik string) (*SubmissionsResponse, error) {
	url := fmt.Sprintf(submissionsURL, cik)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submissions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("submissions API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read submissions response: %w", err)
	}

	var subs SubmissionsResponse
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, fmt.Errorf("failed to parse submissions JSON: %w", err)
	}

	return &subs, nil
}

// BuildFilings converts the parallel arrays into one Filing per index.
// The arrays must be equally long; index drift between them would silently
// mis-attribute filing attributes, so a mismatch is an error.
func BuildFilings(recent RecentFilings) ([]Filing, error) {
	n := len(recent.Form)
	if len(recent.FilingDate) != n || len(recent.AccessionNumber) != n || len(recent.PrimaryDocument) != n {
		return nil, fmt.Errorf("submissions arrays misaligned: form=%d filingDate=%d accessionNumber=%d primaryDocument=%d",
			n, len(recent.FilingDate), len(recent.AccessionNumber), len(recent.PrimaryDocument))
	}

	filings := make([]Filing, 0, n)
	for i := 0; i < n; i++ {
		f := Filing{
			Form:            recent.Form[i],
			FilingDate:      recent.FilingDate[i],
			AccessionNumber: recent.AccessionNumber[i],
			PrimaryDocument: recent.PrimaryDocument[i],
		}
		// reportDate is sometimes shorter than the other arrays in practice;
		// treat a missing entry as empty rather than failing the whole build.
		if i < len(recent.ReportDate) {
			f.ReportDate = recent.ReportDate[i]
		}
		filings = append(filings, f)
	}

	return filings, nil
}

// Filter returns the filings whose form exactly matches one of formTypes and
// whose filing year falls within [startYear, endYear] (0 disables a bound),
// sorted most recent first. An empty formTypes disables form filtering and
// matches every filing, mirroring the year bounds.
func Filter(filings []Filing, formTypes []string, startYear, endYear int) []Filing {
	formSet := make(map[string]bool, len(formTypes))
	for _, ft := range formTypes {
		formSet[ft] = true
	}

	matched := make([]Filing, 0)
	for _, f := range filings {
		if len(formSet) > 0 && !formSet[f.Form] {
			continue
		}
		year := f.filingYear()
		if startYear > 0 && year < startYear {
			continue
		}
		if endYear > 0 && year > endYear {
			continue
		}
		matched = append(matched, f)
	}

	// Sort on parsed dates rather than the raw strings so a source that stops
	// zero-padding dates cannot silently break ordering.
	sort.SliceStable(matched, func(i, j int) bool {
		ti, tj := matched[i].filingTime(), matched[j].filingTime()
		if ti.Equal(tj) {
			return matched[i].FilingDate > matched[j].FilingDate
		}
		return ti.After(tj)
	})

	return matched
}

// Latest returns the most recent filing of the given form with no year
// restriction, or an error when the company has none.
func (c *Catalog) Latest(cik, form string) (*Filing, error) {
	subs, err := c.FetchSubmissions(cik)
	if err != nil {
		return nil, err
	}

	filings, err := BuildFilings(subs.Filings.Recent)
	if err != nil {
		return nil, err
	}

	matched := Filter(filings, []string{form}, 0, 0)
	if len(matched) == 0 {
		return nil, fmt.Errorf("no %s filings found for CIK %s", form, cik)
	}

	return &matched[0], nil
}
