// Package ticker maintains the ticker -> CIK lookup index built from
// SEC's company_tickers.json.
package ticker

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const companyTickersURL = "https://www.sec.gov/files/company_tickers.json"

// Record identifies one issuer. CIK is always zero-padded to 10 digits;
// Ticker is always upper-cased.
type Record struct {
	CIK    string `json:"cik"`
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

// Index holds an in-memory ticker -> Record map. The map is built once per
// Load and swapped in whole, so concurrent Resolve calls never observe a
// partially populated index.
type Index struct {
	client    *http.Client
	userAgent string

	mu      sync.RWMutex
	records map[string]Record
}

// NewIndex creates an empty index. Call Load before resolving.
func NewIndex(userAgent string) *Index {
	return &Index{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: userAgent,
		records:   make(map[string]Record),
	}
}

// tickerEntry matches the SEC source format:
// {"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}, ...}
type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Load populates the index. With useCache it reads the local snapshot at
// cachePath first; otherwise (or on a cache miss) it fetches the authoritative
// list from SEC and rewrites the snapshot. Any failure leaves the index empty
// and usable: Resolve just reports not-found for everything.
func (x *Index) Load(useCache bool, cachePath string) {
	data, err := x.loadRaw(useCache, cachePath)
	if err != nil {
		fmt.Printf("[ticker] Error loading ticker data: %v\n", err)
		return
	}

	var entries map[string]tickerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		fmt.Printf("[ticker] Error parsing ticker data: %v\n", err)
		return
	}

	records := make(map[string]Record, len(entries))
	for _, e := range entries {
		sym := strings.ToUpper(strings.TrimSpace(e.Ticker))
		if sym == "" {
			continue
		}
		records[sym] = Record{
			CIK:    fmt.Sprintf("%010d", e.CIK),
			Name:   strings.TrimSpace(e.Title),
			Ticker: sym,
		}
	}

	// Full replace under the write lock; readers see old or new, never a mix.
	x.mu.Lock()
	x.records = records
	x.mu.Unlock()

	fmt.Printf("[ticker] Loaded %d companies.\n", len(records))
}

func (x *Index) loadRaw(useCache bool, cachePath string) ([]byte, error) {
	if useCache && cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			fmt.Printf("[ticker] Loading ticker data from cache: %s\n", cachePath)
			return data, nil
		}
	}

	fmt.Println("[ticker] Fetching fresh ticker data from SEC...")
	req, err := http.NewRequest("GET", companyTickersURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", x.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company tickers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SEC ticker API returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read ticker response: %w", err)
	}

	if cachePath != "" {
		if err := os.WriteFile(cachePath, data, 0644); err != nil {
			fmt.Printf("[ticker] Warning: failed to write snapshot %s: %v\n", cachePath, err)
		}
	}

	return data, nil
}

// Resolve looks up a ticker symbol. Matching is case-insensitive and exact.
func (x *Index) Resolve(symbol string) (Record, bool) {
	key := strings.ToUpper(strings.TrimSpace(symbol))

	x.mu.RLock()
	rec, ok := x.records[key]
	x.mu.RUnlock()

	return rec, ok
}

// Len reports the number of indexed companies.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}
