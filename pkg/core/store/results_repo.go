package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"filingqa/pkg/core/pipeline"
)

// ResultsRepo handles the storage of answered requests.
type ResultsRepo struct{}

// NewResultsRepo creates a new repository instance.
func NewResultsRepo() *ResultsRepo {
	return &ResultsRepo{}
}

// Save persists one response envelope keyed by request id.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS qa_results (
//   request_id TEXT PRIMARY KEY,
//   ticker TEXT,
//   question TEXT,
//   envelope JSONB,
//   created_at TIMESTAMPTZ
// );
func (r *ResultsRepo) Save(ctx context.Context, resp *pipeline.Response) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	query := `
		INSERT INTO qa_results (request_id, ticker, question, envelope, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (request_id)
		DO UPDATE SET
			ticker = EXCLUDED.ticker,
			question = EXCLUDED.question,
			envelope = EXCLUDED.envelope,
			created_at = EXCLUDED.created_at;
	`

	_, err = pool.Exec(ctx, query, resp.RequestID, resp.Ticker, resp.Question, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

// Load retrieves a stored envelope by request id.
func (r *ResultsRepo) Load(ctx context.Context, requestID string) (*pipeline.Response, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT envelope FROM qa_results WHERE request_id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, requestID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no result found for request %s", requestID)
		}
		return nil, fmt.Errorf("failed to load result: %w", err)
	}

	var resp pipeline.Response
	if err := json.Unmarshal(jsonData, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &resp, nil
}

// Recent lists the latest envelopes for a ticker, newest first.
func (r *ResultsRepo) Recent(ctx context.Context, tickerSymbol string, limit int) ([]*pipeline.Response, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT envelope FROM qa_results
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := pool.Query(ctx, query, tickerSymbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*pipeline.Response
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var resp pipeline.Response
		if err := json.Unmarshal(jsonData, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		results = append(results, &resp)
	}
	return results, rows.Err()
}
