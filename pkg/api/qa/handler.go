// Package qa exposes the question-answering pipeline over HTTP.
package qa

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"filingqa/pkg/core/pipeline"
	"filingqa/pkg/core/store"
)

// Handler holds dependencies for the Q&A endpoint.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	results      *store.ResultsRepo
}

// NewHandler creates a new Q&A handler. The results repo may be nil when
// persistence is disabled.
func NewHandler(orchestrator *pipeline.Orchestrator, results *store.ResultsRepo) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		results:      results,
	}
}

// HandleAsk answers one question about a company filing.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp := h.orchestrator.Answer(r.Context(), req)

	if h.results != nil {
		if err := h.results.Save(r.Context(), resp); err != nil {
			fmt.Printf("[qa] failed to persist result %s: %v\n", resp.RequestID, err)
		}
	}

	w.WriteHeader(pipeline.StatusFor(resp.ErrorCode))
	json.NewEncoder(w).Encode(resp)
}

// HandleResult returns a previously stored envelope by request id.
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if h.results == nil {
		http.Error(w, "Persistence not enabled", http.StatusNotFound)
		return
	}

	requestID := r.URL.Query().Get("request_id")
	if requestID == "" {
		http.Error(w, "Missing request_id parameter", http.StatusBadRequest)
		return
	}

	resp, err := h.results.Load(r.Context(), requestID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(resp)
}

// HandleRecent lists the latest stored envelopes for a ticker, newest first.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if h.results == nil {
		http.Error(w, "Persistence not enabled", http.StatusNotFound)
		return
	}

	tickerSymbol := r.URL.Query().Get("ticker")
	if tickerSymbol == "" {
		http.Error(w, "Missing ticker parameter", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.results.Recent(r.Context(), tickerSymbol, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(results)
}
