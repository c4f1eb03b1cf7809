// Package httpapi exposes the Q&A system as a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
	"github.com/verdict-systems/clausewise/internal/core/ports/driving"
	"github.com/verdict-systems/clausewise/internal/logger"
)

// minAskLength is the edge pre-check on question length. The core
// applies its own stricter minimum; this one only rejects requests that
// are obviously junk before any provider work happens.
const minAskLength = 5

// Server handles HTTP requests for the contract Q&A API.
type Server struct {
	answers  driving.AnswerService
	ingest   driving.IngestService
	analysis driving.AnalysisService
	store    driven.ClauseStore
	history  driven.HistoryStore
}

// NewServer creates an HTTP API server over the given services.
func NewServer(answers driving.AnswerService, ingest driving.IngestService,
	analysis driving.AnalysisService, store driven.ClauseStore, history driven.HistoryStore) *Server {
	return &Server{
		answers:  answers,
		ingest:   ingest,
		analysis: analysis,
		store:    store,
		history:  history,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /contracts", s.handleCreateContract)
	mux.HandleFunc("GET /contracts", s.handleListContracts)
	mux.HandleFunc("GET /contracts/{id}", s.handleGetContract)
	mux.HandleFunc("DELETE /contracts/{id}", s.handleDeleteContract)
	mux.HandleFunc("POST /contracts/{id}/ask", s.handleAsk)
	mux.HandleFunc("GET /contracts/{id}/history", s.handleHistory)
	mux.HandleFunc("POST /contracts/{id}/risks", s.handleAnalyzeRisks)
	mux.HandleFunc("GET /contracts/{id}/risks", s.handleListRisks)
	mux.HandleFunc("POST /contracts/{id}/summaries", s.handleSummarize)
	mux.HandleFunc("GET /contracts/{id}/summaries", s.handleListSummaries)
	return logRequests(mux)
}

// ListenAndServe runs the API until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// logRequests logs method, path and duration for every request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}

// apiError is the JSON error body.
type apiError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, apiError{Error: message, Code: code})
}

// writeDomainError maps domain errors onto HTTP status codes: input
// errors become 400, missing resources 404, everything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case domain.IsInputError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
