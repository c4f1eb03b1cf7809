package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-systems/clausewise/internal/adapters/driven/storage/memory"
	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/core/ports/driving"
	"github.com/verdict-systems/clausewise/internal/core/services"
)

// stubAnswers returns a canned answer or error.
type stubAnswers struct {
	answer *domain.Answer
	err    error
}

var _ driving.AnswerService = (*stubAnswers)(nil)

func (s *stubAnswers) AnswerQuestion(_ context.Context, contractID domain.ContractID, _ string) (*domain.Answer, error) {
	if s.err != nil {
		return nil, s.err
	}
	answer := *s.answer
	answer.ContractID = contractID
	return &answer, nil
}

func (s *stubAnswers) History(_ context.Context, _ domain.ContractID) ([]domain.QARecord, error) {
	return nil, nil
}

// stubAnalysis returns canned assessments and summaries.
type stubAnalysis struct {
	risks   []domain.RiskAssessment
	summary *domain.ContractSummary
	err     error
}

var _ driving.AnalysisService = (*stubAnalysis)(nil)

func (s *stubAnalysis) AnalyzeRisks(_ context.Context, _ domain.ContractID) ([]domain.RiskAssessment, error) {
	return s.risks, s.err
}

func (s *stubAnalysis) Risks(_ context.Context, _ domain.ContractID) ([]domain.RiskAssessment, error) {
	return s.risks, s.err
}

func (s *stubAnalysis) Summarize(_ context.Context, _ domain.ContractID, role domain.SummaryRole) (*domain.ContractSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := domain.ParseSummaryRole(string(role)); !ok {
		return nil, domain.ErrInvalidRole
	}
	return s.summary, nil
}

func (s *stubAnalysis) Summaries(_ context.Context, _ domain.ContractID) ([]domain.ContractSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.summary == nil {
		return nil, nil
	}
	return []domain.ContractSummary{*s.summary}, nil
}

// testServer wires a handler over in-memory stores.
func testServer(t *testing.T, answers driving.AnswerService) (http.Handler, *memory.ClauseStore, *memory.HistoryStore) {
	t.Helper()
	return testServerWithAnalysis(t, answers, &stubAnalysis{})
}

func testServerWithAnalysis(t *testing.T, answers driving.AnswerService, analysis driving.AnalysisService) (http.Handler, *memory.ClauseStore, *memory.HistoryStore) {
	t.Helper()
	store := memory.NewClauseStore()
	history := memory.NewHistoryStore()
	ingest := services.NewIngestService(store, nil)
	server := NewServer(answers, ingest, analysis, store, history)
	return server.Handler(), store, history
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	handler, _, _ := testServer(t, &stubAnswers{})

	rec := doJSON(t, handler, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleCreateContract(t *testing.T) {
	handler, store, _ := testServer(t, &stubAnswers{})

	rec := doJSON(t, handler, http.MethodPost, "/contracts",
		`{"title": "MSA", "text": "1 Termination\nThirty days notice required."}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID          domain.ContractID `json:"id"`
		Title       string            `json:"title"`
		Status      string            `json:"status"`
		ClauseCount int               `json:"clause_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "MSA", resp.Title)
	assert.Equal(t, 1, resp.ClauseCount)

	clauses, err := store.GetClauses(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Len(t, clauses, 1)
}

func TestHandleCreateContract_BadRequests(t *testing.T) {
	handler, _, _ := testServer(t, &stubAnswers{})

	rec := doJSON(t, handler, http.MethodPost, "/contracts", `{"title": "no text"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/contracts", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetContract(t *testing.T) {
	handler, store, _ := testServer(t, &stubAnswers{})

	contract := &domain.Contract{Title: "MSA", Text: "text"}
	require.NoError(t, store.SaveContract(context.Background(), contract))
	_, err := store.SaveClauses(context.Background(), []domain.Clause{
		{ContractID: contract.ID, SegmentID: "s1", Text: "clause body", Embedding: []float32{1}},
	})
	require.NoError(t, err)

	rec := doJSON(t, handler, http.MethodGet, "/contracts/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Contract struct {
			ID domain.ContractID `json:"id"`
		} `json:"contract"`
		Clauses []struct {
			Text     string `json:"text"`
			Embedded bool   `json:"embedded"`
		} `json:"clauses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, contract.ID, resp.Contract.ID)
	require.Len(t, resp.Clauses, 1)
	assert.True(t, resp.Clauses[0].Embedded)
	// Raw vectors never leave the API.
	assert.NotContains(t, rec.Body.String(), "embedding")
}

func TestHandleGetContract_NotFound(t *testing.T) {
	handler, _, _ := testServer(t, &stubAnswers{})

	rec := doJSON(t, handler, http.MethodGet, "/contracts/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetContract_InvalidID(t *testing.T) {
	handler, _, _ := testServer(t, &stubAnswers{})

	rec := doJSON(t, handler, http.MethodGet, "/contracts/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDeleteContract(t *testing.T) {
	handler, store, _ := testServer(t, &stubAnswers{})

	contract := &domain.Contract{Title: "MSA", Text: "text"}
	require.NoError(t, store.SaveContract(context.Background(), contract))

	rec := doJSON(t, handler, http.MethodDelete, "/contracts/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, "/contracts/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAsk_Success(t *testing.T) {
	answers := &stubAnswers{answer: &domain.Answer{
		Answer:              "Thirty days.",
		Confidence:          domain.ConfidenceHigh,
		ReferencedClauseIDs: []domain.ClauseID{7},
	}}
	handler, store, _ := testServer(t, answers)

	contract := &domain.Contract{Title: "MSA", Text: "text"}
	require.NoError(t, store.SaveContract(context.Background(), contract))

	rec := doJSON(t, handler, http.MethodPost, "/contracts/1/ask",
		`{"question": "what is the notice period?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Answer              string            `json:"answer"`
		Confidence          string            `json:"confidence"`
		ReferencedClauseIDs []domain.ClauseID `json:"referenced_clause_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Thirty days.", resp.Answer)
	assert.Equal(t, "high", resp.Confidence)
	assert.Equal(t, []domain.ClauseID{7}, resp.ReferencedClauseIDs)
}

func TestHandleAsk_ShortQuestionPreCheck(t *testing.T) {
	// The edge rejects sub-5-char questions before the service runs.
	answers := &stubAnswers{err: errors.New("service must not be called")}
	handler, _, _ := testServer(t, answers)

	rec := doJSON(t, handler, http.MethodPost, "/contracts/1/ask", `{"question": "why"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAsk_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"question too short", domain.ErrQuestionTooShort, http.StatusBadRequest},
		{"no embedded clauses", domain.ErrNoEmbeddedClauses, http.StatusBadRequest},
		{"contract missing", domain.ErrNotFound, http.StatusNotFound},
		{"embedding provider down", domain.ErrEmbeddingFailed, http.StatusInternalServerError},
		{"generation failed", domain.ErrGenerationFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := testServer(t, &stubAnswers{err: tt.err})

			rec := doJSON(t, handler, http.MethodPost, "/contracts/1/ask",
				`{"question": "what is the notice period?"}`)
			assert.Equal(t, tt.want, rec.Code)

			var resp apiError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleHistory(t *testing.T) {
	handler, store, history := testServer(t, &stubAnswers{})

	contract := &domain.Contract{Title: "MSA", Text: "text"}
	require.NoError(t, store.SaveContract(context.Background(), contract))
	require.NoError(t, history.RecordQA(context.Background(), &domain.QARecord{
		ContractID: contract.ID,
		Question:   "notice period?",
		Answer:     "Thirty days.",
		Confidence: domain.ConfidenceHigh,
	}))

	rec := doJSON(t, handler, http.MethodGet, "/contracts/1/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		History []struct {
			Question   string `json:"question"`
			Answer     string `json:"answer"`
			Confidence string `json:"confidence"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.History, 1)
	assert.Equal(t, "notice period?", resp.History[0].Question)
}

func TestHandleHistory_UnknownContract(t *testing.T) {
	handler, _, _ := testServer(t, &stubAnswers{})

	rec := doJSON(t, handler, http.MethodGet, "/contracts/42/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAnalyzeRisks(t *testing.T) {
	clauseID := domain.ClauseID(7)
	analysis := &stubAnalysis{risks: []domain.RiskAssessment{
		{
			ID:              1,
			ClauseID:        &clauseID,
			ClauseReference: "Clause 8.1",
			Type:            domain.RiskLiabilityCap,
			Level:           domain.RiskHigh,
			Description:     "Unlimited liability for the supplier.",
			Justification:   "Clause 8.1 carves out no cap.",
			Recommendation:  "Negotiate a liability cap.",
		},
		{
			ID:            2,
			Type:          domain.RiskPaymentTerms,
			Level:         domain.RiskLow,
			Description:   "Net-90 payment terms.",
			Justification: "Longer than the market norm.",
		},
	}}
	handler, _, _ := testServerWithAnalysis(t, &stubAnswers{}, analysis)

	rec := doJSON(t, handler, http.MethodPost, "/contracts/1/risks", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Risks []struct {
			ClauseID        *domain.ClauseID `json:"clause_id"`
			ClauseReference string           `json:"clause_reference"`
			RiskType        string           `json:"risk_type"`
			RiskLevel       string           `json:"risk_level"`
			Description     string           `json:"description"`
		} `json:"risks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Risks, 2)
	require.NotNil(t, resp.Risks[0].ClauseID)
	assert.Equal(t, clauseID, *resp.Risks[0].ClauseID)
	assert.Equal(t, "liability_cap", resp.Risks[0].RiskType)
	assert.Equal(t, "high", resp.Risks[0].RiskLevel)
	// Contract-level risks carry no clause reference at all.
	assert.Nil(t, resp.Risks[1].ClauseID)
	assert.Empty(t, resp.Risks[1].ClauseReference)
}

func TestHandleAnalyzeRisks_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"contract missing", domain.ErrNotFound, http.StatusNotFound},
		{"contract too short", domain.ErrContractTooShort, http.StatusBadRequest},
		{"generation failed", domain.ErrGenerationFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, _ := testServerWithAnalysis(t, &stubAnswers{}, &stubAnalysis{err: tt.err})

			rec := doJSON(t, handler, http.MethodPost, "/contracts/1/risks", "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandleListRisks_Empty(t *testing.T) {
	handler, _, _ := testServerWithAnalysis(t, &stubAnswers{}, &stubAnalysis{})

	rec := doJSON(t, handler, http.MethodGet, "/contracts/1/risks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"risks":[]}`, rec.Body.String())
}

func TestHandleSummarize(t *testing.T) {
	analysis := &stubAnalysis{summary: &domain.ContractSummary{
		ID:   1,
		Type: domain.SummaryRoleSpecific,
		Role: domain.RoleClient,
		Content: domain.SummaryContent{
			Summary:   "A services agreement with net-30 payment.",
			KeyPoints: []string{"Net-30 payments", "30-day termination", "Capped liability"},
		},
	}}
	handler, _, _ := testServerWithAnalysis(t, &stubAnswers{}, analysis)

	rec := doJSON(t, handler, http.MethodPost, "/contracts/1/summaries", `{"role": "client"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Type    string `json:"summary_type"`
		Role    string `json:"role"`
		Content struct {
			Summary   string   `json:"summary"`
			KeyPoints []string `json:"key_points"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "role_specific", resp.Type)
	assert.Equal(t, "client", resp.Role)
	assert.Len(t, resp.Content.KeyPoints, 3)
}

func TestHandleSummarize_EmptyBodyMeansNeutral(t *testing.T) {
	analysis := &stubAnalysis{summary: &domain.ContractSummary{
		Type: domain.SummaryOverview,
		Role: domain.RoleNeutral,
	}}
	handler, _, _ := testServerWithAnalysis(t, &stubAnswers{}, analysis)

	rec := doJSON(t, handler, http.MethodPost, "/contracts/1/summaries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp summaryPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.RoleNeutral, resp.Role)
}

func TestHandleSummarize_UnknownRole(t *testing.T) {
	handler, _, _ := testServerWithAnalysis(t, &stubAnswers{}, &stubAnalysis{})

	rec := doJSON(t, handler, http.MethodPost, "/contracts/1/summaries", `{"role": "shareholder"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListSummaries(t *testing.T) {
	analysis := &stubAnalysis{summary: &domain.ContractSummary{
		ID:   3,
		Type: domain.SummaryOverview,
		Role: domain.RoleNeutral,
		Content: domain.SummaryContent{
			Summary:   "Overview.",
			KeyPoints: []string{"a", "b", "c"},
		},
	}}
	handler, _, _ := testServerWithAnalysis(t, &stubAnswers{}, analysis)

	rec := doJSON(t, handler, http.MethodGet, "/contracts/1/summaries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Summaries []summaryPayload `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Summaries, 1)
	assert.Equal(t, int64(3), resp.Summaries[0].ID)
}
