package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// maxBodySize bounds request bodies at 10 MB, enough for any contract.
const maxBodySize = 10 << 20

// contractPayload is the JSON shape of a contract in responses.
type contractPayload struct {
	ID          domain.ContractID `json:"id"`
	Title       string            `json:"title"`
	Status      string            `json:"status"`
	UploadedAt  time.Time         `json:"uploaded_at"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
	ClauseCount int               `json:"clause_count,omitempty"`
}

// clausePayload is the JSON shape of a clause in responses.
// Embeddings are internal and never serialized.
type clausePayload struct {
	ID       domain.ClauseID `json:"id"`
	Number   string          `json:"number,omitempty"`
	Title    string          `json:"title,omitempty"`
	Text     string          `json:"text"`
	Embedded bool            `json:"embedded"`
}

// historyPayload is the JSON shape of a past Q&A interaction.
type historyPayload struct {
	ID                  string            `json:"id"`
	Question            string            `json:"question"`
	Answer              string            `json:"answer"`
	Confidence          domain.Confidence `json:"confidence"`
	ReferencedClauseIDs []domain.ClauseID `json:"referenced_clause_ids"`
	AskedAt             time.Time         `json:"asked_at"`
}

// answerPayload is the JSON shape of a Q&A answer.
type answerPayload struct {
	ContractID          domain.ContractID `json:"contract_id"`
	Answer              string            `json:"answer"`
	Confidence          domain.Confidence `json:"confidence"`
	Explanation         string            `json:"explanation,omitempty"`
	ReferencedClauseIDs []domain.ClauseID `json:"referenced_clause_ids"`
}

func toContractPayload(contract *domain.Contract) contractPayload {
	p := contractPayload{
		ID:         contract.ID,
		Title:      contract.Title,
		Status:     string(contract.Status),
		UploadedAt: contract.UploadedAt,
	}
	if !contract.ProcessedAt.IsZero() {
		t := contract.ProcessedAt
		p.ProcessedAt = &t
	}
	return p
}

func toAnswerPayload(answer *domain.Answer) answerPayload {
	refs := answer.ReferencedClauseIDs
	if refs == nil {
		refs = []domain.ClauseID{}
	}
	return answerPayload{
		ContractID:          answer.ContractID,
		Answer:              answer.Answer,
		Confidence:          answer.Confidence,
		Explanation:         answer.Explanation,
		ReferencedClauseIDs: refs,
	}
}

// pathContractID parses the {id} path segment.
func pathContractID(r *http.Request) (domain.ContractID, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid contract id %q", raw)
	}
	return domain.ContractID(id), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	contract, clauses, err := s.ingest.Ingest(r.Context(), req.Title, req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	payload := toContractPayload(contract)
	payload.ClauseCount = len(clauses)
	writeJSON(w, http.StatusCreated, payload)
}

func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := s.store.ListContracts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	payloads := make([]contractPayload, len(contracts))
	for i := range contracts {
		payloads[i] = toContractPayload(&contracts[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": payloads})
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathContractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contract, err := s.store.GetContract(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	clauses, err := s.store.GetClauses(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	clausePayloads := make([]clausePayload, len(clauses))
	for i, clause := range clauses {
		clausePayloads[i] = clausePayload{
			ID:       clause.ID,
			Number:   clause.Number,
			Title:    clause.Title,
			Text:     clause.Text,
			Embedded: clause.HasEmbedding(),
		}
	}

	payload := toContractPayload(contract)
	payload.ClauseCount = len(clauses)
	writeJSON(w, http.StatusOK, map[string]any{
		"contract": payload,
		"clauses":  clausePayloads,
	})
}

func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	id, err := pathContractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteContract(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	id, err := pathContractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(strings.TrimSpace(req.Question)) < minAskLength {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("question must be at least %d characters", minAskLength))
		return
	}

	answer, err := s.answers.AnswerQuestion(r.Context(), id, req.Question)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnswerPayload(answer))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathContractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// 404 for unknown contracts rather than an empty list.
	if _, err := s.store.GetContract(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	records, err := s.history.ListQA(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	payloads := make([]historyPayload, len(records))
	for i, record := range records {
		refs := record.ReferencedClauseIDs
		if refs == nil {
			refs = []domain.ClauseID{}
		}
		payloads[i] = historyPayload{
			ID:                  record.ID,
			Question:            record.Question,
			Answer:              record.Answer,
			Confidence:          record.Confidence,
			ReferencedClauseIDs: refs,
			AskedAt:             record.AskedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": payloads})
}
