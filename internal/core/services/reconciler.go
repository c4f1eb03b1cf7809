package services

import (
	"regexp"
	"strings"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/logger"
)

// topNFallbackCount is how many of the closest retrieved clauses are
// cited when neither the model nor its prose yields any usable citation.
const topNFallbackCount = 3

// clauseMentionRx matches textual clause references like "Clause 2.1",
// "clause 8" or "Section 3.4" and captures the dotted number.
var clauseMentionRx = regexp.MustCompile(`\b(?:[Cc]lause|[Ss]ection)\s+(\d+(?:\.\d+)*)\b`)

// reconcileInput carries everything one reconciliation needs: the
// model's claim, its prose, the cycle-scoped lookup tables and the
// original retrieval ordering.
type reconcileInput struct {
	answer    *domain.StructuredAnswer
	context   domain.ContextBlock
	retrieved []domain.RetrievedClause
}

// citationResolver is one tier of the fallback chain: a pure function
// from the reconciliation input to zero or more stable clause IDs.
type citationResolver func(reconcileInput) []domain.ClauseID

// citationResolvers is the fallback chain, evaluated in order with
// first-non-empty-wins semantics:
//
//  1. the model's own index claims, resolved through the position map;
//  2. clause numbers and titles mentioned in the answer prose;
//  3. the top retrieved clauses by similarity.
//
// Exactly one tier's output is used. The model's claim is preferred when
// available and valid; lexical evidence covers a model that answered
// without structured citations; retrieval ranking is the last resort so
// an answer is never returned with zero supporting citations.
var citationResolvers = []citationResolver{
	resolveModelIndices,
	resolveTextMentions,
	resolveTopRetrieved,
}

// ResolveCitations maps the model's self-reported citations back to
// stable clause identifiers. It never fails: a bad citation is logged
// and dropped, and the chain degrades through its tiers instead of
// erroring, because an answer with heuristic citations is better than
// an answer with none.
func ResolveCitations(answer *domain.StructuredAnswer, context domain.ContextBlock, retrieved []domain.RetrievedClause) []domain.ClauseID {
	in := reconcileInput{answer: answer, context: context, retrieved: retrieved}
	for _, resolve := range citationResolvers {
		if ids := resolve(in); len(ids) > 0 {
			return ids
		}
	}
	return nil
}

// resolveModelIndices resolves the model's referenced_clause_indices
// through the position map. Each integer is tried as a zero-based
// position first; when that misses and the integer is positive, index-1
// is retried to tolerate a model that counted from 1.
//
// Known heuristic risk: when both idx and idx-1 are valid positions for
// different clauses, a 1-based model citation silently resolves to the
// wrong clause. The retry is kept because models do miscount, but it is
// a guess, not a guarantee.
func resolveModelIndices(in reconcileInput) []domain.ClauseID {
	var ids []domain.ClauseID
	seen := make(map[domain.ClauseID]bool)

	for _, idx := range in.answer.ReferencedIndices {
		id, ok := in.context.ByPosition[domain.ContextPosition(idx)]
		if !ok && idx > 0 {
			id, ok = in.context.ByPosition[domain.ContextPosition(idx-1)]
		}
		if !ok {
			logger.Warn("discarding unresolvable clause index %d (context has %d entries)",
				idx, len(in.context.ByPosition))
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(ids) > 0 {
		logger.Info("citations: %d resolved from model-provided indices", len(ids))
	}
	return ids
}

// resolveTextMentions scans the answer prose for clause numbers
// ("Clause 2.1", "Section 3") and clause title substrings, resolving
// them through the number and title maps. Matches from both scans are
// unioned in discovery order.
func resolveTextMentions(in reconcileInput) []domain.ClauseID {
	var ids []domain.ClauseID
	seen := make(map[domain.ClauseID]bool)
	add := func(id domain.ClauseID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, match := range clauseMentionRx.FindAllStringSubmatch(in.answer.Answer, -1) {
		if id, ok := in.context.ByNumber[match[1]]; ok {
			add(id)
		}
	}

	// Titles shorter than 3 characters are skipped to avoid one- or
	// two-letter false positives. Iteration follows the retrieval
	// ordering rather than the map so discovery order is deterministic.
	answerLower := strings.ToLower(in.answer.Answer)
	for _, rc := range in.retrieved {
		title := rc.Clause.Title
		if len(title) < 3 {
			continue
		}
		if id, ok := in.context.ByTitle[title]; ok &&
			strings.Contains(answerLower, strings.ToLower(title)) {
			add(id)
		}
	}

	if len(ids) > 0 {
		logger.Info("citations: %d parsed from answer text", len(ids))
	}
	return ids
}

// resolveTopRetrieved cites the closest retrieved clauses, assuming the
// most similar ones were implicitly used.
func resolveTopRetrieved(in reconcileInput) []domain.ClauseID {
	n := min(topNFallbackCount, len(in.retrieved))
	ids := make([]domain.ClauseID, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, in.retrieved[i].Clause.ID)
	}

	if len(ids) > 0 {
		logger.Info("citations: no references found, using top %d retrieved clauses", len(ids))
	}
	return ids
}
