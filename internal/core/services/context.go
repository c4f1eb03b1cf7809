package services

import (
	"fmt"
	"strings"

	"github.com/verdict-systems/clausewise/internal/core/domain"
	"github.com/verdict-systems/clausewise/internal/logger"
)

// MaxContextLength is the character budget for the rendered clause
// context, leaving room for the model's answer within its token window.
const MaxContextLength = 6000

// AssembleContext renders retrieved clauses into the labelled context
// block shown to the model, building the position, number and title
// lookup tables in the same pass so they can never drift from the
// rendered text.
//
// Rendering format, one block per clause:
//
//	[0] 2.1 - Termination:
//	<clause text>
//
// When the rendered text exceeds MaxContextLength it is cut at the
// budget (not clause-aware). Truncation shortens the displayed text
// only; the lookup tables always cover every retrieved clause.
func AssembleContext(retrieved []domain.RetrievedClause) domain.ContextBlock {
	block := domain.ContextBlock{
		ByPosition: make(map[domain.ContextPosition]domain.ClauseID, len(retrieved)),
		ByNumber:   make(map[string]domain.ClauseID),
		ByTitle:    make(map[string]domain.ClauseID),
	}

	var sb strings.Builder
	for i, rc := range retrieved {
		pos := domain.ContextPosition(i)
		clause := rc.Clause

		fmt.Fprintf(&sb, "[%d] %s - %s:\n%s\n\n",
			i, clause.DisplayNumber(pos), clause.DisplayTitle(), clause.Text)

		block.ByPosition[pos] = clause.ID
		if clause.Number != "" {
			block.ByNumber[clause.Number] = clause.ID
		}
		if clause.Title != "" {
			block.ByTitle[clause.Title] = clause.ID
		}
	}

	block.Text = strings.TrimRight(sb.String(), "\n")
	if len(block.Text) > MaxContextLength {
		block.Text = truncateText(block.Text, MaxContextLength)
		block.Truncated = true
		logger.Warn("context truncated to %d characters", MaxContextLength)
	}

	return block
}
