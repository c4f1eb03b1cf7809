package services

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// headingRx detects numbered headings in contracts, e.g.
//
//	"2 Term"
//	"2.1 Termination for Convenience"
//
// capturing the number ("2.1") and the title ("Termination for
// Convenience"). Titles start with an uppercase letter and run to the
// end of the line, capped at 100 characters.
var headingRx = regexp.MustCompile(`(?m)^[ \t]*(\d+(?:\.\d+)*)[ \t]+([A-Z][^\n]{0,100}?)[ \t]*$`)

// SegmentContract splits raw contract text into clauses on numbered
// headings. When no headings are found, the entire document becomes one
// untitled, unnumbered clause. Segment identifiers are fresh UUIDs,
// unique within the contract.
func SegmentContract(text string) []domain.Clause {
	// Re-join bullet continuation lines so a bulleted list stays inside
	// the clause it belongs to instead of starting a new segment.
	text = joinBulletLines(text)

	matches := headingRx.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []domain.Clause{{
			SegmentID: uuid.NewString(),
			Text:      strings.TrimSpace(text),
		}}
	}

	clauses := make([]domain.Clause, 0, len(matches))
	for i, m := range matches {
		// Body runs from the end of this heading to the start of the
		// next one (or end of document).
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		clauses = append(clauses, domain.Clause{
			SegmentID: uuid.NewString(),
			Number:    strings.TrimSpace(text[m[2]:m[3]]),
			Title:     strings.TrimSpace(text[m[4]:m[5]]),
			Text:      strings.TrimSpace(text[start:end]),
		})
	}
	return clauses
}

// joinBulletLines removes the newline before lines starting with a
// bullet marker so bulleted continuations cannot be split into separate
// clauses. Done by hand since RE2 has no lookahead.
func joinBulletLines(text string) string {
	lines := strings.Split(text, "\n")
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			if isBulletLine(line) {
				sb.WriteByte(' ')
			} else {
				sb.WriteByte('\n')
			}
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// isBulletLine reports whether the line starts with a bullet marker
// followed by a space.
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, marker := range []string{"• ", "- ", "– "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}
