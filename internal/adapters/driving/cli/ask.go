package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [contract-id] [question]",
	Short: "Ask a question about a contract",
	Long: `Runs one retrieval-augmented Q&A cycle: embeds the question,
retrieves the most similar clauses of the contract, and generates an
answer with clause-level citations.`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	contractID, err := parseContractID(args[0])
	if err != nil {
		return err
	}
	question := args[1]

	if err := ensureServices(); err != nil {
		return err
	}

	answer, err := answerService.AnswerQuestion(cmd.Context(), contractID, question)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("contract %d not found", contractID)
		case errors.Is(err, domain.ErrNoEmbeddedClauses):
			return fmt.Errorf("contract %d has no embedded clauses; run 'clausewise backfill %d' first", contractID, contractID)
		default:
			return err
		}
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	return outputAnswerText(cmd, answer)
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answerPayload(answer), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer.Answer)
	fmt.Fprintf(out, "\nConfidence: %s\n", answer.Confidence)
	if len(answer.ReferencedClauseIDs) > 0 {
		fmt.Fprintf(out, "Referenced clauses: %v\n", answer.ReferencedClauseIDs)
	}
	if answer.Explanation != "" {
		fmt.Fprintf(out, "Explanation: %s\n", answer.Explanation)
	}
	return nil
}

// answerPayload shapes an answer for JSON output.
func answerPayload(answer *domain.Answer) map[string]any {
	return map[string]any{
		"contract_id":           answer.ContractID,
		"answer":                answer.Answer,
		"confidence":            answer.Confidence,
		"explanation":           answer.Explanation,
		"referenced_clause_ids": answer.ReferencedClauseIDs,
	}
}
