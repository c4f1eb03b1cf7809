package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [contract-id]",
	Short: "Show past questions and answers for a contract",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	contractID, err := parseContractID(args[0])
	if err != nil {
		return err
	}

	if err := ensureStore(); err != nil {
		return err
	}

	records, err := store.HistoryStore().ListQA(cmd.Context(), contractID)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No questions asked yet.")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, record := range records {
		fmt.Fprintf(out, "[%s] %s\n", record.AskedAt.Format("2006-01-02 15:04"), record.Question)
		fmt.Fprintf(out, "  %s (confidence: %s)\n", record.Answer, record.Confidence)
		if len(record.ReferencedClauseIDs) > 0 {
			fmt.Fprintf(out, "  clauses: %v\n", record.ReferencedClauseIDs)
		}
		fmt.Fprintln(out)
	}
	return nil
}
