package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

var risksCmd = &cobra.Command{
	Use:   "risks [contract-id]",
	Short: "Analyze a contract for risky clauses",
	Long: `Runs an AI risk assessment over the contract, detecting risky,
unfair or unusual clauses across categories like termination rights,
indemnities, penalties and liability caps. Results are stored and
printed grouped by severity.`,
	Args: cobra.ExactArgs(1),
	RunE: runRisks,
}

var summarizeRole string

var summarizeCmd = &cobra.Command{
	Use:   "summarize [contract-id]",
	Short: "Generate a plain-language summary of a contract",
	Long: `Generates a plain-language summary of the contract. Use --role to
write the summary from the supplier or client perspective; the default
is a balanced neutral overview.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeRole, "role", "", "perspective: supplier, client or neutral")
	rootCmd.AddCommand(risksCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func runRisks(cmd *cobra.Command, args []string) error {
	contractID, err := parseContractID(args[0])
	if err != nil {
		return err
	}
	if err := ensureServices(); err != nil {
		return err
	}

	risks, err := analysisService.AnalyzeRisks(cmd.Context(), contractID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("contract %d not found", contractID)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if len(risks) == 0 {
		fmt.Fprintln(out, "No significant risks detected.")
		return nil
	}

	fmt.Fprintf(out, "%d risks found:\n\n", len(risks))
	for _, risk := range risks {
		fmt.Fprintf(out, "[%s] %s", risk.Level, risk.Type)
		if risk.ClauseReference != "" {
			fmt.Fprintf(out, " (%s)", risk.ClauseReference)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %s\n", risk.Description)
		if risk.Recommendation != "" {
			fmt.Fprintf(out, "  Recommendation: %s\n", risk.Recommendation)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	contractID, err := parseContractID(args[0])
	if err != nil {
		return err
	}
	if err := ensureServices(); err != nil {
		return err
	}

	summary, err := analysisService.Summarize(cmd.Context(), contractID, domain.SummaryRole(summarizeRole))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("contract %d not found", contractID)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, summary.Content.Summary)
	if len(summary.Content.KeyPoints) > 0 {
		fmt.Fprintln(out, "\nKey points:")
		for _, point := range summary.Content.KeyPoints {
			fmt.Fprintf(out, "  - %s\n", point)
		}
	}
	if summary.Content.Termination != "" {
		fmt.Fprintf(out, "\nTermination: %s\n", summary.Content.Termination)
	}
	if summary.Content.FinancialTerms != "" {
		fmt.Fprintf(out, "\nFinancial terms: %s\n", summary.Content.FinancialTerms)
	}
	return nil
}
