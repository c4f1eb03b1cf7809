package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Manage stored contracts",
}

var contractsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored contracts",
	Args:  cobra.NoArgs,
	RunE:  runContractsList,
}

var contractsShowCmd = &cobra.Command{
	Use:   "show [contract-id]",
	Short: "Show a contract and its clauses",
	Args:  cobra.ExactArgs(1),
	RunE:  runContractsShow,
}

var contractsDeleteCmd = &cobra.Command{
	Use:   "delete [contract-id]",
	Short: "Delete a contract, its clauses and its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runContractsDelete,
}

func init() {
	contractsCmd.AddCommand(contractsListCmd)
	contractsCmd.AddCommand(contractsShowCmd)
	contractsCmd.AddCommand(contractsDeleteCmd)
	rootCmd.AddCommand(contractsCmd)
}

func runContractsList(cmd *cobra.Command, args []string) error {
	if err := ensureStore(); err != nil {
		return err
	}

	contracts, err := store.ClauseStore().ListContracts(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing contracts: %w", err)
	}

	if len(contracts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No contracts stored.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tUPLOADED")
	for _, contract := range contracts {
		title := contract.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			contract.ID, title, contract.Status,
			contract.UploadedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runContractsShow(cmd *cobra.Command, args []string) error {
	contractID, err := parseContractID(args[0])
	if err != nil {
		return err
	}

	if err := ensureStore(); err != nil {
		return err
	}

	contract, err := store.ClauseStore().GetContract(cmd.Context(), contractID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("contract %d not found", contractID)
		}
		return err
	}

	clauses, err := store.ClauseStore().GetClauses(cmd.Context(), contractID)
	if err != nil {
		return fmt.Errorf("listing clauses: %w", err)
	}

	out := cmd.OutOrStdout()
	title := contract.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(out, "Contract %d: %s [%s]\n", contract.ID, title, contract.Status)
	fmt.Fprintf(out, "Clauses: %d\n\n", len(clauses))

	for _, clause := range clauses {
		marker := " "
		if clause.HasEmbedding() {
			marker = "*"
		}
		number := clause.Number
		if number == "" {
			number = "-"
		}
		fmt.Fprintf(out, "%s %d  %s %s\n", marker, clause.ID, number, clause.DisplayTitle())
	}
	fmt.Fprintln(out, "\n(* = embedded)")
	return nil
}

func runContractsDelete(cmd *cobra.Command, args []string) error {
	contractID, err := parseContractID(args[0])
	if err != nil {
		return err
	}

	if err := ensureStore(); err != nil {
		return err
	}

	if err := store.ClauseStore().DeleteContract(cmd.Context(), contractID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("contract %d not found", contractID)
		}
		return fmt.Errorf("deleting contract: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted contract %d\n", contractID)
	return nil
}
