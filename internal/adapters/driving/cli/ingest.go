package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

var ingestTitle string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a contract from a file or stdin",
	Long: `Reads contract text, segments it into clauses, stores them, and
embeds each clause for semantic retrieval. Pass "-" (or no argument)
to read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

var backfillCmd = &cobra.Command{
	Use:   "backfill [contract-id]",
	Short: "Embed clauses that are missing embeddings",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackfill,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "contract title (defaults to file name)")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(backfillCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	var (
		text  string
		title = ingestTitle
	)

	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	} else {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		text = string(data)
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
	}

	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("contract text is empty")
	}

	if err := ensureServices(); err != nil {
		return err
	}

	contract, clauses, err := ingestService.Ingest(cmd.Context(), title, text)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	embedded := 0
	for _, clause := range clauses {
		if clause.HasEmbedding() {
			embedded++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Contract %d (%s): %d clauses, %d embedded\n",
		contract.ID, contract.Status, len(clauses), embedded)
	return nil
}

func runBackfill(cmd *cobra.Command, args []string) error {
	contractID, err := parseContractID(args[0])
	if err != nil {
		return err
	}

	if err := ensureServices(); err != nil {
		return err
	}

	n, err := ingestService.Backfill(cmd.Context(), contractID)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Embedded %d clauses\n", n)
	return nil
}

func parseContractID(s string) (domain.ContractID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid contract id %q", s)
	}
	return domain.ContractID(id), nil
}
