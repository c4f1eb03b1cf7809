// Package cli implements the clausewise command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/verdict-systems/clausewise/internal/adapters/driven/ai"
	configfile "github.com/verdict-systems/clausewise/internal/adapters/driven/config/file"
	"github.com/verdict-systems/clausewise/internal/adapters/driven/storage/sqlite"
	"github.com/verdict-systems/clausewise/internal/config"
	"github.com/verdict-systems/clausewise/internal/core/ports/driven"
	"github.com/verdict-systems/clausewise/internal/core/ports/driving"
	"github.com/verdict-systems/clausewise/internal/core/services"
	"github.com/verdict-systems/clausewise/internal/logger"
)

var (
	flagVerbose bool
	flagConfig  string
)

// Shared application state, populated lazily by ensureServices.
var (
	cfg             *config.Config
	store           *sqlite.Store
	embeddingSvc    driven.EmbeddingService
	llmSvc          driven.LLMService
	answerService   driving.AnswerService
	ingestService   driving.IngestService
	analysisService driving.AnalysisService
)

var rootCmd = &cobra.Command{
	Use:   "clausewise",
	Short: "Semantic Q&A over legal contracts",
	Long: `Clausewise ingests legal contracts, segments them into clauses,
embeds the clauses, and answers natural-language questions about a
contract with clause-level citations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(flagVerbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.clausewise/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// ensureStore opens config and the SQLite store. Commands that only
// read or write local data need nothing else.
func ensureStore() error {
	if store != nil {
		return nil
	}

	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	logger.Debug("using database at %s", store.Path())
	return nil
}

// ensureServices builds the full service graph, validating provider
// connectivity. Commands that talk to AI providers call this.
func ensureServices() error {
	if answerService != nil {
		return nil
	}
	if err := ensureStore(); err != nil {
		return err
	}

	var err error
	embeddingSvc, err = ai.CreateAndValidateEmbeddingService(cfg.EmbeddingSettings())
	if err != nil {
		return err
	}

	llmSvc, err = ai.CreateAndValidateLLMService(cfg.LLMSettings())
	if err != nil {
		return err
	}

	prompts, err := configfile.NewPromptStore(cfg.PromptDir)
	if err != nil {
		return err
	}

	embedder := services.NewEmbedder(embeddingSvc)
	generator := services.NewGenerator(llmSvc, prompts)

	qa := services.NewQAService(store.ClauseStore(), store.HistoryStore(), embedder, generator)
	qa.SetTopK(cfg.QA.TopK)
	answerService = qa

	ingest := services.NewIngestService(store.ClauseStore(), embedder)
	ingest.SetRateLimit(rate.Limit(cfg.QA.EmbedRatePerSec), cfg.QA.EmbedRatePerSec)
	ingestService = ingest

	analysisService = services.NewAnalysisService(
		store.ClauseStore(), store.AnalysisStore(), llmSvc, prompts)

	logger.Debug("services ready (embedding=%s llm=%s)",
		embeddingSvc.ModelName(), llmSvc.ModelName())
	return nil
}

func closeServices() {
	if embeddingSvc != nil {
		embeddingSvc.Close()
	}
	if llmSvc != nil {
		llmSvc.Close()
	}
	if store != nil {
		store.Close()
	}
}
