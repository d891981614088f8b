// Package cli provides the cobra command tree for ContextPilot.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contextpilot/contextpilot-cli/internal/adapters/driven/ai"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driven/config/file"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driven/storage/memory"
	"github.com/contextpilot/contextpilot-cli/internal/adapters/driven/storage/sqlite"
	"github.com/contextpilot/contextpilot-cli/internal/cache"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driven"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
	"github.com/contextpilot/contextpilot-cli/internal/core/services"
	"github.com/contextpilot/contextpilot-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "0.1.0"

// Persistent flags.
var (
	verbose   bool
	useMemory bool
	dataDir   string
)

// Services wired by initServices. Tests inject mocks directly, which
// skips real construction.
var (
	configStore      driven.ConfigStore
	contextStore     driven.ContextStore
	embeddingService driven.EmbeddingService

	contextService  driving.ContextService
	rankService     driving.RankService
	composeService  driving.ComposeService
	settingsService driving.SettingsService
)

var rootCmd = &cobra.Command{
	Use:   "contextpilot",
	Short: "Personal context for AI assistants",
	Long: `ContextPilot stores your preferences, decisions, facts and goals,
ranks them by relevance to a task, and composes contextualised prompts
for AI assistants.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "use an in-memory store (nothing persists)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.contextpilot)")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initServices builds the dependency graph once per process.
func initServices() error {
	if contextService != nil {
		return nil
	}

	logger.Section("startup")

	cfgStore, err := file.NewConfigStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	configStore = cfgStore
	settingsSvc := services.NewSettingsService(cfgStore)
	settingsService = settingsSvc

	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	if useMemory {
		contextStore = memory.NewContextStore()
		logger.Info("using in-memory context store")
	} else {
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return fmt.Errorf("opening context store: %w", err)
		}
		contextStore = store
		logger.Info("using sqlite context store")
	}

	// Embedding is optional: without it, add/list/show still work but
	// ranking and composing report the missing capability.
	embedSvc, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("embedding provider unavailable: %v", err)
	} else {
		embeddingService = embedSvc
		if embedSvc != nil {
			logger.Info("embedding provider: %s", embedSvc.ModelName())
		}
	}

	embCache := cache.New(settings.Cache.MaxSize, settings.Cache.TTLSeconds)

	ctxSvc := services.NewContextService(contextStore, embeddingService, embCache)
	contextService = ctxSvc
	ranker := services.NewRelevanceRanker(contextStore, embeddingService, embCache)
	rankService = ranker
	composeService = services.NewPromptComposer(ranker, ctxSvc)

	return nil
}

// closeServices releases resources held by the wired services.
func closeServices() {
	if embeddingService != nil {
		embeddingService.Close() //nolint:errcheck
	}
	if contextStore != nil {
		contextStore.Close() //nolint:errcheck
	}
}
