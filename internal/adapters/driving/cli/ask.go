package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contextpilot/contextpilot-cli/internal/adapters/driven/ai"
	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driven"
	"github.com/contextpilot/contextpilot-cli/internal/logger"
)

var (
	askStyle       string
	askLimit       int
	askMaxTokens   int
	askTemperature float64
	askShowPrompt  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [task]",
	Short: "Send a contextualised prompt to the configured LLM",
	Long: `Composes a prompt from the task and your stored context, sends
it to the configured LLM provider and prints the response.

Requires an LLM provider; run 'contextpilot settings llm' to set one up.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askStyle, "style", "s", "full", "prompt style (full, compact)")
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", domain.DefaultMaxResults, "maximum number of context units")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 1024, "maximum tokens to generate")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", 0.7, "generation temperature")
	askCmd.Flags().BoolVar(&askShowPrompt, "show-prompt", false, "print the composed prompt before the response")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	task := args[0]

	if composeService == nil {
		return errors.New("compose service not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	llm, err := buildLLMService()
	if err != nil {
		return err
	}
	defer llm.Close() //nolint:errcheck

	prompt, err := composeService.Compose(
		cmd.Context(),
		task,
		domain.PromptStyle(askStyle),
		domain.RankOptions{MaxResults: askLimit},
	)
	if err != nil {
		return fmt.Errorf("composing failed: %w", err)
	}

	if askShowPrompt {
		cmd.Println("--- Prompt ---")
		cmd.Println(prompt.Prompt)
		cmd.Println("--- Response ---")
	}

	logger.Info("asking %s with %d context units", llm.ModelName(), len(prompt.RelevantContext))

	response, err := llm.Generate(cmd.Context(), prompt.Prompt, driven.GenerateOptions{
		MaxTokens:   askMaxTokens,
		Temperature: askTemperature,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	cmd.Println(response)
	return nil
}

// buildLLMService creates an LLM client from the persisted settings.
func buildLLMService() (driven.LLMService, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	if !settings.LLM.IsConfigured() {
		return nil, fmt.Errorf("%w: no LLM provider configured. Run 'contextpilot settings llm' to set one up",
			domain.ErrLLMUnavailable)
	}

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating LLM service: %w", err)
	}
	if llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	return llm, nil
}
