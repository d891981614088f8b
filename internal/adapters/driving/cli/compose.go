package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

var (
	composeStyle string
	composeLimit int
	composeJSON  bool
)

var composeCmd = &cobra.Command{
	Use:   "compose [task]",
	Short: "Compose a contextualised prompt for a task",
	Long: `Ranks stored context against the task and renders a prompt
containing the most relevant units.

Styles:
  full     - context grouped by type with confidence markers (default)
  compact  - short bulleted form`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVarP(&composeStyle, "style", "s", "full", "prompt style (full, compact)")
	composeCmd.Flags().IntVarP(&composeLimit, "limit", "n", domain.DefaultMaxResults, "maximum number of context units")
	composeCmd.Flags().BoolVar(&composeJSON, "json", false, "output the generated prompt as JSON")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	task := args[0]

	if composeService == nil {
		return errors.New("compose service not configured")
	}

	prompt, err := composeService.Compose(
		cmd.Context(),
		task,
		domain.PromptStyle(composeStyle),
		domain.RankOptions{MaxResults: composeLimit},
	)
	if err != nil {
		return fmt.Errorf("composing failed: %w", err)
	}

	if composeJSON {
		data, err := json.MarshalIndent(prompt, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal prompt: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(prompt.Prompt)
	return nil
}
