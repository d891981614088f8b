package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

var (
	rankLimit         int
	rankSemanticOnly  bool
	rankKeywordWeight float64
	rankJSON          bool
)

var rankCmd = &cobra.Command{
	Use:   "rank [task]",
	Short: "Rank stored context by relevance to a task",
	Long: `Ranks active context units against a task description.
By default this blends semantic similarity with keyword and tag
matching; --semantic-only disables the lexical stage.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", domain.DefaultMaxResults, "maximum number of results")
	rankCmd.Flags().BoolVar(&rankSemanticOnly, "semantic-only", false, "skip keyword and tag matching")
	rankCmd.Flags().Float64VarP(&rankKeywordWeight, "keyword-weight", "w", 0, "lexical blend weight in [0, 1] (0 = configured default)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	task := args[0]

	if rankService == nil {
		return errors.New("rank service not configured")
	}

	opts := domain.RankOptions{
		MaxResults:    rankLimit,
		KeywordWeight: rankKeywordWeight,
	}

	var (
		results []domain.RankedContextUnit
		err     error
	)
	if rankSemanticOnly {
		results, err = rankService.Rank(cmd.Context(), task, opts)
	} else {
		results, err = rankService.RankHybrid(cmd.Context(), task, opts)
	}
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	if rankJSON {
		return outputRankJSON(cmd, results)
	}

	return outputRankTable(cmd, results)
}

func outputRankJSON(cmd *cobra.Command, results []domain.RankedContextUnit) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRankTable(cmd *cobra.Command, results []domain.RankedContextUnit) error {
	if len(results) == 0 {
		cmd.Println("No relevant context found.")
		return nil
	}

	cmd.Println("Relevant context:")
	cmd.Println()
	for i := range results {
		unit := &results[i].Unit
		cmd.Printf("  [%d] (%.3f) [%s] %s\n", i+1, results[i].Score, unit.Type, unit.Content)
		if len(unit.Tags) > 0 {
			cmd.Printf("      Tags: %s\n", joinTags(unit.Tags))
		}
		cmd.Printf("      ID: %s\n", unit.ID)
		cmd.Println()
	}

	return nil
}
