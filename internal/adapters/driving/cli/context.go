package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
)

var (
	contextAddType       string
	contextAddConfidence float64
	contextAddTags       []string
	contextAddJSON       bool

	contextListAll  bool
	contextListJSON bool

	contextShowJSON bool

	contextUpdateContent    string
	contextUpdateConfidence float64
	contextUpdateTags       []string

	contextSupersedeType       string
	contextSupersedeConfidence float64
	contextSupersedeTags       []string
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage stored context units",
	Long: `Manage the context units ContextPilot knows about you.

Units are typed (preference, decision, fact, goal), carry a confidence
score, and can be superseded by newer units without losing history.`,
}

var contextAddCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Store a new context unit",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextAdd,
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List context units",
	RunE:  runContextList,
}

var contextShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a context unit",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextShow,
}

var contextUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a context unit",
	Long: `Update the content, confidence or tags of a context unit.
Changing the content regenerates its embedding.`,
	Args: cobra.ExactArgs(1),
	RunE: runContextUpdate,
}

var contextDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a context unit",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextDelete,
}

var contextSupersedeCmd = &cobra.Command{
	Use:   "supersede [id] [content]",
	Short: "Replace a context unit with a newer one",
	Long: `Create a replacement unit and mark the old one as superseded.
The old unit is kept for history but excluded from ranking.`,
	Args: cobra.ExactArgs(2),
	RunE: runContextSupersede,
}

func init() {
	contextAddCmd.Flags().StringVarP(&contextAddType, "type", "t", "fact", "context type (preference, decision, fact, goal)")
	contextAddCmd.Flags().Float64VarP(&contextAddConfidence, "confidence", "c", 1.0, "confidence in [0, 1]")
	contextAddCmd.Flags().StringSliceVar(&contextAddTags, "tags", nil, "comma-separated tags")
	contextAddCmd.Flags().BoolVar(&contextAddJSON, "json", false, "output the stored unit as JSON")

	contextListCmd.Flags().BoolVarP(&contextListAll, "all", "a", false, "include superseded units")
	contextListCmd.Flags().BoolVar(&contextListJSON, "json", false, "output units as JSON")

	contextShowCmd.Flags().BoolVar(&contextShowJSON, "json", false, "output the unit as JSON")

	contextUpdateCmd.Flags().StringVar(&contextUpdateContent, "content", "", "new content")
	contextUpdateCmd.Flags().Float64VarP(&contextUpdateConfidence, "confidence", "c", 0, "new confidence in [0, 1]")
	contextUpdateCmd.Flags().StringSliceVar(&contextUpdateTags, "tags", nil, "new comma-separated tags")

	contextSupersedeCmd.Flags().StringVarP(&contextSupersedeType, "type", "t", "", "type of the replacement (defaults to the old unit's type)")
	contextSupersedeCmd.Flags().Float64VarP(&contextSupersedeConfidence, "confidence", "c", 1.0, "confidence of the replacement in [0, 1]")
	contextSupersedeCmd.Flags().StringSliceVar(&contextSupersedeTags, "tags", nil, "comma-separated tags for the replacement")

	contextCmd.AddCommand(contextAddCmd)
	contextCmd.AddCommand(contextListCmd)
	contextCmd.AddCommand(contextShowCmd)
	contextCmd.AddCommand(contextUpdateCmd)
	contextCmd.AddCommand(contextDeleteCmd)
	contextCmd.AddCommand(contextSupersedeCmd)
	rootCmd.AddCommand(contextCmd)
}

func runContextAdd(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	unit, err := contextService.Add(cmd.Context(), driving.CreateContext{
		Type:       domain.ContextType(contextAddType),
		Content:    args[0],
		Confidence: contextAddConfidence,
		Tags:       contextAddTags,
	})
	if err != nil {
		return fmt.Errorf("adding context: %w", err)
	}

	if contextAddJSON {
		return outputUnitJSON(cmd, unit)
	}

	cmd.Printf("Stored %s %s\n", unit.Type, unit.ID)
	return nil
}

func runContextList(cmd *cobra.Command, _ []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	units, err := contextService.List(cmd.Context(), contextListAll)
	if err != nil {
		return fmt.Errorf("listing contexts: %w", err)
	}

	if contextListJSON {
		data, err := json.MarshalIndent(units, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal units: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(units) == 0 {
		cmd.Println("No context stored yet. Use 'contextpilot context add' to get started.")
		return nil
	}

	for i := range units {
		printUnitLine(cmd, &units[i])
	}
	return nil
}

func runContextShow(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	unit, err := contextService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting context: %w", err)
	}

	if contextShowJSON {
		return outputUnitJSON(cmd, unit)
	}

	printUnitDetail(cmd, unit)
	return nil
}

func runContextUpdate(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	var update domain.ContextUpdate
	if cmd.Flags().Changed("content") {
		update.Content = &contextUpdateContent
	}
	if cmd.Flags().Changed("confidence") {
		update.Confidence = &contextUpdateConfidence
	}
	if cmd.Flags().Changed("tags") {
		update.Tags = &contextUpdateTags
	}

	if update.IsZero() {
		return errors.New("nothing to update: pass --content, --confidence or --tags")
	}

	unit, err := contextService.Update(cmd.Context(), args[0], update)
	if err != nil {
		return fmt.Errorf("updating context: %w", err)
	}

	cmd.Printf("Updated %s\n", unit.ID)
	return nil
}

func runContextDelete(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	deleted, err := contextService.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("deleting context: %w", err)
	}

	if !deleted {
		cmd.Printf("No context unit with id %s\n", args[0])
		return nil
	}

	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runContextSupersede(cmd *cobra.Command, args []string) error {
	if contextService == nil {
		return errors.New("context service not configured")
	}

	oldID := args[0]

	// Inherit the old unit's type unless one was given.
	ctype := domain.ContextType(contextSupersedeType)
	if contextSupersedeType == "" {
		old, err := contextService.Get(cmd.Context(), oldID)
		if err != nil {
			return fmt.Errorf("getting context: %w", err)
		}
		ctype = old.Type
	}

	unit, err := contextService.Supersede(cmd.Context(), oldID, driving.CreateContext{
		Type:       ctype,
		Content:    args[1],
		Confidence: contextSupersedeConfidence,
		Tags:       contextSupersedeTags,
	})
	if err != nil {
		return fmt.Errorf("superseding context: %w", err)
	}

	cmd.Printf("Superseded %s with %s\n", oldID, unit.ID)
	return nil
}

func outputUnitJSON(cmd *cobra.Command, unit *domain.ContextUnit) error {
	data, err := json.MarshalIndent(unit, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal unit: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printUnitLine prints a one-line summary for list output.
func printUnitLine(cmd *cobra.Command, unit *domain.ContextUnit) {
	status := ""
	if unit.Status == domain.ContextStatusSuperseded {
		status = " [superseded]"
	}
	cmd.Printf("[%s] %s (%.2f)%s\n", unit.Type, unit.ID, unit.Confidence, status)
	cmd.Printf("    %s\n", unit.Content)
	if len(unit.Tags) > 0 {
		cmd.Printf("    Tags: %s\n", joinTags(unit.Tags))
	}
}

// printUnitDetail prints the full detail view for show output.
func printUnitDetail(cmd *cobra.Command, unit *domain.ContextUnit) {
	cmd.Printf("ID:         %s\n", unit.ID)
	cmd.Printf("Type:       %s\n", unit.Type)
	cmd.Printf("Content:    %s\n", unit.Content)
	cmd.Printf("Confidence: %.2f\n", unit.Confidence)
	if len(unit.Tags) > 0 {
		cmd.Printf("Tags:       %s\n", joinTags(unit.Tags))
	}
	cmd.Printf("Source:     %s\n", unit.Source)
	cmd.Printf("Status:     %s\n", unit.Status)
	if unit.SupersededBy != nil {
		cmd.Printf("Superseded by: %s\n", *unit.SupersededBy)
	}
	cmd.Printf("Created:    %s\n", unit.CreatedAt.Format("2006-01-02 15:04:05"))
	if unit.LastUsed != nil {
		cmd.Printf("Last used:  %s\n", unit.LastUsed.Format("2006-01-02 15:04:05"))
	}
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
