package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
	"github.com/contextpilot/contextpilot-cli/internal/core/ports/driving"
	"github.com/contextpilot/contextpilot-cli/internal/logger"
)

// Ensure PromptComposer implements the interface.
var _ driving.ComposeService = (*PromptComposer)(nil)

// composeTypeOrder fixes the section order of the full prompt layout.
var composeTypeOrder = []domain.ContextType{
	domain.ContextTypePreference,
	domain.ContextTypeGoal,
	domain.ContextTypeDecision,
	domain.ContextTypeFact,
}

// highConfidenceThreshold decides which marker a unit gets in the full
// layout: a check for trusted units, a tilde for tentative ones.
const highConfidenceThreshold = 0.8

// PromptComposer turns ranked context into prompt text for a
// downstream LLM.
type PromptComposer struct {
	ranker   driving.RankService
	contexts driving.ContextService
}

// NewPromptComposer creates a composer. The contexts service is
// optional (can be nil); without it, selected units are not stamped
// with LastUsed.
func NewPromptComposer(ranker driving.RankService, contexts driving.ContextService) *PromptComposer {
	return &PromptComposer{
		ranker:   ranker,
		contexts: contexts,
	}
}

// Compose ranks context for the task and renders a prompt in the
// requested style.
func (c *PromptComposer) Compose(ctx context.Context, task string, style domain.PromptStyle, opts domain.RankOptions) (*domain.GeneratedPrompt, error) {
	if !style.IsValid() {
		return nil, fmt.Errorf("%w: unknown prompt style %q", domain.ErrInvalidInput, style)
	}

	ranked, err := c.ranker.RankHybrid(ctx, task, opts)
	if err != nil {
		return nil, fmt.Errorf("rank context: %w", err)
	}

	logger.Debug("Composing %s prompt from %d context units", style, len(ranked))

	var prompt string
	switch style {
	case domain.PromptStyleCompact:
		prompt = renderCompact(task, ranked)
	default:
		prompt = renderFull(task, ranked)
	}

	// Ranking never mutates units; usage stamping happens here, on
	// the consumer side.
	if c.contexts != nil && len(ranked) > 0 {
		ids := make([]string, len(ranked))
		for i := range ranked {
			ids[i] = ranked[i].Unit.ID
		}
		if err := c.contexts.MarkUsed(ctx, ids); err != nil {
			logger.Warn("Marking context usage failed: %v", err)
		}
	}

	return &domain.GeneratedPrompt{
		OriginalTask:    task,
		RelevantContext: ranked,
		Prompt:          prompt,
		Timestamp:       time.Now().UTC(),
	}, nil
}

// renderFull groups context by type with confidence markers and tags,
// then appends the task and instructions.
func renderFull(task string, ranked []domain.RankedContextUnit) string {
	if len(ranked) == 0 {
		return task
	}

	byType := make(map[domain.ContextType][]domain.RankedContextUnit)
	for _, r := range ranked {
		byType[r.Unit.Type] = append(byType[r.Unit.Type], r)
	}

	var b strings.Builder
	b.WriteString("# Context\n")

	for _, ctype := range composeTypeOrder {
		units, ok := byType[ctype]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n## %ss\n", titleCase(ctype.String()))
		for _, r := range units {
			marker := "~"
			if r.Unit.Confidence >= highConfidenceThreshold {
				marker = "✓"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", marker, r.Unit.Content)
			if len(r.Unit.Tags) > 0 {
				fmt.Fprintf(&b, "  (Tags: %s)\n", strings.Join(r.Unit.Tags, ", "))
			}
		}
	}

	fmt.Fprintf(&b, "\n# Task\n\n%s\n", task)
	b.WriteString("\n# Instructions\n\n")
	b.WriteString("Please complete the task above, taking into account the provided context.\n")
	b.WriteString("Align your response with the stated preferences, goals, and decisions.\n")

	return b.String()
}

// renderCompact is the short bulleted form.
func renderCompact(task string, ranked []domain.RankedContextUnit) string {
	if len(ranked) == 0 {
		return task
	}

	var b strings.Builder
	b.WriteString("Given the following context about the user:\n\n")
	for _, r := range ranked {
		fmt.Fprintf(&b, "• %s\n", r.Unit.Content)
	}
	fmt.Fprintf(&b, "\nTask: %s\n", task)

	return b.String()
}

// titleCase uppercases the first letter for section headings.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
