package driving

import (
	"context"

	"github.com/contextpilot/contextpilot-cli/internal/core/domain"
)

// ComposeService builds contextualised prompts from ranked context.
type ComposeService interface {
	// Compose ranks context for the task and renders a prompt in the
	// requested style. Selected units have LastUsed stamped.
	Compose(ctx context.Context, task string, style domain.PromptStyle, opts domain.RankOptions) (*domain.GeneratedPrompt, error)
}
