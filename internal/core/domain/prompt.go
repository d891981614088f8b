package domain

import "time"

// PromptStyle selects the prompt layout produced by the composer.
type PromptStyle string

// Available prompt styles.
const (
	// PromptStyleFull groups context by type with confidence markers
	// and closes with explicit instructions.
	PromptStyleFull PromptStyle = "full"

	// PromptStyleCompact is a short bulleted form.
	PromptStyleCompact PromptStyle = "compact"
)

// IsValid returns true if the prompt style is recognised.
func (s PromptStyle) IsValid() bool {
	return s == PromptStyleFull || s == PromptStyleCompact
}

// String returns the string representation.
func (s PromptStyle) String() string {
	return string(s)
}

// GeneratedPrompt is a composed prompt together with the context that
// went into it.
type GeneratedPrompt struct {
	// OriginalTask is the task text as submitted.
	OriginalTask string

	// RelevantContext is the ranked context the prompt was built from.
	RelevantContext []RankedContextUnit

	// Prompt is the composed prompt text.
	Prompt string

	// Timestamp is when the prompt was composed.
	Timestamp time.Time
}
