package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPromptStyle_IsValid tests style recognition
func TestPromptStyle_IsValid(t *testing.T) {
	assert.True(t, PromptStyleFull.IsValid())
	assert.True(t, PromptStyleCompact.IsValid())
	assert.False(t, PromptStyle("verbose").IsValid())
	assert.False(t, PromptStyle("").IsValid())
}

// TestRankOptions_Defaults documents the zero-value convention
func TestRankOptions_Defaults(t *testing.T) {
	var opts RankOptions
	assert.Zero(t, opts.MaxResults)
	assert.Zero(t, opts.KeywordWeight)
	assert.Zero(t, opts.Oversample)

	// The named constants are the observable defaults.
	assert.Equal(t, 0.3, DefaultKeywordWeight)
	assert.Equal(t, 2, DefaultOversample)
	assert.Equal(t, 0.2, TagMatchBonus)
	assert.Equal(t, 5, DefaultMaxResults)
}
