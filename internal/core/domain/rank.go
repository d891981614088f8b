package domain

// Ranking constants. These are observable behaviour: changing them
// changes which units are returned for a given store state.
const (
	// DefaultKeywordWeight is the share of the final score taken by
	// lexical matching during hybrid ranking.
	DefaultKeywordWeight = 0.3

	// DefaultOversample is how many times maxResults the semantic
	// stage returns as candidates for lexical re-ranking. The wider
	// pool gives the second stage room to promote units without
	// truncating too early.
	DefaultOversample = 2

	// TagMatchBonus is added to the keyword score for every tag that
	// appears as a substring of the lowercased task.
	TagMatchBonus = 0.2

	// DefaultMaxResults is used when a caller does not specify a limit.
	DefaultMaxResults = 5
)

// RankOptions configures a ranking call.
type RankOptions struct {
	// MaxResults is the maximum number of units to return.
	// Must be positive; validated at the driving boundary.
	MaxResults int

	// KeywordWeight is the lexical blend weight in [0, 1].
	// Zero value means DefaultKeywordWeight.
	KeywordWeight float64

	// Oversample overrides the semantic-stage pool multiplier.
	// Zero value means DefaultOversample.
	Oversample int
}

// RankedContextUnit pairs a context unit with its relevance score for
// a specific task. It is produced fresh on every ranking call and
// never persisted. Scores are not bounded to [0, 1] after blending.
type RankedContextUnit struct {
	// Unit is the ranked context unit.
	Unit ContextUnit

	// Score is the relevance score. Lists of ranked units are always
	// ordered by Score descending, ties preserving candidate order.
	Score float64
}
