// Package domain defines the core business entities for ContextPilot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContextUnit: A typed fact/preference/goal/decision about the user
//   - ContextUpdate: A partial update applied to a ContextUnit
//   - RankedContextUnit: A ContextUnit paired with a relevance score
//   - GeneratedPrompt: A composed prompt with its supporting context
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
