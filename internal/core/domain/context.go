package domain

import (
	"fmt"
	"strings"
	"time"
)

// ContextType categorises a context unit. The type is assigned at
// creation and never changes.
type ContextType string

// Available context types.
const (
	// ContextTypePreference records how the user likes things done.
	ContextTypePreference ContextType = "preference"

	// ContextTypeDecision records a choice the user has committed to.
	ContextTypeDecision ContextType = "decision"

	// ContextTypeFact records something true about the user or their world.
	ContextTypeFact ContextType = "fact"

	// ContextTypeGoal records something the user is working towards.
	ContextTypeGoal ContextType = "goal"
)

// IsValid returns true if the context type is recognised.
func (t ContextType) IsValid() bool {
	switch t {
	case ContextTypePreference, ContextTypeDecision, ContextTypeFact, ContextTypeGoal:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ContextType) String() string {
	return string(t)
}

// ContextStatus is the lifecycle state of a context unit.
type ContextStatus string

// Available statuses.
const (
	// ContextStatusActive means the unit participates in ranking.
	ContextStatusActive ContextStatus = "active"

	// ContextStatusSuperseded means a newer unit has replaced this one.
	// Superseded units are kept for history but excluded from ranking.
	ContextStatusSuperseded ContextStatus = "superseded"
)

// IsValid returns true if the status is recognised.
func (s ContextStatus) IsValid() bool {
	return s == ContextStatusActive || s == ContextStatusSuperseded
}

// String returns the string representation.
func (s ContextStatus) String() string {
	return string(s)
}

// ContextUnit is a single typed piece of user context.
//
// ID, Type and CreatedAt are immutable after construction. Status moves
// from active to superseded at most once, and SupersededBy is set on
// exactly that transition (see MarkSuperseded).
type ContextUnit struct {
	// ID is the unique identifier, assigned at creation.
	ID string

	// Type categorises the unit (preference, decision, fact, goal).
	Type ContextType

	// Content is the free-text body of the unit.
	Content string

	// Confidence expresses trust in the unit, in [0.0, 1.0].
	// Used as a multiplier during relevance ranking.
	Confidence float64

	// Tags are short labels used for lexical matching and display.
	Tags []string

	// Source records where the unit came from (e.g. "manual", "mcp").
	Source string

	// Status is the lifecycle state.
	Status ContextStatus

	// SupersededBy is the ID of the unit that replaced this one.
	// Non-nil if and only if Status is superseded.
	SupersededBy *string

	// CreatedAt is when the unit was created.
	CreatedAt time.Time

	// LastUsed is when the unit was last selected as relevant.
	// Written by ranking consumers, not by the store.
	LastUsed *time.Time
}

// SourceManual is the default source for units created by hand.
const SourceManual = "manual"

// NewContextUnit constructs a validated, active context unit.
// The caller supplies the ID (typically a UUID); construction is the
// only place confidence range and content are checked.
func NewContextUnit(id string, ctype ContextType, content string, confidence float64, tags []string, source string) (*ContextUnit, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidInput)
	}
	if !ctype.IsValid() {
		return nil, fmt.Errorf("%w: unknown context type %q", ErrInvalidInput, ctype)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidInput)
	}
	if confidence < 0.0 || confidence > 1.0 {
		return nil, fmt.Errorf("%w: confidence %v outside [0.0, 1.0]", ErrInvalidInput, confidence)
	}
	if source == "" {
		source = SourceManual
	}

	return &ContextUnit{
		ID:         id,
		Type:       ctype,
		Content:    content,
		Confidence: confidence,
		Tags:       tags,
		Source:     source,
		Status:     ContextStatusActive,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// IsActive returns true if the unit participates in ranking.
func (u *ContextUnit) IsActive() bool {
	return u.Status == ContextStatusActive
}

// MarkSuperseded transitions the unit to superseded, pointing at its
// replacement. The transition happens at most once and a unit can
// never supersede itself.
func (u *ContextUnit) MarkSuperseded(byID string) error {
	if u.Status == ContextStatusSuperseded {
		return fmt.Errorf("%w: unit %s already superseded", ErrInvalidInput, u.ID)
	}
	if byID == "" {
		return fmt.Errorf("%w: empty superseding id", ErrInvalidInput)
	}
	if byID == u.ID {
		return fmt.Errorf("%w: unit %s cannot supersede itself", ErrInvalidInput, u.ID)
	}
	u.Status = ContextStatusSuperseded
	u.SupersededBy = &byID
	return nil
}

// Validate checks the unit's structural invariants. Stores call this
// to reject units that bypassed NewContextUnit.
func (u *ContextUnit) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidInput)
	}
	if !u.Type.IsValid() {
		return fmt.Errorf("%w: unknown context type %q", ErrInvalidInput, u.Type)
	}
	if strings.TrimSpace(u.Content) == "" {
		return fmt.Errorf("%w: empty content", ErrInvalidInput)
	}
	if u.Confidence < 0.0 || u.Confidence > 1.0 {
		return fmt.Errorf("%w: confidence %v outside [0.0, 1.0]", ErrInvalidInput, u.Confidence)
	}
	if !u.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, u.Status)
	}
	// Status and back-reference must agree.
	if u.Status == ContextStatusSuperseded && u.SupersededBy == nil {
		return fmt.Errorf("%w: superseded unit %s has no superseded_by reference", ErrInvalidInput, u.ID)
	}
	if u.Status == ContextStatusActive && u.SupersededBy != nil {
		return fmt.Errorf("%w: active unit %s has a superseded_by reference", ErrInvalidInput, u.ID)
	}
	if u.SupersededBy != nil && *u.SupersededBy == u.ID {
		return fmt.Errorf("%w: unit %s supersedes itself", ErrInvalidInput, u.ID)
	}
	return nil
}

// ContextUpdate is a partial update to a context unit. Only non-nil
// fields are applied; ID, Type and CreatedAt are not updatable.
type ContextUpdate struct {
	Content      *string
	Confidence   *float64
	Tags         *[]string
	Status       *ContextStatus
	SupersededBy *string
	LastUsed     *time.Time
}

// IsZero returns true if no fields are set.
func (p ContextUpdate) IsZero() bool {
	return p.Content == nil && p.Confidence == nil && p.Tags == nil &&
		p.Status == nil && p.SupersededBy == nil && p.LastUsed == nil
}

// Validate checks that the set fields are individually well-formed.
func (p ContextUpdate) Validate() error {
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return fmt.Errorf("%w: empty content", ErrInvalidInput)
	}
	if p.Confidence != nil && (*p.Confidence < 0.0 || *p.Confidence > 1.0) {
		return fmt.Errorf("%w: confidence %v outside [0.0, 1.0]", ErrInvalidInput, *p.Confidence)
	}
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *p.Status)
	}
	return nil
}

// Apply copies the set fields onto the unit. Callers are responsible
// for re-validating the unit afterwards if Status or SupersededBy
// changed.
func (p ContextUpdate) Apply(u *ContextUnit) {
	if p.Content != nil {
		u.Content = *p.Content
	}
	if p.Confidence != nil {
		u.Confidence = *p.Confidence
	}
	if p.Tags != nil {
		u.Tags = *p.Tags
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.SupersededBy != nil {
		u.SupersededBy = p.SupersededBy
	}
	if p.LastUsed != nil {
		u.LastUsed = p.LastUsed
	}
}
