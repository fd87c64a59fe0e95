package models

import (
	"encoding/json"
	"fmt"
)

type ConstraintType string

const (
	ConstraintMinSeparation ConstraintType = "MIN_SEPARATION_MINUTES"
	ConstraintWithFood      ConstraintType = "WITH_FOOD_REQUIRED"
	ConstraintEmptyStomach  ConstraintType = "EMPTY_STOMACH_PREFERRED"
	ConstraintAvoidAfter    ConstraintType = "AVOID_AFTER_TIME"
	ConstraintWarn          ConstraintType = "WARN"
)

// RuleConstraint is the tagged variant carried by an InteractionRule.
// Exactly one concrete type per constraint kind; every site interpreting a
// constraint switches over all of them.
type RuleConstraint interface {
	ConstraintType() ConstraintType
}

// MinSeparation requires a minimum gap in minutes between the owning item
// and each matched conflict target. Binary.
type MinSeparation struct {
	Minutes int    `json:"minutes"`
	Other   string `json:"other,omitempty"`
}

func (MinSeparation) ConstraintType() ConstraintType { return ConstraintMinSeparation }

// WithFoodRequired snaps the item to a meal anchor. Unary.
type WithFoodRequired struct{}

func (WithFoodRequired) ConstraintType() ConstraintType { return ConstraintWithFood }

// EmptyStomachPreferred places the item a buffer ahead of the nearest meal.
// Unary.
type EmptyStomachPreferred struct {
	BufferBeforeFoodMin int `json:"buffer_before_food_min,omitempty"`
}

func (EmptyStomachPreferred) ConstraintType() ConstraintType { return ConstraintEmptyStomach }

// AvoidAfterTime clamps the item to at or before the given HH:MM cutoff.
// Unary, always satisfiable.
type AvoidAfterTime struct {
	Time string `json:"time"`
}

func (AvoidAfterTime) ConstraintType() ConstraintType { return ConstraintAvoidAfter }

// Warn unconditionally surfaces the rule as a schedule warning. Unary.
type Warn struct {
	Message string `json:"message"`
}

func (Warn) ConstraintType() ConstraintType { return ConstraintWarn }

// constraintEnvelope is the wire form of a RuleConstraint: the variant's
// fields flattened next to a "type" discriminator.
type constraintEnvelope struct {
	Type                ConstraintType `json:"type"`
	Minutes             int            `json:"minutes,omitempty"`
	Other               string         `json:"other,omitempty"`
	BufferBeforeFoodMin int            `json:"buffer_before_food_min,omitempty"`
	Time                string         `json:"time,omitempty"`
	Message             string         `json:"message,omitempty"`
}

// EncodeConstraint serializes a constraint to its tagged JSON form.
func EncodeConstraint(c RuleConstraint) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("cannot encode nil constraint")
	}

	env := constraintEnvelope{Type: c.ConstraintType()}
	switch v := c.(type) {
	case MinSeparation:
		env.Minutes = v.Minutes
		env.Other = v.Other
	case WithFoodRequired:
		// No payload beyond the discriminator.
	case EmptyStomachPreferred:
		env.BufferBeforeFoodMin = v.BufferBeforeFoodMin
	case AvoidAfterTime:
		env.Time = v.Time
	case Warn:
		env.Message = v.Message
	default:
		return nil, fmt.Errorf("unknown constraint type %T", c)
	}

	return json.Marshal(env)
}

// DecodeConstraint parses the tagged JSON form of a constraint. Unknown
// discriminators and shape violations are errors; callers loading catalog
// rows treat them as a malformed rule rather than a fatal failure.
func DecodeConstraint(data []byte) (RuleConstraint, error) {
	var env constraintEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid constraint payload: %w", err)
	}

	switch env.Type {
	case ConstraintMinSeparation:
		if env.Minutes <= 0 {
			return nil, fmt.Errorf("separation constraint requires positive minutes, got %d", env.Minutes)
		}
		return MinSeparation{Minutes: env.Minutes, Other: env.Other}, nil
	case ConstraintWithFood:
		return WithFoodRequired{}, nil
	case ConstraintEmptyStomach:
		if env.BufferBeforeFoodMin < 0 {
			return nil, fmt.Errorf("empty-stomach buffer cannot be negative, got %d", env.BufferBeforeFoodMin)
		}
		return EmptyStomachPreferred{BufferBeforeFoodMin: env.BufferBeforeFoodMin}, nil
	case ConstraintAvoidAfter:
		if env.Time == "" {
			return nil, fmt.Errorf("avoid-after constraint requires a time")
		}
		return AvoidAfterTime{Time: env.Time}, nil
	case ConstraintWarn:
		if env.Message == "" {
			return nil, fmt.Errorf("warn constraint requires a message")
		}
		return Warn{Message: env.Message}, nil
	default:
		return nil, fmt.Errorf("unrecognized constraint type %q", env.Type)
	}
}

// interactionRuleAlias avoids recursing into the custom JSON methods.
type interactionRuleAlias struct {
	ID                 string          `json:"id,omitempty"`
	RuleKey            string          `json:"rule_key"`
	AppliesTo          []string        `json:"applies_to,omitempty"`
	AppliesIfTags      []Tag           `json:"applies_if_tags,omitempty"`
	ConflictsWithNames []string        `json:"conflicts_with_names,omitempty"`
	ConflictsWithTags  []Tag           `json:"conflicts_with_tags,omitempty"`
	Constraint         json.RawMessage `json:"constraint,omitempty"`
	Severity           Severity        `json:"severity"`
	Confidence         int             `json:"confidence"`
	Rationale          string          `json:"rationale,omitempty"`
	References         []string        `json:"references,omitempty"`
	Active             bool            `json:"active"`
	Version            int             `json:"version"`
}

func (r InteractionRule) MarshalJSON() ([]byte, error) {
	alias := interactionRuleAlias{
		ID:                 r.ID,
		RuleKey:            r.RuleKey,
		AppliesTo:          r.AppliesTo,
		AppliesIfTags:      r.AppliesIfTags,
		ConflictsWithNames: r.ConflictsWithNames,
		ConflictsWithTags:  r.ConflictsWithTags,
		Severity:           r.Severity,
		Confidence:         r.Confidence,
		Rationale:          r.Rationale,
		References:         r.References,
		Active:             r.Active,
		Version:            r.Version,
	}

	if r.Constraint != nil {
		raw, err := EncodeConstraint(r.Constraint)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.RuleKey, err)
		}
		alias.Constraint = raw
	}

	return json.Marshal(alias)
}

// UnmarshalJSON decodes a rule, tolerating a malformed constraint payload.
// A rule whose constraint cannot be decoded keeps a nil Constraint; the
// constraint builder skips and counts it instead of failing the run.
func (r *InteractionRule) UnmarshalJSON(data []byte) error {
	var alias interactionRuleAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	r.ID = alias.ID
	r.RuleKey = alias.RuleKey
	r.AppliesTo = alias.AppliesTo
	r.AppliesIfTags = alias.AppliesIfTags
	r.ConflictsWithNames = alias.ConflictsWithNames
	r.ConflictsWithTags = alias.ConflictsWithTags
	r.Severity = alias.Severity
	r.Confidence = alias.Confidence
	r.Rationale = alias.Rationale
	r.References = alias.References
	r.Active = alias.Active
	r.Version = alias.Version

	r.Constraint = nil
	if len(alias.Constraint) > 0 {
		if c, err := DecodeConstraint(alias.Constraint); err == nil {
			r.Constraint = c
		}
	}

	return nil
}
