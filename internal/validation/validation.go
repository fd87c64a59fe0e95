package validation

import (
	"fmt"

	"github.com/dosewise/dosewise/internal/models"
	"github.com/dosewise/dosewise/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictInvalidTime        ConflictType = "invalid_time"
	ConflictDuplicateItem      ConflictType = "duplicate_item"
	ConflictMissingName        ConflictType = "missing_name"
	ConflictMealOrder          ConflictType = "meal_order"
	ConflictMalformedRule      ConflictType = "malformed_rule"
	ConflictRuleOutOfRange     ConflictType = "rule_out_of_range"
	ConflictRuleAppliesNothing ConflictType = "rule_applies_nothing"
)

// Conflict represents a detected problem in schedule inputs or catalog rows
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // canonical names or rule keys involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator validates schedule inputs and catalog rows before a run
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateScheduleRequest checks the call-level inputs of a schedule run.
// Conflicts here are fatal to the run: the engine would otherwise reject
// the same inputs with a bare error.
func (v *Validator) ValidateScheduleRequest(date string, items []models.ScheduleInputItem, wakeTime string, meals *models.MealTimes) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if !utils.ValidateDateFormat(date) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidDate,
			Description: fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", date),
		})
	}

	if wakeTime != "" && !utils.ValidateTimeFormat(wakeTime) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidTime,
			Description: fmt.Sprintf("Invalid wake time %q, expected HH:MM", wakeTime),
		})
	}

	seen := make(map[string][]int)
	for i, item := range items {
		if item.CanonicalName == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingName,
				Description: fmt.Sprintf("Item %d has no canonical name", i+1),
			})
			continue
		}
		seen[item.CanonicalName] = append(seen[item.CanonicalName], i)
	}
	for name, indexes := range seen {
		if len(indexes) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateItem,
				Description: fmt.Sprintf("Item %q appears %d times in the request", name, len(indexes)),
				Items:       []string{name},
			})
		}
	}

	if meals != nil {
		result.Conflicts = append(result.Conflicts, validateMeals(meals)...)
	}

	return result
}

func validateMeals(meals *models.MealTimes) []Conflict {
	var conflicts []Conflict

	entries := []struct {
		name  string
		value string
	}{
		{"breakfast", meals.Breakfast},
		{"lunch", meals.Lunch},
		{"dinner", meals.Dinner},
	}

	previous := -1
	previousName := ""
	for _, entry := range entries {
		if entry.value == "" {
			continue
		}
		minutes, err := utils.ParseTimeToMinutes(entry.value)
		if err != nil {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictInvalidTime,
				Description: fmt.Sprintf("Invalid %s time %q, expected HH:MM", entry.name, entry.value),
			})
			continue
		}
		if previous >= 0 && minutes <= previous {
			conflicts = append(conflicts, Conflict{
				Type:        ConflictMealOrder,
				Description: fmt.Sprintf("Meal times out of order: %s (%s) is not after %s", entry.name, entry.value, previousName),
			})
		}
		previous = minutes
		previousName = entry.name
	}

	return conflicts
}

// ValidateRules checks catalog rules for shape problems. These conflicts
// are advisory: the engine skips a malformed rule at run time, so the
// report exists to surface them before they silently stop binding.
func (v *Validator) ValidateRules(rules []models.InteractionRule) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	for _, rule := range rules {
		if rule.RuleKey == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMalformedRule,
				Description: "Rule with empty rule key",
			})
			continue
		}

		if rule.Constraint == nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMalformedRule,
				Description: fmt.Sprintf("Rule %q has no recognizable constraint", rule.RuleKey),
				Items:       []string{rule.RuleKey},
			})
		}

		if len(rule.AppliesTo) == 0 && len(rule.AppliesIfTags) == 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictRuleAppliesNothing,
				Description: fmt.Sprintf("Rule %q matches no items: both applies_to and applies_if_tags are empty", rule.RuleKey),
				Items:       []string{rule.RuleKey},
			})
		}

		if rule.Confidence < 0 || rule.Confidence > 100 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictRuleOutOfRange,
				Description: fmt.Sprintf("Rule %q confidence %d is outside [0,100]", rule.RuleKey, rule.Confidence),
				Items:       []string{rule.RuleKey},
			})
		}

		if sep, ok := rule.Constraint.(models.MinSeparation); ok {
			if len(rule.ConflictsWithNames) == 0 && len(rule.ConflictsWithTags) == 0 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMalformedRule,
					Description: fmt.Sprintf("Separation rule %q has no conflict targets", rule.RuleKey),
					Items:       []string{rule.RuleKey},
				})
			}
			if sep.Minutes <= 0 {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictRuleOutOfRange,
					Description: fmt.Sprintf("Separation rule %q requires positive minutes, got %d", rule.RuleKey, sep.Minutes),
					Items:       []string{rule.RuleKey},
				})
			}
		}

		if aa, ok := rule.Constraint.(models.AvoidAfterTime); ok && !utils.ValidateTimeFormat(aa.Time) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTime,
				Description: fmt.Sprintf("Rule %q has invalid avoid-after time %q", rule.RuleKey, aa.Time),
				Items:       []string{rule.RuleKey},
			})
		}
	}

	return result
}
