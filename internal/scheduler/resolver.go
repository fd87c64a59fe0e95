package scheduler

import (
	"fmt"
	"sort"

	"github.com/dosewise/dosewise/internal/constants"
	"github.com/dosewise/dosewise/internal/models"
	"github.com/dosewise/dosewise/internal/utils"
)

// resolve applies every bound constraint to the initial placements: food
// constraints snap to meal anchors, cutoffs clamp, and separation
// constraints are relaxed iteratively under a fixed pass ceiling. It
// returns the warnings for unresolved conflicts and WARN rules, plus the
// binary satisfied/total counts feeding the confidence score.
func resolve(working []*workingItem, constraints []boundConstraint, slots models.DaySlots, resolved []ResolvedItem) ([]models.ScheduleWarning, int, int) {
	cutoffs := applyUnary(working, constraints, slots, resolved)
	warnings := collectWarnRules(working, constraints)

	separations := make([]boundConstraint, 0, len(constraints))
	for _, bc := range constraints {
		if bc.binary() {
			separations = append(separations, bc)
		}
	}

	// Highest-confidence rules get first claim on the day. Ties fall back
	// to the rule key so runs stay deterministic.
	sort.SliceStable(separations, func(i, j int) bool {
		if separations[i].rule.Confidence != separations[j].rule.Confidence {
			return separations[i].rule.Confidence > separations[j].rule.Confidence
		}
		return separations[i].rule.RuleKey < separations[j].rule.RuleKey
	})

	for pass := 0; pass < constants.MaxResolverPasses; pass++ {
		settled := true
		for _, sep := range separations {
			minSep := sep.constraint.(models.MinSeparation)
			owner, target := working[sep.owner], working[sep.target]
			if abs(owner.timeMin-target.timeMin) >= minSep.Minutes {
				continue
			}
			settled = false
			relaxSeparation(owner, target, minSep.Minutes)
		}
		if settled {
			break
		}
	}

	// Cutoffs win over separation shifts: clamping keeps them satisfied by
	// construction, at the cost of possibly reopening a gap the evaluation
	// below then reports.
	clampToCutoffs(working, cutoffs)

	satisfiedBinary := 0
	for _, sep := range separations {
		minSep := sep.constraint.(models.MinSeparation)
		owner, target := working[sep.owner], working[sep.target]
		key := sep.key(resolved)

		if abs(owner.timeMin-target.timeMin) >= minSep.Minutes {
			owner.markSatisfied(key)
			target.markSatisfied(key)
			satisfiedBinary++
			continue
		}

		owner.markViolated(key)
		target.markViolated(key)
		warnings = append(warnings, models.ScheduleWarning{
			RuleKey:    sep.rule.RuleKey,
			Severity:   sep.rule.Severity,
			Confidence: sep.rule.Confidence,
			Message:    separationMessage(sep.rule, minSep, owner, target),
			AffectedItems: []string{
				owner.item.Input.DisplayName,
				target.item.Input.DisplayName,
			},
		})
	}

	return warnings, satisfiedBinary, len(separations)
}

// applyUnary snaps food-related constraints and records avoid-after
// cutoffs. It returns the per-item cutoff map (minutes from midnight) used
// to clamp throughout the relaxation loop.
func applyUnary(working []*workingItem, constraints []boundConstraint, slots models.DaySlots, resolved []ResolvedItem) map[int]int {
	cutoffs := make(map[int]int)

	// Profile-level cutoffs apply even without a bound rule.
	for i, w := range working {
		if t := w.item.Profile.Timing.AvoidAfterTime; t != "" {
			if cutoff, err := utils.ParseTimeToMinutes(t); err == nil {
				cutoffs[i] = cutoff
			}
		}
	}

	for _, bc := range constraints {
		w := working[bc.owner]
		key := bc.key(resolved)

		switch c := bc.constraint.(type) {
		case models.WithFoodRequired:
			w.timeMin = nearestMeal(w.timeMin, slots)
			w.withFood = true
			w.markSatisfied(key)
		case models.EmptyStomachPreferred:
			buffer := c.BufferBeforeFoodMin
			if buffer <= 0 {
				buffer = 30
			}
			w.timeMin = utils.ClampToDay(nearestMeal(w.timeMin, slots) - buffer)
			w.withFood = false
			w.addNote(emptyStomachNote(buffer))
			w.markSatisfied(key)
		case models.AvoidAfterTime:
			if cutoff, err := utils.ParseTimeToMinutes(c.Time); err == nil {
				if existing, ok := cutoffs[bc.owner]; !ok || cutoff < existing {
					cutoffs[bc.owner] = cutoff
				}
				w.markSatisfied(key)
			}
		case models.MinSeparation, models.Warn:
			// Separation runs in the relaxation loop; WARN rules are
			// collected separately and never alter timing.
		}
	}

	return cutoffs
}

// collectWarnRules emits one warning per WARN rule, merging the affected
// items when the rule bound to several of them.
func collectWarnRules(working []*workingItem, constraints []boundConstraint) []models.ScheduleWarning {
	var warnings []models.ScheduleWarning
	index := make(map[string]int)

	for _, bc := range constraints {
		warn, ok := bc.constraint.(models.Warn)
		if !ok {
			continue
		}

		name := working[bc.owner].item.Input.DisplayName
		if i, seen := index[bc.rule.RuleKey]; seen {
			warnings[i].AffectedItems = appendUnique(warnings[i].AffectedItems, name)
			continue
		}

		index[bc.rule.RuleKey] = len(warnings)
		warnings = append(warnings, models.ScheduleWarning{
			RuleKey:       bc.rule.RuleKey,
			Severity:      bc.rule.Severity,
			Confidence:    bc.rule.Confidence,
			Message:       warn.Message,
			AffectedItems: []string{name},
		})
	}

	return warnings
}

// relaxSeparation tries to widen the gap between two items to the required
// minimum. Fixed items never move; when both can move the later one shifts
// later, unless that would leave the day, in which case the earlier one
// shifts earlier.
func relaxSeparation(owner, target *workingItem, minutes int) {
	deficit := minutes - abs(owner.timeMin-target.timeMin)
	ownerFixed, targetFixed := owner.fixed(), target.fixed()

	switch {
	case ownerFixed && targetFixed:
		// Leave in place; the evaluation pass records the violation.
	case ownerFixed != targetFixed:
		movable, anchor := owner, target
		if ownerFixed {
			movable, anchor = target, owner
		}
		if movable.timeMin >= anchor.timeMin {
			movable.shiftTo(movable.timeMin + deficit)
		} else {
			movable.shiftTo(movable.timeMin - deficit)
		}
	default:
		earlier, later := owner, target
		if target.timeMin < owner.timeMin {
			earlier, later = target, owner
		}
		if later.timeMin+deficit > constants.LastMinuteOfDay {
			earlier.shiftTo(earlier.timeMin - deficit)
		} else {
			later.shiftTo(later.timeMin + deficit)
		}
	}
}

// clampToCutoffs enforces every avoid-after cutoff, noting the move when it
// lands materially away from the item's initial placement.
func clampToCutoffs(working []*workingItem, cutoffs map[int]int) {
	for i, cutoff := range cutoffs {
		w := working[i]
		if w.timeMin <= cutoff {
			continue
		}
		w.timeMin = cutoff
		if abs(w.timeMin-w.initialMin) >= constants.ClampNoteThresholdMin {
			w.addNote(fmt.Sprintf("Moved earlier to stay before the %s cutoff.", utils.FormatMinutes(cutoff)))
		}
	}
}

func separationMessage(rule models.InteractionRule, c models.MinSeparation, owner, target *workingItem) string {
	if rule.Rationale != "" {
		return rule.Rationale
	}
	return fmt.Sprintf("%s and %s should be taken at least %d minutes apart.",
		owner.item.Input.DisplayName, target.item.Input.DisplayName, c.Minutes)
}

// fixed reports whether the item's own profile pins its time: an
// empty-stomach preference anchors it to wake, and a single preferred
// window without the flexible flag anchors it to that window.
func (w *workingItem) fixed() bool {
	t := w.item.Profile.Timing
	if t.EmptyStomachPreferred {
		return true
	}
	return len(t.PreferredWindows) == 1 && !t.Flexible
}

// shiftTo moves the item, clamping to its own bounds: preferred window
// edges, any avoid-after cutoff, and the day itself.
func (w *workingItem) shiftTo(timeMin int) {
	lo, hi := 0, constants.LastMinuteOfDay

	if windows := w.item.Profile.Timing.PreferredWindows; len(windows) > 0 {
		if start, err := utils.ParseTimeToMinutes(windows[0].Start); err == nil {
			lo = start
		}
		if end, err := utils.ParseTimeToMinutes(windows[0].End); err == nil && end >= lo {
			hi = end
		}
	}
	if t := w.item.Profile.Timing.AvoidAfterTime; t != "" {
		if cutoff, err := utils.ParseTimeToMinutes(t); err == nil && cutoff < hi {
			hi = cutoff
		}
	}

	if timeMin < lo {
		timeMin = lo
	}
	if timeMin > hi {
		timeMin = hi
	}
	w.timeMin = timeMin
}

func (w *workingItem) markSatisfied(key string) {
	w.satisfied = appendUnique(w.satisfied, key)
}

func (w *workingItem) markViolated(key string) {
	w.violated = appendUnique(w.violated, key)
}

func (w *workingItem) addNote(note string) {
	w.notes = appendUnique(w.notes, note)
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
