package scheduler

import (
	"fmt"

	"github.com/dosewise/dosewise/internal/models"
)

// boundConstraint is one rule instance bound to concrete items. Unary
// constraints carry target == -1; separation constraints carry the index of
// the conflicting item.
type boundConstraint struct {
	rule       models.InteractionRule
	constraint models.RuleConstraint
	owner      int
	target     int
}

func (b boundConstraint) binary() bool {
	return b.target >= 0
}

// key identifies the constraint in an item's satisfied/violated lists.
// Binary constraints are keyed per conflict pair so the two lists stay
// disjoint even when one rule binds the same item against several targets.
func (b boundConstraint) key(resolved []ResolvedItem) string {
	if !b.binary() {
		return b.rule.RuleKey
	}
	return fmt.Sprintf("%s:%s+%s", b.rule.RuleKey,
		resolved[b.owner].Profile.CanonicalName,
		resolved[b.target].Profile.CanonicalName)
}

type buildResult struct {
	constraints []boundConstraint
	malformed   int
}

// buildConstraints evaluates every active rule against the resolved items
// and binds the applicable instances. A rule with an unrecognized or missing
// constraint shape is skipped and counted; one bad rule never aborts a run.
func buildConstraints(resolved []ResolvedItem, rules []models.InteractionRule) buildResult {
	var result buildResult

	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if rule.Constraint == nil {
			result.malformed++
			continue
		}

		switch c := rule.Constraint.(type) {
		case models.MinSeparation:
			result.constraints = append(result.constraints, bindSeparation(rule, c, resolved)...)
		case models.WithFoodRequired, models.EmptyStomachPreferred, models.AvoidAfterTime, models.Warn:
			for i, item := range resolved {
				if rule.AppliesToProfile(item.Profile) {
					result.constraints = append(result.constraints, boundConstraint{
						rule:       rule,
						constraint: c,
						owner:      i,
						target:     -1,
					})
				}
			}
		default:
			result.malformed++
		}
	}

	return result
}

// bindSeparation binds one instance per distinct owner/target pair. Pairs
// are deduplicated without regard to direction so a rule matching both ways
// does not bind the same gap twice.
func bindSeparation(rule models.InteractionRule, c models.MinSeparation, resolved []ResolvedItem) []boundConstraint {
	var bound []boundConstraint
	seen := make(map[[2]int]bool)

	for i, owner := range resolved {
		if !rule.AppliesToProfile(owner.Profile) {
			continue
		}
		for j, target := range resolved {
			if i == j {
				continue
			}
			if !rule.ConflictsWithProfile(target.Profile) {
				continue
			}

			pair := [2]int{i, j}
			if j < i {
				pair = [2]int{j, i}
			}
			if seen[pair] {
				continue
			}
			seen[pair] = true

			bound = append(bound, boundConstraint{
				rule:       rule,
				constraint: c,
				owner:      i,
				target:     j,
			})
		}
	}

	return bound
}
