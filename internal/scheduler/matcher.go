package scheduler

import "github.com/dosewise/dosewise/internal/models"

// ResolvedItem pairs an input item with its catalog profile. Matched is
// false when the catalog had no entry and a conservative default was
// substituted; that only lowers the schedule's confidence, never errors.
type ResolvedItem struct {
	Input   models.ScheduleInputItem
	Profile models.ItemProfile
	Matched bool
}

func resolveProfiles(items []models.ScheduleInputItem, profiles []models.ItemProfile) []ResolvedItem {
	byName := make(map[string]models.ItemProfile, len(profiles))
	for _, p := range profiles {
		byName[p.CanonicalName] = p
	}

	resolved := make([]ResolvedItem, 0, len(items))
	for _, item := range items {
		if profile, ok := byName[item.CanonicalName]; ok {
			resolved = append(resolved, ResolvedItem{Input: item, Profile: profile, Matched: true})
			continue
		}
		resolved = append(resolved, ResolvedItem{
			Input:   item,
			Profile: defaultProfile(item),
			Matched: false,
		})
	}
	return resolved
}

// defaultProfile is the conservative fallback for items the catalog does
// not know: a flexible supplement with no tags.
func defaultProfile(item models.ScheduleInputItem) models.ItemProfile {
	return models.ItemProfile{
		CanonicalName: item.CanonicalName,
		DisplayName:   item.DisplayName,
		Kind:          models.ItemKindSupplement,
		Timing:        models.TimingProfile{Flexible: true},
	}
}
