package scheduler

import (
	"fmt"

	"github.com/dosewise/dosewise/internal/constants"
	"github.com/dosewise/dosewise/internal/models"
	"github.com/dosewise/dosewise/internal/utils"
)

// GetDefaultDaySlots computes the day's anchor times from the wake time and
// optional meal overrides. Defaults fall out of the wake time (breakfast
// +30m, lunch +5h, dinner +11h) and stay monotonically increasing below
// midnight.
func GetDefaultDaySlots(wakeTime string, meals *models.MealTimes) (models.DaySlots, error) {
	if wakeTime == "" {
		wakeTime = constants.DefaultWakeTime
	}

	wake, err := utils.ParseTimeToMinutes(wakeTime)
	if err != nil {
		return models.DaySlots{}, fmt.Errorf("invalid wake time %q: %w", wakeTime, err)
	}

	slots := models.DaySlots{
		Wake:      wake,
		Breakfast: utils.ClampToDay(wake + constants.BreakfastOffsetMin),
		Lunch:     utils.ClampToDay(wake + constants.LunchOffsetMin),
		Dinner:    utils.ClampToDay(wake + constants.DinnerOffsetMin),
	}

	if meals != nil {
		if meals.Breakfast != "" {
			if slots.Breakfast, err = utils.ParseTimeToMinutes(meals.Breakfast); err != nil {
				return models.DaySlots{}, fmt.Errorf("invalid breakfast time %q: %w", meals.Breakfast, err)
			}
		}
		if meals.Lunch != "" {
			if slots.Lunch, err = utils.ParseTimeToMinutes(meals.Lunch); err != nil {
				return models.DaySlots{}, fmt.Errorf("invalid lunch time %q: %w", meals.Lunch, err)
			}
		}
		if meals.Dinner != "" {
			if slots.Dinner, err = utils.ParseTimeToMinutes(meals.Dinner); err != nil {
				return models.DaySlots{}, fmt.Errorf("invalid dinner time %q: %w", meals.Dinner, err)
			}
		}
	}

	return slots, nil
}

// workingItem is the resolver's mutable view of one scheduled item.
type workingItem struct {
	item       ResolvedItem
	timeMin    int
	initialMin int
	withFood   bool
	notes      []string
	satisfied  []string
	violated   []string
}

// placeItems seeds each item's initial time-of-day from its own timing
// profile and the day anchors. Pairwise conflicts are the resolver's job.
func placeItems(resolved []ResolvedItem, slots models.DaySlots) []*workingItem {
	working := make([]*workingItem, 0, len(resolved))

	for _, item := range resolved {
		w := &workingItem{item: item}
		timing := item.Profile.Timing

		switch {
		case len(timing.PreferredWindows) > 0:
			w.timeMin = windowMidpoint(timing.PreferredWindows[0], slots)
		case timing.EmptyStomachPreferred:
			w.timeMin = slots.Wake
			w.notes = append(w.notes, emptyStomachNote(timing.BufferBeforeFoodMin))
		case timing.WithFood:
			w.timeMin = nearestMeal(slots.Breakfast, slots)
			w.withFood = true
		case timing.Stimulant:
			w.timeMin = slots.Wake
			if timing.AvoidAfterTime != "" {
				if cutoff, err := utils.ParseTimeToMinutes(timing.AvoidAfterTime); err == nil && w.timeMin > cutoff {
					w.timeMin = cutoff
				}
			}
		default:
			w.timeMin = utils.ClampToDay(slots.Wake + constants.FlexiblePlacementOffsetMin)
		}

		w.timeMin = utils.ClampToDay(w.timeMin)
		w.initialMin = w.timeMin
		working = append(working, w)
	}

	return working
}

// windowMidpoint returns the center of a preferred window, falling back to
// a wake-relative default when the window's bounds do not parse.
func windowMidpoint(window models.TimeWindow, slots models.DaySlots) int {
	start, errStart := utils.ParseTimeToMinutes(window.Start)
	end, errEnd := utils.ParseTimeToMinutes(window.End)
	if errStart != nil || errEnd != nil || end < start {
		return utils.ClampToDay(slots.Wake + constants.FlexiblePlacementOffsetMin)
	}
	return (start + end) / 2
}

// nearestMeal returns the meal anchor closest to the given time. Ties go to
// the earlier meal.
func nearestMeal(timeMin int, slots models.DaySlots) int {
	meals := [3]int{slots.Breakfast, slots.Lunch, slots.Dinner}
	best := meals[0]
	for _, meal := range meals[1:] {
		if abs(meal-timeMin) < abs(best-timeMin) {
			best = meal
		}
	}
	return best
}

func emptyStomachNote(bufferMin int) string {
	if bufferMin <= 0 {
		bufferMin = 30
	}
	return fmt.Sprintf("Take on an empty stomach, at least %d minutes before food.", bufferMin)
}

// slotLabelFor quarters the day: 00:00-06:00 night, 06:00-12:00 morning,
// 12:00-18:00 afternoon, 18:00-24:00 evening.
func slotLabelFor(timeMin int) models.SlotLabel {
	switch {
	case timeMin < 6*60:
		return models.SlotNight
	case timeMin < 12*60:
		return models.SlotMorning
	case timeMin < 18*60:
		return models.SlotAfternoon
	default:
		return models.SlotEvening
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
