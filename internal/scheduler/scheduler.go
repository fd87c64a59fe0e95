package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/dosewise/dosewise/internal/constants"
	"github.com/dosewise/dosewise/internal/models"
	"github.com/dosewise/dosewise/internal/utils"
)

type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// Options carries the optional inputs to a schedule run.
type Options struct {
	WakeTime string            // HH:MM, defaults to 07:00
	Meals    *models.MealTimes // overrides for the derived meal anchors
}

// GenerateSchedule computes a single day's dosing timetable for the given
// items against the supplied catalog. It is a pure function: deterministic
// for fixed inputs, no I/O, and nothing is retained between calls. The
// catalog slices are read-only; concurrent calls are safe as long as each
// receives inputs that are not mutated during the run.
func (s *Scheduler) GenerateSchedule(date string, items []models.ScheduleInputItem, profiles []models.ItemProfile, rules []models.InteractionRule, opts Options) (models.ScheduleOutput, error) {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return models.ScheduleOutput{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}

	slots, err := GetDefaultDaySlots(opts.WakeTime, opts.Meals)
	if err != nil {
		return models.ScheduleOutput{}, err
	}

	output := models.ScheduleOutput{
		Date:       date,
		Items:      []models.ScheduledItem{},
		Warnings:   []models.ScheduleWarning{},
		Disclaimer: constants.Disclaimer,
	}

	if len(items) == 0 {
		output.OverallConfidence = computeConfidence(0, 0, 0, 0)
		return output, nil
	}

	resolved := resolveProfiles(items, profiles)
	built := buildConstraints(resolved, rules)
	working := placeItems(resolved, slots)
	warnings, satisfiedBinary, totalBinary := resolve(working, built.constraints, slots, resolved)

	matched := 0
	for _, r := range resolved {
		if r.Matched {
			matched++
		}
	}

	for _, w := range working {
		output.Items = append(output.Items, models.ScheduledItem{
			CanonicalName:        w.item.Input.CanonicalName,
			DisplayName:          w.item.Input.DisplayName,
			Dose:                 w.item.Input.Dose,
			ScheduledTime:        utils.FormatMinutes(w.timeMin),
			SlotLabel:            slotLabelFor(w.timeMin),
			WithFood:             w.withFood,
			Notes:                w.notes,
			ConstraintsSatisfied: w.satisfied,
			ConstraintsViolated:  w.violated,
		})
	}
	sort.SliceStable(output.Items, func(i, j int) bool {
		if output.Items[i].ScheduledTime != output.Items[j].ScheduledTime {
			return output.Items[i].ScheduledTime < output.Items[j].ScheduledTime
		}
		return output.Items[i].CanonicalName < output.Items[j].CanonicalName
	})

	output.Warnings = warnings
	output.OverallConfidence = computeConfidence(matched, len(resolved), satisfiedBinary, totalBinary)

	return output, nil
}
