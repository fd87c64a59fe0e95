package models

type SlotLabel string

const (
	SlotMorning   SlotLabel = "morning"
	SlotAfternoon SlotLabel = "afternoon"
	SlotEvening   SlotLabel = "evening"
	SlotNight     SlotLabel = "night"
)

// ScheduleInputItem is one medication or supplement the caller wants placed
// on the day's timetable.
type ScheduleInputItem struct {
	CanonicalName string `json:"canonical_name"`
	DisplayName   string `json:"display_name"`
	Dose          string `json:"dose,omitempty"`
	Frequency     string `json:"frequency,omitempty"`
}

// MealTimes carries optional HH:MM overrides for the default meal anchors.
type MealTimes struct {
	Breakfast string `json:"breakfast,omitempty"`
	Lunch     string `json:"lunch,omitempty"`
	Dinner    string `json:"dinner,omitempty"`
}

// DaySlots holds the resolved anchor times for a single day, minutes from
// midnight, strictly increasing.
type DaySlots struct {
	Wake      int `json:"wake"`
	Breakfast int `json:"breakfast"`
	Lunch     int `json:"lunch"`
	Dinner    int `json:"dinner"`
}

// ScheduledItem is one placed item on the final timetable.
type ScheduledItem struct {
	CanonicalName        string    `json:"canonical_name"`
	DisplayName          string    `json:"display_name"`
	Dose                 string    `json:"dose,omitempty"`
	ScheduledTime        string    `json:"scheduled_time"` // HH:MM, same calendar day
	SlotLabel            SlotLabel `json:"slot_label"`
	WithFood             bool      `json:"with_food"`
	Notes                []string  `json:"notes,omitempty"`
	ConstraintsSatisfied []string  `json:"constraints_satisfied,omitempty"`
	ConstraintsViolated  []string  `json:"constraints_violated,omitempty"`
}

// ScheduleWarning reports an unresolved binary conflict or a WARN rule.
type ScheduleWarning struct {
	RuleKey       string   `json:"rule_key"`
	Severity      Severity `json:"severity"`
	Confidence    int      `json:"confidence"`
	Message       string   `json:"message"`
	AffectedItems []string `json:"affected_items,omitempty"`
}

// ScheduleOutput is the engine's complete result for one day. The engine
// never persists it; the caller owns storage and display.
type ScheduleOutput struct {
	Date              string            `json:"date"` // YYYY-MM-DD, passed through verbatim
	Items             []ScheduledItem   `json:"items"`
	Warnings          []ScheduleWarning `json:"warnings"`
	OverallConfidence int               `json:"overall_confidence"`
	Disclaimer        string            `json:"disclaimer"`
}
