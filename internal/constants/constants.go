package constants

const (
	AppName            = "dosewise"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/dosewise/dosewise.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Default day anchors. Meal offsets are minutes relative to wake time.
	DefaultWakeTime            = "07:00"
	BreakfastOffsetMin         = 30
	LunchOffsetMin             = 5 * 60
	DinnerOffsetMin            = 11 * 60
	FlexiblePlacementOffsetMin = 2 * 60

	// MaxResolverPasses bounds the separation-constraint relaxation loop.
	MaxResolverPasses = 5

	// LastMinuteOfDay is 23:59 expressed in minutes from midnight. Every
	// scheduled time stays within a single calendar day.
	LastMinuteOfDay = 23*60 + 59

	// Confidence weighting: profile coverage vs. binary-rule satisfaction.
	CoverageWeight     = 70.0
	SatisfactionWeight = 30.0

	// Band thresholds for presentation.
	HighConfidenceMin     = 80
	ModerateConfidenceMin = 60

	// ClampNoteThresholdMin is how far a cutoff clamp has to move an item
	// before the schedule mentions it in the item's notes.
	ClampNoteThresholdMin = 30

	// Disclaimer is attached to every generated schedule.
	Disclaimer = "This schedule is general timing guidance only and is not medical advice. Confirm any changes to how you take your medications with a doctor or pharmacist."
)
