package models

type ItemKind string

const (
	ItemKindMed        ItemKind = "med"
	ItemKindSupplement ItemKind = "supplement"
	ItemKindFood       ItemKind = "food"
)

type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// Closed tag vocabulary. Rules match classes of items through these instead
// of naming every item individually.
type Tag string

const (
	TagIron           Tag = "IRON"
	TagCalcium        Tag = "CALCIUM"
	TagDivalentCation Tag = "DIVALENT_CATION"
	TagThyroidHormone Tag = "THYROID_HORMONE"
	TagStimulant      Tag = "STIMULANT"
	TagCaffeine       Tag = "CAFFEINE"
	TagFatSoluble     Tag = "FAT_SOLUBLE"
	TagNSAID          Tag = "NSAID"
	TagAntacid        Tag = "ANTACID"
	TagFiber          Tag = "FIBER"
	TagZinc           Tag = "ZINC"
	TagMagnesium      Tag = "MAGNESIUM"

	// TagAnyMed is a wildcard matching every item whose kind is "med".
	TagAnyMed Tag = "ANY_MED"
)

// TimeWindow is a preferred time-of-day range, HH:MM inclusive bounds.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TimingProfile describes how a single item prefers to be taken over a day.
type TimingProfile struct {
	PreferredWindows      []TimeWindow `json:"preferred_windows,omitempty"`
	WithFood              bool         `json:"with_food,omitempty"`
	EmptyStomachPreferred bool         `json:"empty_stomach_preferred,omitempty"`
	BufferBeforeFoodMin   int          `json:"buffer_before_food_min,omitempty"`
	AvoidAfterTime        string       `json:"avoid_after_time,omitempty"` // HH:MM
	Stimulant             bool         `json:"stimulant,omitempty"`
	Flexible              bool         `json:"flexible,omitempty"`
}

// ItemProfile is a catalog entry for one medication, supplement, or food.
// Profiles are curated externally and are immutable within a run.
type ItemProfile struct {
	ID            string        `json:"id,omitempty"`
	CanonicalName string        `json:"canonical_name"`
	DisplayName   string        `json:"display_name"`
	Kind          ItemKind      `json:"kind"`
	Tags          []Tag         `json:"tags,omitempty"`
	Timing        TimingProfile `json:"timing"`
	Version       int           `json:"version"`
	Active        bool          `json:"active"`
}

// HasTag reports whether the profile carries the given tag.
func (p ItemProfile) HasTag(tag Tag) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// InteractionRule binds a timing or separation constraint to items matched
// by name or tag. Inactive rules are never bound to a schedule run.
type InteractionRule struct {
	ID                 string         `json:"id,omitempty"`
	RuleKey            string         `json:"rule_key"`
	AppliesTo          []string       `json:"applies_to,omitempty"`
	AppliesIfTags      []Tag          `json:"applies_if_tags,omitempty"`
	ConflictsWithNames []string       `json:"conflicts_with_names,omitempty"`
	ConflictsWithTags  []Tag          `json:"conflicts_with_tags,omitempty"`
	Constraint         RuleConstraint `json:"constraint"`
	Severity           Severity       `json:"severity"`
	Confidence         int            `json:"confidence"` // 0-100
	Rationale          string         `json:"rationale,omitempty"`
	References         []string       `json:"references,omitempty"`
	Active             bool           `json:"active"`
	Version            int            `json:"version"`
}

// AppliesToProfile reports whether the rule's left-hand side matches the
// given item profile.
func (r InteractionRule) AppliesToProfile(p ItemProfile) bool {
	for _, name := range r.AppliesTo {
		if name == p.CanonicalName {
			return true
		}
	}
	for _, tag := range r.AppliesIfTags {
		if p.HasTag(tag) {
			return true
		}
	}
	return false
}

// ConflictsWithProfile reports whether the rule's right-hand side matches
// the given item profile. The ANY_MED wildcard matches every med-kind item.
func (r InteractionRule) ConflictsWithProfile(p ItemProfile) bool {
	for _, name := range r.ConflictsWithNames {
		if name == p.CanonicalName {
			return true
		}
	}
	for _, tag := range r.ConflictsWithTags {
		if tag == TagAnyMed && p.Kind == ItemKindMed {
			return true
		}
		if p.HasTag(tag) {
			return true
		}
	}
	return false
}
