package models

import (
	"encoding/json"
	"testing"
)

func TestDecodeConstraint_Variants(t *testing.T) {
	c, err := DecodeConstraint([]byte(`{"type":"MIN_SEPARATION_MINUTES","minutes":120,"other":"calcium-carbonate"}`))
	if err != nil {
		t.Fatalf("decode separation: %v", err)
	}
	sep, ok := c.(MinSeparation)
	if !ok || sep.Minutes != 120 || sep.Other != "calcium-carbonate" {
		t.Errorf("unexpected separation decode: %#v", c)
	}

	c, err = DecodeConstraint([]byte(`{"type":"EMPTY_STOMACH_PREFERRED","buffer_before_food_min":45}`))
	if err != nil {
		t.Fatalf("decode empty stomach: %v", err)
	}
	if es, ok := c.(EmptyStomachPreferred); !ok || es.BufferBeforeFoodMin != 45 {
		t.Errorf("unexpected empty-stomach decode: %#v", c)
	}

	c, err = DecodeConstraint([]byte(`{"type":"AVOID_AFTER_TIME","time":"14:00"}`))
	if err != nil {
		t.Fatalf("decode avoid-after: %v", err)
	}
	if aa, ok := c.(AvoidAfterTime); !ok || aa.Time != "14:00" {
		t.Errorf("unexpected avoid-after decode: %#v", c)
	}

	if _, err := DecodeConstraint([]byte(`{"type":"WITH_FOOD_REQUIRED"}`)); err != nil {
		t.Errorf("decode with-food: %v", err)
	}

	c, err = DecodeConstraint([]byte(`{"type":"WARN","message":"check with your pharmacist"}`))
	if err != nil {
		t.Fatalf("decode warn: %v", err)
	}
	if w, ok := c.(Warn); !ok || w.Message == "" {
		t.Errorf("unexpected warn decode: %#v", c)
	}
}

func TestDecodeConstraint_RejectsMalformedShapes(t *testing.T) {
	malformed := []string{
		`{"type":"DOSE_LIMIT","max":3}`,                  // unknown discriminator
		`{"type":"MIN_SEPARATION_MINUTES"}`,              // missing minutes
		`{"type":"MIN_SEPARATION_MINUTES","minutes":-5}`, // negative gap
		`{"type":"AVOID_AFTER_TIME"}`,                    // missing time
		`{"type":"WARN"}`,                                // missing message
		`not json`,
	}

	for _, payload := range malformed {
		if _, err := DecodeConstraint([]byte(payload)); err == nil {
			t.Errorf("expected decode error for %s", payload)
		}
	}
}

func TestEncodeConstraint_RoundTrip(t *testing.T) {
	original := MinSeparation{Minutes: 240, Other: "levothyroxine"}

	data, err := EncodeConstraint(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeConstraint(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != RuleConstraint(original) {
		t.Errorf("round trip mismatch: %#v != %#v", decoded, original)
	}

	if _, err := EncodeConstraint(nil); err == nil {
		t.Error("expected error encoding nil constraint")
	}
}

func TestInteractionRuleJSON_ToleratesMalformedConstraint(t *testing.T) {
	payload := `{
		"rule_key": "broken",
		"applies_if_tags": ["IRON"],
		"constraint": {"type": "NOT_A_CONSTRAINT"},
		"severity": "soft",
		"confidence": 50,
		"active": true,
		"version": 1
	}`

	var rule InteractionRule
	if err := json.Unmarshal([]byte(payload), &rule); err != nil {
		t.Fatalf("a malformed constraint must not fail the rule decode: %v", err)
	}
	if rule.Constraint != nil {
		t.Errorf("expected nil constraint for unrecognized shape, got %#v", rule.Constraint)
	}
	if rule.RuleKey != "broken" || !rule.Active {
		t.Errorf("expected remaining fields decoded, got %+v", rule)
	}
}

func TestInteractionRuleJSON_RoundTrip(t *testing.T) {
	rule := InteractionRule{
		RuleKey:           "iron-divalent-separation",
		AppliesIfTags:     []Tag{TagIron},
		ConflictsWithTags: []Tag{TagDivalentCation},
		Constraint:        MinSeparation{Minutes: 120},
		Severity:          SeverityHard,
		Confidence:        90,
		Rationale:         "Divalent cations compete for absorption.",
		Active:            true,
		Version:           2,
	}

	data, err := json.Marshal(rule)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded InteractionRule
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	sep, ok := decoded.Constraint.(MinSeparation)
	if !ok || sep.Minutes != 120 {
		t.Errorf("expected separation constraint preserved, got %#v", decoded.Constraint)
	}
	if decoded.RuleKey != rule.RuleKey || decoded.Version != rule.Version {
		t.Errorf("rule fields lost in round trip: %+v", decoded)
	}
}

func TestRuleMatching(t *testing.T) {
	iron := ItemProfile{
		CanonicalName: "ferrous-sulfate",
		Kind:          ItemKindSupplement,
		Tags:          []Tag{TagIron, TagDivalentCation},
	}
	med := ItemProfile{CanonicalName: "lisinopril", Kind: ItemKindMed}

	rule := InteractionRule{
		AppliesTo:          []string{"lisinopril"},
		AppliesIfTags:      []Tag{TagIron},
		ConflictsWithNames: []string{"ferrous-sulfate"},
		ConflictsWithTags:  []Tag{TagAnyMed},
	}

	if !rule.AppliesToProfile(iron) {
		t.Error("expected tag match on the left-hand side")
	}
	if !rule.AppliesToProfile(med) {
		t.Error("expected name match on the left-hand side")
	}
	if !rule.ConflictsWithProfile(iron) {
		t.Error("expected name match on the right-hand side")
	}
	if !rule.ConflictsWithProfile(med) {
		t.Error("expected the ANY_MED wildcard to match a med-kind item")
	}
	if rule.ConflictsWithProfile(ItemProfile{CanonicalName: "other", Kind: ItemKindSupplement}) {
		t.Error("expected no match for an untagged supplement")
	}
}
