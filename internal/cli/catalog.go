package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/dosewise/dosewise/internal/catalog"
	"github.com/dosewise/dosewise/internal/models"
	"github.com/dosewise/dosewise/internal/validation"
)

type CatalogCmd struct {
	List       CatalogListCmd       `cmd:"" help:"List catalog profiles."`
	Show       CatalogShowCmd       `cmd:"" help:"Show one profile in full."`
	Add        CatalogAddCmd        `cmd:"" help:"Add or update a profile."`
	Deactivate CatalogDeactivateCmd `cmd:"" help:"Deactivate a profile or rule."`
	Rules      CatalogRulesCmd      `cmd:"" help:"List interaction rules."`
	Export     CatalogExportCmd     `cmd:"" help:"Export the catalog to a JSON file."`
	Import     CatalogImportCmd     `cmd:"" help:"Import profiles and rules from a JSON file."`
}

type CatalogListCmd struct{}

func (c *CatalogListCmd) Run(ctx *Context) error {
	profiles, err := ctx.Store.GetActiveProfiles()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("Catalog is empty. Run 'dosewise init' to seed the defaults.")
		return nil
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CanonicalName < profiles[j].CanonicalName
	})

	fmt.Printf("%-24s %-12s %s\n", "NAME", "KIND", "TAGS")
	for _, p := range profiles {
		tags := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			tags = append(tags, string(t))
		}
		fmt.Printf("%-24s %-12s %s\n", p.CanonicalName, p.Kind, strings.Join(tags, ","))
	}
	return nil
}

type CatalogShowCmd struct {
	Name string `arg:"" help:"Canonical name of the profile."`
}

func (c *CatalogShowCmd) Run(ctx *Context) error {
	profile, err := ctx.Store.GetProfile(c.Name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

type CatalogAddCmd struct {
	Name     string `arg:"" optional:"" help:"Canonical name (lowercase, hyphenated)."`
	Display  string `help:"Display name shown on schedules."`
	Kind     string `help:"Item kind: med, supplement, or food." enum:"med,supplement,food," default:""`
	Tags     string `help:"Comma-separated tags (e.g. IRON,DIVALENT_CATION)."`
	WithFood bool   `help:"Item should be taken with food."`
	Flexible bool   `help:"Item can move freely on the timetable."`
}

func (c *CatalogAddCmd) Run(ctx *Context) error {
	if c.Name == "" {
		if err := c.prompt(); err != nil {
			return err
		}
	}
	if c.Display == "" {
		c.Display = c.Name
	}
	if c.Kind == "" {
		c.Kind = string(models.ItemKindSupplement)
	}

	var tags []models.Tag
	for _, raw := range strings.Split(c.Tags, ",") {
		raw = strings.ToUpper(strings.TrimSpace(raw))
		if raw != "" {
			tags = append(tags, models.Tag(raw))
		}
	}

	profile := models.ItemProfile{
		CanonicalName: strings.ToLower(strings.TrimSpace(c.Name)),
		DisplayName:   c.Display,
		Kind:          models.ItemKind(c.Kind),
		Tags:          tags,
		Timing: models.TimingProfile{
			WithFood: c.WithFood,
			Flexible: c.Flexible,
		},
		Version: 1,
		Active:  true,
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.PutProfile(profile); err != nil {
		return err
	}
	fmt.Printf("Saved profile: %s\n", profile.CanonicalName)
	return nil
}

func (c *CatalogAddCmd) prompt() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Canonical name").
				Placeholder("e.g. vitamin-d3").
				Value(&c.Name),
			huh.NewInput().
				Title("Display name").
				Value(&c.Display),
			huh.NewSelect[string]().
				Title("Kind").
				Options(
					huh.NewOption("Medication", "med"),
					huh.NewOption("Supplement", "supplement"),
					huh.NewOption("Food", "food"),
				).
				Value(&c.Kind),
			huh.NewInput().
				Title("Tags (comma-separated)").
				Value(&c.Tags),
			huh.NewConfirm().
				Title("Take with food?").
				Value(&c.WithFood),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive form error: %w", err)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("canonical name cannot be empty")
	}
	return nil
}

type CatalogDeactivateCmd struct {
	Name string `arg:"" help:"Canonical name of a profile, or a rule key with --rule."`
	Rule bool   `help:"Deactivate an interaction rule instead of a profile."`
}

func (c *CatalogDeactivateCmd) Run(ctx *Context) error {
	ctx.PerformAutomaticBackup()
	if c.Rule {
		if err := ctx.Store.DeactivateRule(c.Name); err != nil {
			return err
		}
		fmt.Printf("Deactivated rule: %s\n", c.Name)
		return nil
	}
	if err := ctx.Store.DeactivateProfile(c.Name); err != nil {
		return err
	}
	fmt.Printf("Deactivated profile: %s\n", c.Name)
	return nil
}

type CatalogRulesCmd struct {
	Key string `arg:"" optional:"" help:"Show every stored version of one rule key."`
}

func (c *CatalogRulesCmd) Run(ctx *Context) error {
	if c.Key != "" {
		return c.showVersions(ctx)
	}

	rules, err := ctx.Store.GetActiveRules()
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		fmt.Println("No active interaction rules.")
		return nil
	}

	sort.Slice(rules, func(i, j int) bool {
		return rules[i].RuleKey < rules[j].RuleKey
	})

	fmt.Printf("%-32s %-8s %-6s %s\n", "RULE", "SEVERITY", "CONF", "CONSTRAINT")
	for _, r := range rules {
		constraintType := "malformed"
		if r.Constraint != nil {
			constraintType = string(r.Constraint.ConstraintType())
		}
		fmt.Printf("%-32s %-8s %-6d %s\n", r.RuleKey, r.Severity, r.Confidence, constraintType)
	}
	return nil
}

func (c *CatalogRulesCmd) showVersions(ctx *Context) error {
	versions, err := ctx.Store.GetRuleVersions(c.Key)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Printf("No stored versions for rule %q.\n", c.Key)
		return nil
	}

	fmt.Printf("%-8s %-8s %-8s %-6s %s\n", "VERSION", "ACTIVE", "SEVERITY", "CONF", "CONSTRAINT")
	for _, r := range versions {
		constraintType := "malformed"
		if r.Constraint != nil {
			constraintType = string(r.Constraint.ConstraintType())
		}
		fmt.Printf("%-8d %-8v %-8s %-6d %s\n", r.Version, r.Active, r.Severity, r.Confidence, constraintType)
	}
	return nil
}

// catalogFile is the import/export document format.
type catalogFile struct {
	Profiles []models.ItemProfile     `json:"profiles"`
	Rules    []models.InteractionRule `json:"rules"`
}

type CatalogExportCmd struct {
	Path string `arg:"" help:"Destination JSON file."`
}

func (c *CatalogExportCmd) Run(ctx *Context) error {
	profiles, err := ctx.Store.GetActiveProfiles()
	if err != nil {
		return err
	}
	rules, err := ctx.Store.GetActiveRules()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(catalogFile{Profiles: profiles, Rules: rules}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(c.Path, data, 0600); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}

	fmt.Printf("Exported %d profiles and %d rules to %s\n", len(profiles), len(rules), c.Path)
	return nil
}

type CatalogImportCmd struct {
	Path string `arg:"" help:"Source JSON file."`
}

func (c *CatalogImportCmd) Run(ctx *Context) error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc catalogFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse catalog file: %w", err)
	}

	// Reject rule payloads that fail structural validation; malformed
	// constraints inside otherwise valid rules are tolerated downstream.
	validator := validation.New()
	if result := validator.ValidateRules(doc.Rules); result.HasConflicts() {
		fmt.Fprint(os.Stderr, result.FormatReport())
		return fmt.Errorf("catalog file failed validation")
	}

	ctx.PerformAutomaticBackup()
	for _, p := range doc.Profiles {
		if err := ctx.Store.PutProfile(p); err != nil {
			return fmt.Errorf("failed to import profile %s: %w", p.CanonicalName, err)
		}
	}
	for _, r := range doc.Rules {
		if err := ctx.Store.PutRule(r); err != nil {
			return fmt.Errorf("failed to import rule %s: %w", r.RuleKey, err)
		}
	}

	// Recompute the fingerprint over the resulting catalog.
	profiles, err := ctx.Store.GetActiveProfiles()
	if err != nil {
		return err
	}
	rules, err := ctx.Store.GetActiveRules()
	if err != nil {
		return err
	}
	fingerprint, err := catalog.Fingerprint(profiles, rules)
	if err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	settings.CatalogFingerprint = fingerprint
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return err
	}

	fmt.Printf("Imported %d profiles and %d rules from %s\n", len(doc.Profiles), len(doc.Rules), c.Path)
	return nil
}
