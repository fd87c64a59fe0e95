package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dosewise/dosewise/internal/constants"
	"github.com/dosewise/dosewise/internal/models"
)

// jsonFile is the on-disk layout of the JSON store.
type jsonFile struct {
	Version   int                              `json:"version"`
	Settings  Settings                         `json:"settings"`
	Profiles  map[string]models.ItemProfile    `json:"profiles"`
	Rules     []models.InteractionRule         `json:"rules"`
	Schedules map[string]models.ScheduleOutput `json:"schedules"`
}

// JSONStore keeps everything in a single JSON file. It is the simplest
// backend and the one used for catalog export and import.
type JSONStore struct {
	path  string
	store *jsonFile
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &jsonFile{
		Version: 1,
		Settings: Settings{
			WakeTime: constants.DefaultWakeTime,
		},
		Profiles:  make(map[string]models.ItemProfile),
		Schedules: make(map[string]models.ScheduleOutput),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	if s.store != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &jsonFile{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.store.Profiles == nil {
		s.store.Profiles = make(map[string]models.ItemProfile)
	}
	if s.store.Schedules == nil {
		s.store.Schedules = make(map[string]models.ScheduleOutput)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage: %w", err)
	}

	// Write atomically via a temp file in the same directory.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *JSONStore) ensureLoaded() error {
	if s.store == nil {
		return s.Load()
	}
	return nil
}

func (s *JSONStore) GetSettings() (Settings, error) {
	if err := s.ensureLoaded(); err != nil {
		return Settings{}, err
	}
	return s.store.Settings, nil
}

func (s *JSONStore) SaveSettings(settings Settings) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.store.Settings = settings
	return s.save()
}

func (s *JSONStore) GetProfile(canonicalName string) (models.ItemProfile, error) {
	if err := s.ensureLoaded(); err != nil {
		return models.ItemProfile{}, err
	}
	profile, ok := s.store.Profiles[canonicalName]
	if !ok {
		return models.ItemProfile{}, fmt.Errorf("profile %s: %w", canonicalName, ErrNotFound)
	}
	return profile, nil
}

func (s *JSONStore) GetActiveProfiles() ([]models.ItemProfile, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	var profiles []models.ItemProfile
	for _, p := range s.store.Profiles {
		if p.Active {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

func (s *JSONStore) PutProfile(profile models.ItemProfile) error {
	if profile.CanonicalName == "" {
		return fmt.Errorf("profile canonical name cannot be empty")
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	s.store.Profiles[profile.CanonicalName] = profile
	return s.save()
}

func (s *JSONStore) DeactivateProfile(canonicalName string) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	profile, ok := s.store.Profiles[canonicalName]
	if !ok || !profile.Active {
		return fmt.Errorf("profile %s: %w", canonicalName, ErrNotFound)
	}
	profile.Active = false
	s.store.Profiles[canonicalName] = profile
	return s.save()
}

func (s *JSONStore) GetActiveRules() ([]models.InteractionRule, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	var active []models.InteractionRule
	for _, r := range s.store.Rules {
		if r.Active {
			active = append(active, r)
		}
	}
	return latestActiveRules(active), nil
}

func (s *JSONStore) GetRuleVersions(ruleKey string) ([]models.InteractionRule, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	var versions []models.InteractionRule
	for _, r := range s.store.Rules {
		if r.RuleKey == ruleKey {
			versions = append(versions, r)
		}
	}
	return versions, nil
}

func (s *JSONStore) PutRule(rule models.InteractionRule) error {
	if rule.RuleKey == "" {
		return fmt.Errorf("rule key cannot be empty")
	}
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.Version < 1 {
		rule.Version = 1
	}

	for i, r := range s.store.Rules {
		if r.RuleKey == rule.RuleKey && r.Version == rule.Version {
			s.store.Rules[i] = rule
			return s.save()
		}
	}
	s.store.Rules = append(s.store.Rules, rule)
	return s.save()
}

func (s *JSONStore) DeactivateRule(ruleKey string) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	deactivated := false
	for i, r := range s.store.Rules {
		if r.RuleKey == ruleKey && r.Active {
			s.store.Rules[i].Active = false
			deactivated = true
		}
	}
	if !deactivated {
		return fmt.Errorf("rule %s: %w", ruleKey, ErrNotFound)
	}
	return s.save()
}

func (s *JSONStore) SaveSchedule(output models.ScheduleOutput) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.store.Schedules[output.Date] = output
	return s.save()
}

func (s *JSONStore) GetSchedule(date string) (models.ScheduleOutput, error) {
	if err := s.ensureLoaded(); err != nil {
		return models.ScheduleOutput{}, err
	}
	output, ok := s.store.Schedules[date]
	if !ok {
		return models.ScheduleOutput{}, fmt.Errorf("schedule for %s: %w", date, ErrNotFound)
	}
	return output, nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
