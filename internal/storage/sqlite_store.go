package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dosewise/dosewise/internal/constants"
	"github.com/dosewise/dosewise/internal/logger"
	"github.com/dosewise/dosewise/internal/migration"
	"github.com/dosewise/dosewise/internal/models"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Seed default settings on first init only.
	if _, err := s.GetSettings(); err != nil {
		defaults := Settings{
			WakeTime: constants.DefaultWakeTime,
		}
		if err := s.SaveSettings(defaults); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	runner := migration.NewRunner(s.db, sqliteMigrations(), migration.DialectSQLite)
	return runner.ValidateVersion()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) runMigrations() error {
	runner := migration.NewRunner(s.db, sqliteMigrations(), migration.DialectSQLite)
	_, err := runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg)
	})
	return err
}

func (s *SQLiteStore) GetSettings() (Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	settings := Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case "wake_time":
			settings.WakeTime = value
		case "breakfast":
			settings.Meals.Breakfast = value
		case "lunch":
			settings.Meals.Lunch = value
		case "dinner":
			settings.Meals.Dinner = value
		case "catalog_fingerprint":
			settings.CatalogFingerprint = value
		}
		count++
	}

	if count == 0 {
		return Settings{}, fmt.Errorf("settings not found")
	}

	return settings, rows.Err()
}

func (s *SQLiteStore) SaveSettings(settings Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	pairs := [][2]string{
		{"wake_time", settings.WakeTime},
		{"breakfast", settings.Meals.Breakfast},
		{"lunch", settings.Meals.Lunch},
		{"dinner", settings.Meals.Dinner},
		{"catalog_fingerprint", settings.CatalogFingerprint},
	}
	for _, p := range pairs {
		if _, err := stmt.Exec(p[0], p[1]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetProfile(canonicalName string) (models.ItemProfile, error) {
	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM profiles WHERE canonical_name = ?", canonicalName,
	).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ItemProfile{}, fmt.Errorf("profile %s: %w", canonicalName, ErrNotFound)
		}
		return models.ItemProfile{}, err
	}

	var profile models.ItemProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return models.ItemProfile{}, fmt.Errorf("failed to decode profile %s: %w", canonicalName, err)
	}
	return profile, nil
}

func (s *SQLiteStore) GetActiveProfiles() ([]models.ItemProfile, error) {
	rows, err := s.db.Query("SELECT payload FROM profiles WHERE is_active = 1 ORDER BY canonical_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.ItemProfile
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var profile models.ItemProfile
		if err := json.Unmarshal([]byte(payload), &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}

func (s *SQLiteStore) PutProfile(profile models.ItemProfile) error {
	if profile.CanonicalName == "" {
		return fmt.Errorf("profile canonical name cannot be empty")
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", profile.CanonicalName, err)
	}

	active := 0
	if profile.Active {
		active = 1
	}

	_, err = s.db.Exec(`
		INSERT INTO profiles (canonical_name, payload, is_active, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(canonical_name) DO UPDATE SET
			payload = excluded.payload,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		profile.CanonicalName, string(payload), active, nowRFC3339())
	return err
}

func (s *SQLiteStore) DeactivateProfile(canonicalName string) error {
	result, err := s.db.Exec(
		"UPDATE profiles SET is_active = 0, updated_at = ? WHERE canonical_name = ? AND is_active = 1",
		nowRFC3339(), canonicalName)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("profile %s: %w", canonicalName, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) GetActiveRules() ([]models.InteractionRule, error) {
	rules, err := s.scanRules("SELECT payload FROM rules WHERE is_active = 1 ORDER BY rule_key, version")
	if err != nil {
		return nil, err
	}
	return latestActiveRules(rules), nil
}

func (s *SQLiteStore) GetRuleVersions(ruleKey string) ([]models.InteractionRule, error) {
	return s.scanRules("SELECT payload FROM rules WHERE rule_key = ? ORDER BY version", ruleKey)
}

func (s *SQLiteStore) scanRules(query string, args ...interface{}) ([]models.InteractionRule, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.InteractionRule
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rule models.InteractionRule
		if err := json.Unmarshal([]byte(payload), &rule); err != nil {
			return nil, fmt.Errorf("failed to decode rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func (s *SQLiteStore) PutRule(rule models.InteractionRule) error {
	if rule.RuleKey == "" {
		return fmt.Errorf("rule key cannot be empty")
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.Version < 1 {
		rule.Version = 1
	}

	payload, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to encode rule %s: %w", rule.RuleKey, err)
	}

	active := 0
	if rule.Active {
		active = 1
	}

	_, err = s.db.Exec(`
		INSERT INTO rules (id, rule_key, version, payload, is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(rule_key, version) DO UPDATE SET
			payload = excluded.payload,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		rule.ID, rule.RuleKey, rule.Version, string(payload), active, nowRFC3339())
	return err
}

func (s *SQLiteStore) DeactivateRule(ruleKey string) error {
	result, err := s.db.Exec(
		"UPDATE rules SET is_active = 0, updated_at = ? WHERE rule_key = ? AND is_active = 1",
		nowRFC3339(), ruleKey)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rule %s: %w", ruleKey, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) SaveSchedule(output models.ScheduleOutput) error {
	payload, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to encode schedule for %s: %w", output.Date, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO schedules (date, payload, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		output.Date, string(payload), nowRFC3339())
	return err
}

func (s *SQLiteStore) GetSchedule(date string) (models.ScheduleOutput, error) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM schedules WHERE date = ?", date).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.ScheduleOutput{}, fmt.Errorf("schedule for %s: %w", date, ErrNotFound)
		}
		return models.ScheduleOutput{}, err
	}

	var output models.ScheduleOutput
	if err := json.Unmarshal([]byte(payload), &output); err != nil {
		return models.ScheduleOutput{}, fmt.Errorf("failed to decode schedule for %s: %w", date, err)
	}
	return output, nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, nil before Init or Load.
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
