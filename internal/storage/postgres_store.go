package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dosewise/dosewise/internal/constants"
	"github.com/dosewise/dosewise/internal/logger"
	"github.com/dosewise/dosewise/internal/migration"
	"github.com/dosewise/dosewise/internal/models"
)

var (
	// ErrInvalidConnectionString is returned for malformed connection strings
	ErrInvalidConnectionString = errors.New("invalid connection string")
	// ErrEmbeddedCredentials is returned when a connection string carries a password
	ErrEmbeddedCredentials = errors.New("connection string must not contain a password")
)

type PostgresStore struct {
	connStr string
	db      *sql.DB
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		connStr: connStr,
	}
}

// HasEmbeddedCredentials reports whether the connection string carries a
// password inline. Passwords belong in the OS keyring or a .pgpass file,
// never on the command line.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		_, isSet := parsedURL.User.Password()
		return isSet
	}

	for _, pair := range strings.Fields(connStr) {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 && strings.ToLower(strings.TrimSpace(parts[0])) == "password" {
			return true
		}
	}

	return false
}

// ValidateConnString checks that a connection string is a valid PostgreSQL
// connection string (URI or DSN) without an embedded password.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	_, err := pq.NewConnector(connStr)
	if err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if HasEmbeddedCredentials(connStr) {
		return false, ErrEmbeddedCredentials
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	}

	return true, nil
}

func (s *PostgresStore) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

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

func (s *PostgresStore) Load() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	runner := migration.NewRunner(s.db, postgresMigrations(), migration.DialectPostgres)
	return runner.ValidateVersion()
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) runMigrations() error {
	runner := migration.NewRunner(s.db, postgresMigrations(), migration.DialectPostgres)
	_, err := runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg)
	})
	return err
}

func (s *PostgresStore) GetSettings() (Settings, error) {
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

func (s *PostgresStore) SaveSettings(settings Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`)
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

func (s *PostgresStore) GetProfile(canonicalName string) (models.ItemProfile, error) {
	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM profiles WHERE canonical_name = $1", canonicalName,
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

func (s *PostgresStore) GetActiveProfiles() ([]models.ItemProfile, error) {
	rows, err := s.db.Query("SELECT payload FROM profiles WHERE is_active = TRUE ORDER BY canonical_name")
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

func (s *PostgresStore) PutProfile(profile models.ItemProfile) error {
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

	_, err = s.db.Exec(`
		INSERT INTO profiles (canonical_name, payload, is_active, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (canonical_name) DO UPDATE SET
			payload = excluded.payload,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		profile.CanonicalName, string(payload), profile.Active, nowRFC3339())
	return err
}

func (s *PostgresStore) DeactivateProfile(canonicalName string) error {
	result, err := s.db.Exec(
		"UPDATE profiles SET is_active = FALSE, updated_at = $1 WHERE canonical_name = $2 AND is_active = TRUE",
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

func (s *PostgresStore) GetActiveRules() ([]models.InteractionRule, error) {
	rules, err := s.scanRules("SELECT payload FROM rules WHERE is_active = TRUE ORDER BY rule_key, version")
	if err != nil {
		return nil, err
	}
	return latestActiveRules(rules), nil
}

func (s *PostgresStore) GetRuleVersions(ruleKey string) ([]models.InteractionRule, error) {
	return s.scanRules("SELECT payload FROM rules WHERE rule_key = $1 ORDER BY version", ruleKey)
}

func (s *PostgresStore) scanRules(query string, args ...interface{}) ([]models.InteractionRule, error) {
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

func (s *PostgresStore) PutRule(rule models.InteractionRule) error {
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

	_, err = s.db.Exec(`
		INSERT INTO rules (id, rule_key, version, payload, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (rule_key, version) DO UPDATE SET
			payload = excluded.payload,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		rule.ID, rule.RuleKey, rule.Version, string(payload), rule.Active, nowRFC3339())
	return err
}

func (s *PostgresStore) DeactivateRule(ruleKey string) error {
	result, err := s.db.Exec(
		"UPDATE rules SET is_active = FALSE, updated_at = $1 WHERE rule_key = $2 AND is_active = TRUE",
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

func (s *PostgresStore) SaveSchedule(output models.ScheduleOutput) error {
	payload, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("failed to encode schedule for %s: %w", output.Date, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO schedules (date, payload, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		output.Date, string(payload), nowRFC3339())
	return err
}

func (s *PostgresStore) GetSchedule(date string) (models.ScheduleOutput, error) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM schedules WHERE date = $1", date).Scan(&payload)
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

func (s *PostgresStore) GetConfigPath() string {
	return s.connStr
}
