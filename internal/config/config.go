package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"VERSION" default:"dev"`

	// DatabaseURL connects as the application role, subject to row-level
	// security. ServiceDatabaseURL connects as the service role that
	// bypasses RLS; it defaults to DatabaseURL when unset.
	DatabaseURL        string `envconfig:"DATABASE_URL" required:"true"`
	ServiceDatabaseURL string `envconfig:"SERVICE_DATABASE_URL" default:""`

	// SessionSecret is the HMAC key the auth provider signs session
	// tokens with. Must be at least 32 characters.
	SessionSecret string `envconfig:"SESSION_SECRET" required:"true"`

	// LoginHookSecretHash is the bcrypt hash of the shared secret the
	// auth provider presents on the login-completed webhook.
	LoginHookSecretHash string `envconfig:"LOGIN_HOOK_SECRET_HASH" required:"true"`

	// PrimaryOwnerEmail identifies the account that owns the dashboard
	// data and may manage access grants.
	PrimaryOwnerEmail string `envconfig:"PRIMARY_OWNER_EMAIL" required:"true"`

	// ApprovedEmails is the static allow-list, comma separated.
	// ApprovedEmailsFile optionally points at a YAML file whose entries
	// are merged into the list.
	ApprovedEmails     []string `envconfig:"APPROVED_EMAILS" default:""`
	ApprovedEmailsFile string   `envconfig:"APPROVED_EMAILS_FILE" default:""`

	// RedisURL enables the approval-check cache when set.
	RedisURL string `envconfig:"REDIS_URL" default:""`
}

// approvedEmailsFile is the on-disk shape of APPROVED_EMAILS_FILE.
type approvedEmailsFile struct {
	Emails []string `yaml:"emails"`
}

// Load reads configuration from environment variables into a Config struct
// and merges the optional allow-list file.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}

	if cfg.ServiceDatabaseURL == "" {
		cfg.ServiceDatabaseURL = cfg.DatabaseURL
	}

	if cfg.ApprovedEmailsFile != "" {
		fromFile, err := loadApprovedEmailsFile(cfg.ApprovedEmailsFile)
		if err != nil {
			return nil, fmt.Errorf("loading approved emails file: %w", err)
		}
		cfg.ApprovedEmails = append(cfg.ApprovedEmails, fromFile...)
	}

	cfg.ApprovedEmails = normalizeEmails(cfg.ApprovedEmails)
	cfg.PrimaryOwnerEmail = strings.ToLower(strings.TrimSpace(cfg.PrimaryOwnerEmail))

	return &cfg, nil
}

func loadApprovedEmailsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f approvedEmailsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return f.Emails, nil
}

// normalizeEmails lower-cases, trims, and de-duplicates the list,
// dropping empty entries left by an unset env var.
func normalizeEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}
