// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type EmailConfig struct {
	Region           string `yaml:"region"`
	Sender           string `yaml:"sender"`
	ReplyTo          string `yaml:"reply_to"`
	ConfigurationSet string `yaml:"configuration_set"`
	AccessKeyID      string `yaml:"-"` // Loaded from environment
	SecretAccessKey  string `yaml:"-"` // Loaded from environment
}

// Enabled reports whether SES credentials were provided.
func (e EmailConfig) Enabled() bool {
	return e.AccessKeyID != "" && e.SecretAccessKey != ""
}

type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type JobsConfig struct {
	StandingsCron string `yaml:"standings_cron"`
	RemindersCron string `yaml:"reminders_cron"`
}

type Config struct {
	App struct {
		Name            string `yaml:"name"`
		Environment     string `yaml:"environment"`
		Port            int    `yaml:"port"`
		BaseURL         string `yaml:"base_url"`
		Timezone        string `yaml:"timezone"`
		ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
		TrustProxy      bool   `yaml:"trust_proxy"`
		SecretKey       string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Email    EmailConfig    `yaml:"email"`
	Events   EventsConfig   `yaml:"events"`
	Jobs     JobsConfig     `yaml:"jobs"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"-"` // Loaded from environment
	} `yaml:"admin"`
}

const (
	defaultStandingsCron = "*/10 * * * *"
	defaultRemindersCron = "0 9 * * *"
	defaultSubjectPrefix = "leaguekeeper"
)

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Email.AccessKeyID = os.Getenv("AWS_SES_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SES_SECRET_ACCESS_KEY")
	cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes yaml configuration and fills defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "UTC"
	}
	if cfg.App.ShutdownTimeout == 0 {
		cfg.App.ShutdownTimeout = 30
	}
	if cfg.Jobs.StandingsCron == "" {
		cfg.Jobs.StandingsCron = defaultStandingsCron
	}
	if cfg.Jobs.RemindersCron == "" {
		cfg.Jobs.RemindersCron = defaultRemindersCron
	}
	if cfg.Events.SubjectPrefix == "" {
		cfg.Events.SubjectPrefix = defaultSubjectPrefix
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid app timezone %q: %w", c.App.Timezone, err)
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Email.Enabled() {
		if c.Email.Region == "" {
			return fmt.Errorf("email region is required when SES credentials are set")
		}
		if c.Email.Sender == "" {
			return fmt.Errorf("email sender is required when SES credentials are set")
		}
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Jobs.StandingsCron); err != nil {
		return fmt.Errorf("invalid jobs.standings_cron: %w", err)
	}
	if _, err := parser.Parse(c.Jobs.RemindersCron); err != nil {
		return fmt.Errorf("invalid jobs.reminders_cron: %w", err)
	}

	return nil
}

// Location returns the league timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ShutdownTimeoutDuration returns the graceful shutdown window.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.App.ShutdownTimeout) * time.Second
}
