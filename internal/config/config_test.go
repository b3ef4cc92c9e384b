package config

import (
	"strings"
	"testing"
)

const validConfig = `app:
  name: "leaguekeeper"
  environment: "development"
  port: 8080
  timezone: "America/New_York"

database:
  driver: "sqlite"
  filename: "data/leagues.db"
`

func TestParseFillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Jobs.StandingsCron != defaultStandingsCron {
		t.Fatalf("expected default standings cron, got %q", cfg.Jobs.StandingsCron)
	}
	if cfg.Events.SubjectPrefix != defaultSubjectPrefix {
		t.Fatalf("expected default subject prefix, got %q", cfg.Events.SubjectPrefix)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Fatalf("unexpected location %s", cfg.Location())
	}
	if cfg.ShutdownTimeoutDuration().Seconds() != 30 {
		t.Fatalf("expected 30s shutdown timeout, got %s", cfg.ShutdownTimeoutDuration())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing name", func(c *Config) { c.App.Name = "" }, "app name is required"},
		{"missing port", func(c *Config) { c.App.Port = 0 }, "app port is required"},
		{"bad timezone", func(c *Config) { c.App.Timezone = "Mars/Olympus" }, "invalid app timezone"},
		{"bad driver", func(c *Config) { c.Database.Driver = "mongo" }, "unsupported database driver"},
		{"missing filename", func(c *Config) { c.Database.Filename = "" }, "database filename is required"},
		{"bad standings cron", func(c *Config) { c.Jobs.StandingsCron = "every minute" }, "invalid jobs.standings_cron"},
		{"bad reminders cron", func(c *Config) { c.Jobs.RemindersCron = "61 * * * *" }, "invalid jobs.reminders_cron"},
		{"ses without sender", func(c *Config) {
			c.Email.AccessKeyID = "id"
			c.Email.SecretAccessKey = "secret"
			c.Email.Region = "us-east-1"
		}, "email sender is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(validConfig))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
