package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"qbnotes"`
		Port int    `envconfig:"PORT" default:"3000"`
	}

	// DB is optional: with no DATABASE_URL the service runs against the
	// file store alone.
	DB struct {
		URL string `envconfig:"DATABASE_URL"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Slack struct {
		WebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`
	}

	Sheets struct {
		SpreadsheetID   string `envconfig:"GOOGLE_SHEETS_ID"`
		SheetName       string `envconfig:"GOOGLE_SHEET_NAME" default:"QBO Transaction Notes"`
		CredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE"`
	}

	Report struct {
		Timezone  string `envconfig:"REPORT_TIMEZONE" default:"America/Los_Angeles"`
		Schedule  string `envconfig:"REPORT_SCHEDULE"`
		AutoStart bool   `envconfig:"AUTO_START_SCHEDULER" default:"false"`
	}

	Storage struct {
		Dir string `envconfig:"FILE_STORAGE_DIR" default:"/tmp/qbo-notes"`
	}

	Auth struct {
		Required      bool   `envconfig:"AUTH_REQUIRED" default:"false"`
		Bypass        bool   `envconfig:"AUTH_BYPASS" default:"true"`
		SigningSecret string `envconfig:"AUTH_SIGNING_SECRET"`
		TestEmails    string `envconfig:"AUTH_TEST_EMAILS" default:"test@example.com,admin@yourcompany.com"`
	}
}

func (c *Config) HasDatabase() bool {
	return c.DB.URL != ""
}

func (c *Config) TestEmailList() []string {
	var emails []string

	for _, e := range strings.Split(c.Auth.TestEmails, ",") {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, strings.ToLower(e))
		}
	}

	return emails
}

// Location resolves the civil timezone used for all daily-report boundaries.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading report timezone %q: %w", c.Report.Timezone, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
