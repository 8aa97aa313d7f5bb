package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(env.Options{Environment: map[string]string{"ENV": "test"}})
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, DatabaseSQLite, cfg.Database.Driver)
	require.Equal(t, IdentityLocal, cfg.Identity.Driver)
	require.Equal(t, EmailLog, cfg.Email.Driver)
	require.Equal(t, 3, cfg.Email.MaxPerMinute)
	require.Equal(t, 30, cfg.Email.MaxPerHour)
	require.Equal(t, time.Hour, cfg.Email.Cooldown)
	require.True(t, cfg.Email.SharedWindow)
	require.Equal(t, 100, cfg.Email.LogCapacity)
	require.Equal(t, 30*24*time.Hour, cfg.Email.LogRetention)
	require.Equal(t, []string{"admin"}, cfg.Admin.LocalPartMarkers)
	require.Empty(t, cfg.Admin.Emails)
}

func TestParseConfig_Overrides(t *testing.T) {
	cfg, err := parseConfig(env.Options{Environment: map[string]string{
		"PORT":                 "9090",
		"DATABASE_DRIVER":      "postgres",
		"DATABASE_URL":         "postgres://portal@db/portal",
		"EMAIL_MAX_PER_MINUTE": "5",
		"EMAIL_COOLDOWN":       "30m",
		"ADMIN_EMAILS":         "pastor@example.org,office@example.org",
	}})
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, DatabasePostgres, cfg.Database.Driver)
	require.Equal(t, 5, cfg.Email.MaxPerMinute)
	require.Equal(t, 30*time.Minute, cfg.Email.Cooldown)
	require.Equal(t, []string{"pastor@example.org", "office@example.org"}, cfg.Admin.Emails)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres without url", map[string]string{"DATABASE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"unknown database", map[string]string{"DATABASE_DRIVER": "mysql"}, "DATABASE_DRIVER"},
		{"gotrue without keys", map[string]string{"IDENTITY_DRIVER": "gotrue", "IDENTITY_URL": "https://id.example.org"}, "IDENTITY_SERVICE_KEY"},
		{"smtp without host", map[string]string{"EMAIL_DRIVER": "smtp"}, "SMTP_HOST"},
		{"emailjs without ids", map[string]string{"EMAIL_DRIVER": "emailjs"}, "EMAIL_SERVICE_ID"},
		{"zero minute cap", map[string]string{"EMAIL_MAX_PER_MINUTE": "0"}, "EMAIL_MAX_PER_MINUTE"},
		{"bad port", map[string]string{"PORT": "70000"}, "PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig(env.Options{Environment: tt.env})
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("SITE_NAME=St Mark's\nEMAIL_MAX_PER_HOUR=12\n"), 0o600))

	t.Setenv("SITE_NAME", "")
	t.Setenv("EMAIL_MAX_PER_HOUR", "")
	require.NoError(t, os.Unsetenv("SITE_NAME"))
	require.NoError(t, os.Unsetenv("EMAIL_MAX_PER_HOUR"))

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	require.Equal(t, "St Mark's", cfg.SiteName)
	require.Equal(t, 12, cfg.Email.MaxPerHour)
}

func TestLoadConfig_MissingDotenvIsIgnored(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}
