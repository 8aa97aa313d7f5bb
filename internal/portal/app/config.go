package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"

	IdentityLocal  = "local"
	IdentityGoTrue = "gotrue"

	EmailLog     = "log"
	EmailSMTP    = "smtp"
	EmailEmailJS = "emailjs"
)

type Config struct {
	Env                  string        `env:"ENV"                   envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                 int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	PortalURL            string `env:"PORTAL_URL"             envDefault:"http://localhost:3000"`
	SiteName             string `env:"SITE_NAME"              envDefault:"Grace Church"`
	NotifyOnRegistration bool   `env:"NOTIFY_ON_REGISTRATION" envDefault:"false"`

	Database DatabaseConfig
	Identity IdentityConfig
	Email    EmailConfig
	Admin    AdminConfig
}

type DatabaseConfig struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	File   string `env:"DATABASE_FILE"   envDefault:"portal.db"`
	URL    string `env:"DATABASE_URL"`
}

type IdentityConfig struct {
	Driver      string `env:"IDENTITY_DRIVER"       envDefault:"local"`
	URL         string `env:"IDENTITY_URL"`
	ServiceKey  string `env:"IDENTITY_SERVICE_KEY"`
	PublicKey   string `env:"IDENTITY_PUBLIC_KEY"`
	Issuer      string `env:"IDENTITY_ISSUER"       envDefault:"portal-local"`
	AutoConfirm bool   `env:"IDENTITY_AUTO_CONFIRM" envDefault:"false"`
	PepperFile  string `env:"PEPPER_FILE"           envDefault:"pepper"`
}

type EmailConfig struct {
	Driver     string `env:"EMAIL_DRIVER"      envDefault:"log"`
	ServiceID  string `env:"EMAIL_SERVICE_ID"`
	TemplateID string `env:"EMAIL_TEMPLATE_ID"`
	PublicKey  string `env:"EMAIL_PUBLIC_KEY"`
	PrivateKey string `env:"EMAIL_PRIVATE_KEY"`
	APIURL     string `env:"EMAIL_API_URL"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM"`

	MaxPerMinute int           `env:"EMAIL_MAX_PER_MINUTE" envDefault:"3"`
	MaxPerHour   int           `env:"EMAIL_MAX_PER_HOUR"   envDefault:"30"`
	Cooldown     time.Duration `env:"EMAIL_COOLDOWN"       envDefault:"1h"`
	SharedWindow bool          `env:"EMAIL_SHARED_WINDOW"  envDefault:"true"`
	LogCapacity  int           `env:"EMAIL_LOG_CAPACITY"   envDefault:"100"`
	LogRetention time.Duration `env:"EMAIL_LOG_RETENTION"  envDefault:"720h"`
}

type AdminConfig struct {
	Emails           []string `env:"ADMIN_EMAILS"             envSeparator:","`
	LocalPartMarkers []string `env:"ADMIN_LOCAL_PART_MARKERS" envSeparator:"," envDefault:"admin"`
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects inconsistent driver combinations and non-positive limits.
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Database.Driver {
	case DatabaseSQLite:
		if c.Database.File == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite driver"))
		}
	case DatabasePostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver))
	}

	switch c.Identity.Driver {
	case IdentityLocal:
	case IdentityGoTrue:
		if c.Identity.URL == "" || c.Identity.ServiceKey == "" || c.Identity.PublicKey == "" {
			errs = append(errs, errors.New("IDENTITY_URL, IDENTITY_SERVICE_KEY and IDENTITY_PUBLIC_KEY are required for the gotrue driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IDENTITY_DRIVER %q", c.Identity.Driver))
	}

	switch c.Email.Driver {
	case EmailLog:
	case EmailSMTP:
		if c.Email.SMTPHost == "" || c.Email.SMTPFrom == "" {
			errs = append(errs, errors.New("SMTP_HOST and SMTP_FROM are required for the smtp driver"))
		}
	case EmailEmailJS:
		if c.Email.ServiceID == "" || c.Email.TemplateID == "" || c.Email.PublicKey == "" {
			errs = append(errs, errors.New("EMAIL_SERVICE_ID, EMAIL_TEMPLATE_ID and EMAIL_PUBLIC_KEY are required for the emailjs driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_DRIVER %q", c.Email.Driver))
	}

	if c.Email.MaxPerMinute <= 0 || c.Email.MaxPerHour <= 0 {
		errs = append(errs, errors.New("EMAIL_MAX_PER_MINUTE and EMAIL_MAX_PER_HOUR must be positive"))
	}
	if c.Email.Cooldown <= 0 {
		errs = append(errs, errors.New("EMAIL_COOLDOWN must be positive"))
	}

	return errors.Join(errs...)
}
