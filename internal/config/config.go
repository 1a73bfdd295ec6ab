// Package config holds the application's root configuration, loaded once
// per process from config file, environment, and .env.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	instance *Config
	mu       sync.RWMutex
)

// Config is the root configuration structure for the entire application.
type Config struct {
	Logger       LoggerConfig       `mapstructure:"logger"`
	Credentials  CredentialsConfig  `mapstructure:"credentials"`
	Portal       PortalConfig       `mapstructure:"portal"`
	Applicant    ApplicantConfig    `mapstructure:"applicant"`
	Browser      BrowserConfig      `mapstructure:"browser"`
	Check        CheckConfig        `mapstructure:"check"`
	Registration RegistrationConfig `mapstructure:"registration"`
	Bot          BotConfig          `mapstructure:"bot"`
	Artifacts    ArtifactsConfig    `mapstructure:"artifacts"`
}

// ColorConfig defines the color settings for different log levels.
type ColorConfig struct {
	Debug string `mapstructure:"debug"`
	Info  string `mapstructure:"info"`
	Warn  string `mapstructure:"warn"`
	Error string `mapstructure:"error"`
	Fatal string `mapstructure:"fatal"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level"`
	Format      string      `mapstructure:"format"`
	AddSource   bool        `mapstructure:"add_source"`
	ServiceName string      `mapstructure:"service_name"`
	LogFile     string      `mapstructure:"log_file"`
	MaxSize     int         `mapstructure:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups"`
	MaxAge      int         `mapstructure:"max_age"`
	Compress    bool        `mapstructure:"compress"`
	Colors      ColorConfig `mapstructure:"colors"`
}

// CredentialsConfig is the portal account credential pair. Immutable once
// loaded for a run; sourced from the environment or written by registration.
type CredentialsConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// Empty reports whether no account is configured.
func (c CredentialsConfig) Empty() bool {
	return c.Email == "" || c.Password == ""
}

// PortalConfig holds the upstream portal URLs and the fixed booking targets.
// The portal DOM is not under our control; everything here is assumed, not
// guaranteed, stable.
type PortalConfig struct {
	LoginURL     string `mapstructure:"login_url"`
	DashboardURL string `mapstructure:"dashboard_url"`
	BookingURL   string `mapstructure:"booking_url"`
	RegisterURL  string `mapstructure:"register_url"`

	City        string `mapstructure:"city"`
	VisaType    string `mapstructure:"visa_type"`
	Center      string `mapstructure:"center"`
	Category    string `mapstructure:"category"`
	Subcategory string `mapstructure:"subcategory"`
}

// ApplicantConfig holds the applicant's personal data used to fill forms.
type ApplicantConfig struct {
	FirstName string `mapstructure:"first_name"`
	LastName  string `mapstructure:"last_name"`
	BirthDate string `mapstructure:"birth_date"`
	Passport  string `mapstructure:"passport"`
}

// BrowserConfig holds settings for the driven browser.
type BrowserConfig struct {
	Headless      bool   `mapstructure:"headless"`
	WindowWidth   int    `mapstructure:"window_width"`
	WindowHeight  int    `mapstructure:"window_height"`
	UserAgent     string `mapstructure:"user_agent"`
	ProfilePrefix string `mapstructure:"profile_prefix"`
}

// CheckConfig holds slot-check parameters.
type CheckConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	MaxDates int           `mapstructure:"max_dates"`
}

// RegistrationConfig bounds the registration retry loops per backend.
type RegistrationConfig struct {
	ChromedpRetries   int `mapstructure:"chromedp_retries"`
	PlaywrightRetries int `mapstructure:"playwright_retries"`
}

// BotConfig holds the telegram front end settings.
type BotConfig struct {
	Token    string `mapstructure:"token"`
	UsersDir string `mapstructure:"users_dir"`
	MaxRuns  int64  `mapstructure:"max_runs"`
}

// ArtifactsConfig holds the diagnostic output directory.
type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"`
}

// SetDefaults registers default values so the app can run with a minimal
// config. Secrets (credentials, bot token) intentionally have no default.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "dashkavisa")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "red")

	v.SetDefault("portal.login_url", "https://visa.vfsglobal.com/blr/ru/pol/login")
	v.SetDefault("portal.dashboard_url", "https://visa.vfsglobal.com/blr/ru/pol/dashboard")
	v.SetDefault("portal.booking_url", "https://visa.vfsglobal.com/blr/ru/pol/book-an-appointment")
	v.SetDefault("portal.register_url", "https://visa.vfsglobal.com/blr/ru/pol/register")
	v.SetDefault("portal.city", "Минск")
	v.SetDefault("portal.visa_type", "Шенген виза")
	v.SetDefault("portal.center", "Poland Visa Application Center-Minsk")
	v.SetDefault("portal.category", "National Visa D")
	v.SetDefault("portal.subcategory", "Praca - Oswiadczenie")

	v.SetDefault("applicant.birth_date", "06.09.1957")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("browser.profile_prefix", "chrome_profile_")

	v.SetDefault("check.interval", 60*time.Minute)
	v.SetDefault("check.max_dates", 5)

	v.SetDefault("registration.chromedp_retries", 2)
	v.SetDefault("registration.playwright_retries", 2)

	v.SetDefault("bot.users_dir", "users")
	v.SetDefault("bot.max_runs", 3)

	v.SetDefault("artifacts.dir", "logs/screenshots")
}

// BindEnvironment wires the VISA_* environment variables into viper and
// loads a .env file from the working directory if one exists.
func BindEnvironment(v *viper.Viper) {
	// Best effort; a missing .env is the normal case outside development.
	_ = godotenv.Load()

	v.SetEnvPrefix("VISA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit bindings for the variables the original deployment used.
	_ = v.BindEnv("credentials.email", "VFS_EMAIL", "VISA_CREDENTIALS_EMAIL")
	_ = v.BindEnv("credentials.password", "VFS_PASSWORD", "VISA_CREDENTIALS_PASSWORD")
	_ = v.BindEnv("portal.city", "CITY", "VISA_PORTAL_CITY")
	_ = v.BindEnv("portal.visa_type", "VISA_TYPE", "VISA_PORTAL_VISA_TYPE")
	_ = v.BindEnv("check.interval", "CHECK_INTERVAL", "VISA_CHECK_INTERVAL")
	_ = v.BindEnv("check.max_dates", "MAX_DATES_TO_SHOW", "VISA_CHECK_MAX_DATES")
	_ = v.BindEnv("applicant.birth_date", "USER_BIRTH_DATE", "VISA_APPLICANT_BIRTH_DATE")
	_ = v.BindEnv("bot.token", "TELEGRAM_BOT_TOKEN", "VISA_BOT_TOKEN")
}

// Validate checks the loaded configuration for values the automation cannot
// run without.
func (c *Config) Validate() error {
	if c.Portal.LoginURL == "" || c.Portal.BookingURL == "" {
		return fmt.Errorf("portal URLs are required configuration fields")
	}
	if c.Check.Interval <= 0 {
		return fmt.Errorf("check.interval must be positive")
	}
	if c.Check.MaxDates <= 0 {
		return fmt.Errorf("check.max_dates must be a positive integer")
	}
	if c.Registration.ChromedpRetries < 0 || c.Registration.PlaywrightRetries < 0 {
		return fmt.Errorf("registration retry counts must not be negative")
	}
	return nil
}

// Load unmarshals the configuration from Viper and stores it as the
// process-wide instance.
func Load(v *viper.Viper) error {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	mu.Lock()
	instance = &cfg
	mu.Unlock()
	return nil
}

// Set replaces the process-wide instance. Intended for tests and for the
// root command after flag overrides.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}

// Get returns the loaded configuration instance.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("configuration not initialized; call config.Load() in the root command")
	}
	return instance
}
