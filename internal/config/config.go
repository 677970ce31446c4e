package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings" // strings splits list-valued variables
	"time"    // reminder schedule
)

// Fallback signing secrets used when JWT_SECRET / JWT_REFRESH_SECRET are not
// set.  They are public knowledge, so any deployment running with them must
// be treated as insecure; cmd/server logs a warning when they are in effect.
const (
	DefaultAccessSecret  = "change-me-in-production"
	DefaultRefreshSecret = "refresh-change-me"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	APIPrefix string // path prefix every API route is mounted under
	LogLevel  string // zap level name (debug, info, warn, error)

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	AccessSecret  string // secret used to sign access tokens
	RefreshSecret string // distinct secret used to sign refresh tokens
	BcryptCost    int    // bcrypt cost for password hashing

	CORSOrigins []string // allowed browser origins
	CRMURL      string   // public base URL of the CRM, used in notification links
	UploadDir   string   // directory uploaded documents are written to
	RabbitURL   string   // AMQP URL; empty means notifications are sent inline

	SMTP     SMTPConfig     // outgoing mail settings
	Company  CompanyConfig  // business identity used in notifications
	Pipeline PipelineConfig // lead pipeline stages
	Reminder ReminderConfig // task reminder mail
}

// SMTPConfig describes the outgoing mail server.  An empty Host disables
// delivery and notifications are written to the log instead.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// ReminderConfig schedules task reminder mail.  A zero Interval disables it.
type ReminderConfig struct {
	Interval time.Duration // REMINDER_INTERVAL, how often due tasks are checked
	Lead     time.Duration // REMINDER_LEAD_TIME, how far ahead of the due date to remind
}

// CompanyConfig names the business the CRM belongs to.
type CompanyConfig struct {
	Name  string
	Email string
}

// Load reads configuration values from environment variables and returns a
// Config.  Database coordinates are required; everything else has a default.
func Load() Config {
	cfg := Config{
		Env:       getenv("APP_ENV", "dev"),
		Port:      getenv("APP_PORT", "3001"),
		APIPrefix: strings.TrimRight(envStr("API_PREFIX", "/api"), "/"),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: getenv("DB_PORT", "3306"),
		DBName: must("DB_NAME"),

		AccessSecret:  getenv("JWT_SECRET", DefaultAccessSecret),
		RefreshSecret: getenv("JWT_REFRESH_SECRET", DefaultRefreshSecret),
		BcryptCost:    envInt("BCRYPT_COST", 12),

		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		CRMURL:      strings.TrimRight(getenv("CRM_URL", "http://localhost:5174"), "/"),
		UploadDir:   getenv("UPLOAD_DIR", "uploads"),
		RabbitURL:   os.Getenv("RABBITMQ_URL"),

		SMTP: SMTPConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: getenv("SMTP_PORT", "587"),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: os.Getenv("SMTP_FROM"),
		},
		Company: CompanyConfig{
			Name:  getenv("COMPANY_NAME", "Western Mass Septic"),
			Email: getenv("COMPANY_EMAIL", "office@westernmassseptic.com"),
		},
		Pipeline: LoadPipelineConfig(),
		Reminder: ReminderConfig{
			Interval: envDur("REMINDER_INTERVAL", 15*time.Minute),
			Lead:     envDur("REMINDER_LEAD_TIME", 24*time.Hour),
		},
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		log.Fatalf("invalid BCRYPT_COST: %d", cfg.BcryptCost)
	}
	return cfg
}

// InsecureSecrets reports whether either signing secret is still the
// built-in fallback.
func (c Config) InsecureSecrets() bool {
	return c.AccessSecret == DefaultAccessSecret || c.RefreshSecret == DefaultRefreshSecret
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
