package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Google service account and the resources it acts on.
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	CalendarID            string `mapstructure:"CALENDAR_ID"`
	SpreadsheetID         string `mapstructure:"SPREADSHEET_ID"`
	IntakeArchiveBucket   string `mapstructure:"INTAKE_ARCHIVE_BUCKET"`
	IntakeArchiveKey      string `mapstructure:"INTAKE_ARCHIVE_KEY"`

	// Presentation.
	LocalTimezone string `mapstructure:"LOCAL_TIMEZONE"`
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`
	StaticDir     string `mapstructure:"STATIC_DIR"`
	TemplateDir   string `mapstructure:"TEMPLATE_DIR"`
	BusinessName  string `mapstructure:"BUSINESS_NAME"`

	// Mail.
	AdminEmail       string `mapstructure:"ADMIN_EMAIL"`
	SenderEmail      string `mapstructure:"SENDER_EMAIL"`
	MailTransport    string `mapstructure:"MAIL_TRANSPORT"`
	SMTPHost         string `mapstructure:"SMTP_HOST"`
	SMTPPassword     string `mapstructure:"SMTP_PASSWORD"`
	SMTPSSLPort      int    `mapstructure:"SMTP_SSL_PORT"`
	SMTPStartTLSPort int    `mapstructure:"SMTP_STARTTLS_PORT"`

	// Background notification work.
	NotifyQueue   string `mapstructure:"NOTIFY_QUEUE"`
	NotifyWorkers int    `mapstructure:"NOTIFY_WORKERS"`
	NotifyBuffer  int    `mapstructure:"NOTIFY_BUFFER"`

	// Redis configuration.
	RedisAddr             string `mapstructure:"REDIS_ADDR"`
	RedisPassword         string `mapstructure:"REDIS_PASSWORD"`
	RedisIdempotencyDB    int    `mapstructure:"REDIS_IDEMPOTENCY_DB"`
	RedisQueueDB          int    `mapstructure:"REDIS_QUEUE_DB"`
	IdempotencyTTLMinutes int    `mapstructure:"IDEMPOTENCY_TTL_MINUTES"`

	// Booking behaviour.
	BookingPostVerify    bool `mapstructure:"BOOKING_POST_VERIFY"`
	AvailableDaysDefault int  `mapstructure:"AVAILABLE_DAYS_DEFAULT"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "key.json")
	v.SetDefault("CALENDAR_ID", "")
	v.SetDefault("SPREADSHEET_ID", "")
	v.SetDefault("INTAKE_ARCHIVE_BUCKET", "")
	v.SetDefault("INTAKE_ARCHIVE_KEY", "")

	v.SetDefault("LOCAL_TIMEZONE", "America/New_York")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("TEMPLATE_DIR", "templates")
	v.SetDefault("BUSINESS_NAME", "Massage Therapy")

	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("SENDER_EMAIL", "")
	v.SetDefault("MAIL_TRANSPORT", "smtp")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_SSL_PORT", 465)
	v.SetDefault("SMTP_STARTTLS_PORT", 587)

	v.SetDefault("NOTIFY_QUEUE", "local")
	v.SetDefault("NOTIFY_WORKERS", 4)
	v.SetDefault("NOTIFY_BUFFER", 64)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_IDEMPOTENCY_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("IDEMPOTENCY_TTL_MINUTES", 24*60)

	v.SetDefault("BOOKING_POST_VERIFY", true)
	v.SetDefault("AVAILABLE_DAYS_DEFAULT", 90)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// AdminAddress is where operator notifications go; it falls back to the sender.
func (c Config) AdminAddress() string {
	if c.AdminEmail != "" {
		return c.AdminEmail
	}
	return c.SenderEmail
}

// Location resolves LOCAL_TIMEZONE, falling back to UTC when it is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.LocalTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IdempotencyTTL is how long a completed booking is replayed for the same key.
func (c Config) IdempotencyTTL() time.Duration {
	if c.IdempotencyTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.IdempotencyTTLMinutes) * time.Minute
}
