package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Verification VerificationConfig
	SMTP         SMTPConfig
	Storage      StorageConfig
	Redis        RedisConfig
	Notification NotificationConfig
}

type AppConfig struct {
	AppName      string
	Environment  string
	HTTPPort     string
	PublicURL    string
	CORSOrigin   string
	SeedDemo     bool
	DemoPassword string
}

type DatabaseConfig struct {
	URL        string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout time.Duration
	PoolMaxConns   int32
	RunMigrations  bool
}

type JWTConfig struct {
	Secret          string
	Issuer          string
	AccessExpiresIn time.Duration
}

type VerificationConfig struct {
	TokenExpiresIn time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Configured reports whether outbound email has a transport.
func (c SMTPConfig) Configured() bool {
	return c.Host != ""
}

type StorageConfig struct {
	CloudName     string
	APIKey        string
	APISecret     string
	LocalDir      string
	PublicBaseURL string
}

func (c StorageConfig) CloudinaryConfigured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type NotificationConfig struct {
	Workers   int
	QueueSize int
}

var (
	errMissingRequiredEnv = errors.New("missing required environment variables")
	errInvalidEnv         = errors.New("invalid environment variables")
)

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment values win.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary key lookup.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{}

	var missing, invalid []string
	opt := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	req := func(key string) string {
		v := opt(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	optInt := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optBool := func(key string, def bool) bool {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optMinutes := func(key string, def int) time.Duration {
		m := optInt(key, def)
		if m <= 0 {
			invalid = append(invalid, key)
			m = def
		}
		return time.Duration(m) * time.Minute
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		PublicURL:   strings.TrimRight(opt("APP_PUBLIC_URL"), "/"),
		CORSOrigin:  opt("CORS_ORIGIN"),
		SeedDemo:    optBool("APP_SEED_DEMO", false),
	}
	if cfg.App.PublicURL == "" && cfg.App.HTTPPort != "" {
		cfg.App.PublicURL = "http://localhost:" + strings.TrimPrefix(cfg.App.HTTPPort, ":")
	}
	if cfg.App.SeedDemo {
		cfg.App.DemoPassword = req("APP_SEED_DEMO_PASSWORD")
	}

	cfg.Database = DatabaseConfig{
		URL:            opt("DATABASE_URL"),
		DBHost:         opt("DB_HOST"),
		DBPort:         opt("DB_PORT"),
		DBName:         opt("DB_NAME"),
		DBUser:         opt("DB_USER"),
		DBPassword:     opt("DB_PASSWORD"),
		DBSSLMode:      opt("DB_SSL_MODE"),
		ConnectTimeout: time.Duration(optInt("DB_CONNECT_TIMEOUT", 5)) * time.Second,
		PoolMaxConns:   int32(optInt("DB_POOL_MAX_CONNS", 0)),
		RunMigrations:  optBool("DB_MIGRATIONS", true),
	}
	if cfg.Database.URL == "" && cfg.Database.DBHost == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWT = JWTConfig{
		Secret:          req("JWT_SECRET"),
		Issuer:          opt("JWT_ISSUER"),
		AccessExpiresIn: optMinutes("ACCESS_TOKEN_EXPIRE_MINUTES", 60),
	}

	cfg.Verification = VerificationConfig{
		TokenExpiresIn: optMinutes("VERIFICATION_TOKEN_EXPIRE_MINUTES", 60),
	}

	cfg.SMTP = SMTPConfig{
		Host:     opt("SMTP_HOST"),
		Port:     optInt("SMTP_PORT", 465),
		User:     opt("SMTP_USER"),
		Password: opt("SMTP_PASSWORD"),
		From:     opt("EMAIL_FROM"),
	}
	if cfg.SMTP.Configured() && cfg.SMTP.From == "" {
		missing = append(missing, "EMAIL_FROM")
	}

	cfg.Storage = StorageConfig{
		CloudName:     opt("CLOUDINARY_CLOUD_NAME"),
		APIKey:        opt("CLOUDINARY_API_KEY"),
		APISecret:     opt("CLOUDINARY_API_SECRET"),
		LocalDir:      opt("STORAGE_LOCAL_DIR"),
		PublicBaseURL: strings.TrimRight(opt("STORAGE_PUBLIC_BASE_URL"), "/"),
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "uploads"
	}

	cfg.Redis = RedisConfig{
		Addr:     opt("REDIS_ADDR"),
		Password: opt("REDIS_PASSWORD"),
		DB:       optInt("REDIS_DB", 0),
		TTL:      time.Duration(optInt("REDIS_TTL_SECONDS", 600)) * time.Second,
	}

	cfg.Notification = NotificationConfig{
		Workers:   optInt("NOTIFY_WORKERS", 2),
		QueueSize: optInt("NOTIFY_QUEUE_SIZE", 256),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errInvalidEnv, strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}
