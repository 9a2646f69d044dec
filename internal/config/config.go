package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Uploads   UploadConfig
	Workflow  WorkflowConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
	UI        UIConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MigrationsPath string        `mapstructure:"migrations_path"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds object storage settings. Each document domain has its own bucket.
type S3Config struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKey       string `mapstructure:"access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	KYCBucket       string `mapstructure:"kyc_bucket"`
	FinancialBucket string `mapstructure:"financial_bucket"`
	InvoiceBucket   string `mapstructure:"invoice_bucket"`
	PresignExpiry   int64  `mapstructure:"presign_expiry"`
	SignConcurrency int    `mapstructure:"sign_concurrency"`
}

// UploadConfig holds per-domain upload limits.
type UploadConfig struct {
	KYCMaxBytes       int64    `mapstructure:"kyc_max_bytes"`
	FinancialMaxBytes int64    `mapstructure:"financial_max_bytes"`
	CacheControl      string   `mapstructure:"cache_control"`
	AllowedYears      []string `mapstructure:"allowed_years"`
}

// WorkflowConfig holds confirmation gate settings.
type WorkflowConfig struct {
	ConfirmTTL       time.Duration `mapstructure:"confirm_ttl"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// RedisConfig holds Redis connection settings. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RateLimitConfig holds login throttling settings.
type RateLimitConfig struct {
	LoginPerMinute int `mapstructure:"login_per_minute"`
	LoginBurst     int `mapstructure:"login_burst"`
}

// UIConfig holds hints returned to the client.
type UIConfig struct {
	NoticeMS int64 `mapstructure:"notice_ms"`
}

// Load reads configuration from environment variables with the PORTAL_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "portal")
	v.SetDefault("db.password", "portal_secret")
	v.SetDefault("db.name", "portal_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.max_lifetime", "30m")
	v.SetDefault("db.max_idle_time", "5m")
	v.SetDefault("db.migrations_path", "db/migrations")

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "clientportal")

	// S3 defaults
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.kyc_bucket", "kyc-documents")
	v.SetDefault("s3.financial_bucket", "financial-documents")
	v.SetDefault("s3.invoice_bucket", "private-invoices")
	v.SetDefault("s3.presign_expiry", 3600)
	v.SetDefault("s3.sign_concurrency", 8)

	// Upload defaults
	v.SetDefault("uploads.kyc_max_bytes", 5*1024*1024)
	v.SetDefault("uploads.financial_max_bytes", 10*1024*1024)
	v.SetDefault("uploads.cache_control", "3600")
	v.SetDefault("uploads.allowed_years", "2023,2024,2025")

	// Workflow defaults
	v.SetDefault("workflow.confirm_ttl", "10m")
	v.SetDefault("workflow.sweep_interval", "1m")
	v.SetDefault("workflow.operation_timeout", "60s")

	// Redis defaults (empty URL = in-process broker and revocation list)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-central-1")
	v.SetDefault("email.from_address", "noreply@clientportal.local")
	v.SetDefault("email.from_name", "Client Portal")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Rate limit defaults
	v.SetDefault("ratelimit.login_per_minute", 10)
	v.SetDefault("ratelimit.login_burst", 5)

	// UI defaults
	v.SetDefault("ui.notice_ms", 5000)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "PORTAL_SERVER_PORT",
		"server.read_timeout":         "PORTAL_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "PORTAL_SERVER_WRITE_TIMEOUT",
		"server.environment":          "PORTAL_SERVER_ENVIRONMENT",
		"db.host":                     "PORTAL_DB_HOST",
		"db.port":                     "PORTAL_DB_PORT",
		"db.user":                     "PORTAL_DB_USER",
		"db.password":                 "PORTAL_DB_PASSWORD",
		"db.name":                     "PORTAL_DB_NAME",
		"db.sslmode":                  "PORTAL_DB_SSLMODE",
		"db.max_open":                 "PORTAL_DB_MAX_OPEN",
		"db.max_idle":                 "PORTAL_DB_MAX_IDLE",
		"db.max_lifetime":             "PORTAL_DB_MAX_LIFETIME",
		"db.max_idle_time":            "PORTAL_DB_MAX_IDLE_TIME",
		"db.migrations_path":          "PORTAL_DB_MIGRATIONS_PATH",
		"jwt.secret":                  "PORTAL_JWT_SECRET",
		"jwt.access_expiry":           "PORTAL_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":          "PORTAL_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                  "PORTAL_JWT_ISSUER",
		"s3.region":                   "PORTAL_S3_REGION",
		"s3.endpoint":                 "PORTAL_S3_ENDPOINT",
		"s3.access_key":               "PORTAL_S3_ACCESS_KEY",
		"s3.secret_key":               "PORTAL_S3_SECRET_KEY",
		"s3.kyc_bucket":               "PORTAL_S3_KYC_BUCKET",
		"s3.financial_bucket":         "PORTAL_S3_FINANCIAL_BUCKET",
		"s3.invoice_bucket":           "PORTAL_S3_INVOICE_BUCKET",
		"s3.presign_expiry":           "PORTAL_S3_PRESIGN_EXPIRY",
		"s3.sign_concurrency":         "PORTAL_S3_SIGN_CONCURRENCY",
		"uploads.kyc_max_bytes":       "PORTAL_UPLOADS_KYC_MAX_BYTES",
		"uploads.financial_max_bytes": "PORTAL_UPLOADS_FINANCIAL_MAX_BYTES",
		"uploads.cache_control":       "PORTAL_UPLOADS_CACHE_CONTROL",
		"uploads.allowed_years":       "PORTAL_UPLOADS_ALLOWED_YEARS",
		"workflow.confirm_ttl":        "PORTAL_WORKFLOW_CONFIRM_TTL",
		"workflow.sweep_interval":     "PORTAL_WORKFLOW_SWEEP_INTERVAL",
		"workflow.operation_timeout":  "PORTAL_WORKFLOW_OPERATION_TIMEOUT",
		"redis.url":                   "PORTAL_REDIS_URL",
		"redis.pool_size":             "PORTAL_REDIS_POOL_SIZE",
		"redis.min_idle_conns":        "PORTAL_REDIS_MIN_IDLE_CONNS",
		"redis.dial_timeout":          "PORTAL_REDIS_DIAL_TIMEOUT",
		"redis.read_timeout":          "PORTAL_REDIS_READ_TIMEOUT",
		"redis.write_timeout":         "PORTAL_REDIS_WRITE_TIMEOUT",
		"cors.allowed_origins":        "PORTAL_CORS_ALLOWED_ORIGINS",
		"email.provider":              "PORTAL_EMAIL_PROVIDER",
		"email.region":                "PORTAL_EMAIL_REGION",
		"email.from_address":          "PORTAL_EMAIL_FROM_ADDRESS",
		"email.from_name":             "PORTAL_EMAIL_FROM_NAME",
		"email.frontend_url":          "PORTAL_EMAIL_FRONTEND_URL",
		"ratelimit.login_per_minute":  "PORTAL_RATELIMIT_LOGIN_PER_MINUTE",
		"ratelimit.login_burst":       "PORTAL_RATELIMIT_LOGIN_BURST",
		"ui.notice_ms":                "PORTAL_UI_NOTICE_MS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PORTAL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PORTAL_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		MaxLifetime:    v.GetDuration("db.max_lifetime"),
		MaxIdleTime:    v.GetDuration("db.max_idle_time"),
		MigrationsPath: v.GetString("db.migrations_path"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:          v.GetString("s3.region"),
		Endpoint:        v.GetString("s3.endpoint"),
		AccessKey:       v.GetString("s3.access_key"),
		SecretKey:       v.GetString("s3.secret_key"),
		KYCBucket:       v.GetString("s3.kyc_bucket"),
		FinancialBucket: v.GetString("s3.financial_bucket"),
		InvoiceBucket:   v.GetString("s3.invoice_bucket"),
		PresignExpiry:   v.GetInt64("s3.presign_expiry"),
		SignConcurrency: v.GetInt("s3.sign_concurrency"),
	}
	cfg.Uploads = UploadConfig{
		KYCMaxBytes:       v.GetInt64("uploads.kyc_max_bytes"),
		FinancialMaxBytes: v.GetInt64("uploads.financial_max_bytes"),
		CacheControl:      v.GetString("uploads.cache_control"),
		AllowedYears:      splitList(v.GetString("uploads.allowed_years")),
	}
	cfg.Workflow = WorkflowConfig{
		ConfirmTTL:       v.GetDuration("workflow.confirm_ttl"),
		SweepInterval:    v.GetDuration("workflow.sweep_interval"),
		OperationTimeout: v.GetDuration("workflow.operation_timeout"),
	}
	cfg.Redis = RedisConfig{
		URL:          v.GetString("redis.url"),
		PoolSize:     v.GetInt("redis.pool_size"),
		MinIdleConns: v.GetInt("redis.min_idle_conns"),
		DialTimeout:  v.GetDuration("redis.dial_timeout"),
		ReadTimeout:  v.GetDuration("redis.read_timeout"),
		WriteTimeout: v.GetDuration("redis.write_timeout"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.RateLimit = RateLimitConfig{
		LoginPerMinute: v.GetInt("ratelimit.login_per_minute"),
		LoginBurst:     v.GetInt("ratelimit.login_burst"),
	}
	cfg.UI = UIConfig{
		NoticeMS: v.GetInt64("ui.notice_ms"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Uploads.KYCMaxBytes <= 0 || c.Uploads.FinancialMaxBytes <= 0 {
		return fmt.Errorf("config: upload size ceilings must be positive")
	}
	if c.S3.PresignExpiry <= 0 {
		return fmt.Errorf("config: s3.presign_expiry must be positive")
	}
	if c.S3.SignConcurrency <= 0 {
		c.S3.SignConcurrency = 1
	}
	if c.Server.Environment == "production" && c.JWT.Secret == "change-me-in-production" {
		return fmt.Errorf("config: jwt.secret must be set in production")
	}
	return nil
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
