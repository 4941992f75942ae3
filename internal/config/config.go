package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Session    SessionConfig
	S3         S3Config
	Storage    StorageConfig
	Parser     ParserConfig
	Extraction ExtractionConfig
	CORS       CORSConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractionConfig holds normalization settings shared by every backend.
type ExtractionConfig struct {
	Schema         string `mapstructure:"schema"`
	MissingPolicy  string `mapstructure:"missing_policy"`
	StripUnits     bool   `mapstructure:"strip_units"`
	MaxImageSizeMB int64  `mapstructure:"max_image_size_mb"`
	CSVBOM         bool   `mapstructure:"csv_bom"`
	PresignSeconds int64  `mapstructure:"presign_seconds"`
}

// ParserProviderConfig holds settings for a single vision backend.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds vision backend settings with multi-provider support.
type ParserConfig struct {
	// Legacy flat fields (single backend)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		BaseURL:      p.BaseURL,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
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
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// SessionConfig holds session token signing and expiry settings.
type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// StorageConfig selects the drawing archive implementation ("s3" or "noop").
type StorageConfig struct {
	Provider string `mapstructure:"provider"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// Load reads configuration from environment variables with the DRAWSHEET_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DRAWSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "drawsheet")
	v.SetDefault("db.password", "drawsheet_secret")
	v.SetDefault("db.name", "drawsheet_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// Session defaults
	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.expiry", "12h")
	v.SetDefault("session.issuer", "drawsheet")

	// Storage defaults
	v.SetDefault("storage.provider", "noop")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "drawsheet-drawings")
	v.SetDefault("s3.endpoint", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:8501")

	// Extraction defaults
	v.SetDefault("extraction.schema", "cylinder")
	v.SetDefault("extraction.missing_policy", "blank")
	v.SetDefault("extraction.strip_units", false)
	v.SetDefault("extraction.max_image_size_mb", 20)
	v.SetDefault("extraction.csv_bom", true)
	v.SetDefault("extraction.presign_seconds", 900)

	// Parser defaults (legacy flat)
	v.SetDefault("parser.provider", "openrouter")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "qwen/qwen2.5-vl-72b-instruct:free")
	v.SetDefault("parser.base_url", "")
	v.SetDefault("parser.timeout_secs", 120)

	// Parser primary/secondary/tertiary defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("parser."+tier+".provider", "")
		v.SetDefault("parser."+tier+".api_key", "")
		v.SetDefault("parser."+tier+".default_model", "")
		v.SetDefault("parser."+tier+".base_url", "")
		v.SetDefault("parser."+tier+".timeout_secs", 120)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "DRAWSHEET_SERVER_PORT",
		"server.read_timeout":          "DRAWSHEET_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "DRAWSHEET_SERVER_WRITE_TIMEOUT",
		"server.environment":           "DRAWSHEET_SERVER_ENVIRONMENT",
		"db.host":                      "DRAWSHEET_DB_HOST",
		"db.port":                      "DRAWSHEET_DB_PORT",
		"db.user":                      "DRAWSHEET_DB_USER",
		"db.password":                  "DRAWSHEET_DB_PASSWORD",
		"db.name":                      "DRAWSHEET_DB_NAME",
		"db.sslmode":                   "DRAWSHEET_DB_SSLMODE",
		"db.max_open":                  "DRAWSHEET_DB_MAX_OPEN",
		"db.max_idle":                  "DRAWSHEET_DB_MAX_IDLE",
		"session.secret":               "DRAWSHEET_SESSION_SECRET",
		"session.expiry":               "DRAWSHEET_SESSION_EXPIRY",
		"session.issuer":               "DRAWSHEET_SESSION_ISSUER",
		"storage.provider":             "DRAWSHEET_STORAGE_PROVIDER",
		"s3.region":                    "DRAWSHEET_S3_REGION",
		"s3.bucket":                    "DRAWSHEET_S3_BUCKET",
		"s3.endpoint":                  "DRAWSHEET_S3_ENDPOINT",
		"s3.access_key":                "DRAWSHEET_S3_ACCESS_KEY",
		"s3.secret_key":                "DRAWSHEET_S3_SECRET_KEY",
		"cors.allowed_origins":         "DRAWSHEET_CORS_ALLOWED_ORIGINS",
		"extraction.schema":            "DRAWSHEET_EXTRACTION_SCHEMA",
		"extraction.missing_policy":    "DRAWSHEET_EXTRACTION_MISSING_POLICY",
		"extraction.strip_units":       "DRAWSHEET_EXTRACTION_STRIP_UNITS",
		"extraction.max_image_size_mb": "DRAWSHEET_EXTRACTION_MAX_IMAGE_SIZE_MB",
		"extraction.csv_bom":           "DRAWSHEET_EXTRACTION_CSV_BOM",
		"extraction.presign_seconds":   "DRAWSHEET_EXTRACTION_PRESIGN_SECONDS",
		"parser.provider":              "DRAWSHEET_PARSER_PROVIDER",
		"parser.default_model":         "DRAWSHEET_PARSER_DEFAULT_MODEL",
		"parser.base_url":              "DRAWSHEET_PARSER_BASE_URL",
		"parser.timeout_secs":          "DRAWSHEET_PARSER_TIMEOUT_SECS",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "base_url", "timeout_secs"} {
			key := "parser." + tier + "." + field
			envBindings[key] = "DRAWSHEET_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	// API_KEY is accepted for the single-backend setup.
	_ = v.BindEnv("parser.api_key", "DRAWSHEET_PARSER_API_KEY", "API_KEY")

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DRAWSHEET_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DRAWSHEET_SERVER_PORT") == "" {
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
	}
	cfg.Session = SessionConfig{
		Secret: v.GetString("session.secret"),
		Expiry: v.GetDuration("session.expiry"),
		Issuer: v.GetString("session.issuer"),
	}
	cfg.Storage = StorageConfig{
		Provider: v.GetString("storage.provider"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Extraction = ExtractionConfig{
		Schema:         v.GetString("extraction.schema"),
		MissingPolicy:  v.GetString("extraction.missing_policy"),
		StripUnits:     v.GetBool("extraction.strip_units"),
		MaxImageSizeMB: v.GetInt64("extraction.max_image_size_mb"),
		CSVBOM:         v.GetBool("extraction.csv_bom"),
		PresignSeconds: v.GetInt64("extraction.presign_seconds"),
	}

	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		BaseURL:      v.GetString("parser.base_url"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) ParserProviderConfig {
	prefix := "parser." + tier + "."
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		BaseURL:      v.GetString(prefix + "base_url"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}
