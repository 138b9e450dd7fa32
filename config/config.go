package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	App      App
	Server   Server
	Database Database
	Auth     Auth
	Cors     Cors
	Gemini   Gemini
	Midtrans Midtrans
	Redis    Redis
	Media    Media
	Bunny    Bunny
	Otel     Otel
}

type App struct {
	Env      string
	Version  string
	LogLevel string
}

type Server struct {
	Port string
}

type Database struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Cors struct {
	AllowedOrigins []string
}

type Gemini struct {
	APIKey string
	Model  string
}

type Midtrans struct {
	ServerKey  string
	Production bool
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type Media struct {
	Driver            string // local | gcs
	LocalDir          string
	PublicBaseURL     string
	GCSBucket         string
	MaxUploadBytes    int64
	ImageMaxDimension int
}

type Bunny struct {
	LibraryID string
	APIKey    string
	BaseURL   string
}

type Otel struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	Insecure     bool
}

func setDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_VERSION", "1.0.0")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("JWT_TTL", "24h")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("COURSE_CACHE_TTL", "5m")
	viper.SetDefault("MEDIA_STORAGE", "local")
	viper.SetDefault("MEDIA_LOCAL_DIR", "./uploads")
	viper.SetDefault("MEDIA_PUBLIC_BASE_URL", "/uploads")
	viper.SetDefault("MEDIA_MAX_UPLOAD_BYTES", 100<<20)
	viper.SetDefault("MEDIA_IMAGE_MAX_DIMENSION", 1920)
	viper.SetDefault("BUNNY_BASE_URL", "https://video.bunnycdn.com")
	viper.SetDefault("OTEL_SERVICE_NAME", "vaikuntha-api")
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.App.Env = viper.GetString("APP_ENV")
	config.App.Version = viper.GetString("APP_VERSION")
	config.App.LogLevel = viper.GetString("LOG_LEVEL")

	config.Server.Port = viper.GetString("SERVER_PORT")

	config.Database.URL = viper.GetString("DATABASE_URL")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")
	config.Database.MaxOpenConns = viper.GetInt("DATABASE_MAX_OPEN_CONNS")
	config.Database.MaxIdleConns = viper.GetInt("DATABASE_MAX_IDLE_CONNS")
	config.Database.ConnMaxLifetime = viper.GetDuration("DATABASE_CONN_MAX_LIFETIME")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TokenTTL = viper.GetDuration("JWT_TTL")

	config.Cors.AllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	config.Gemini.APIKey = viper.GetString("GEMINI_API_KEY")
	config.Gemini.Model = viper.GetString("GEMINI_MODEL")

	config.Midtrans.ServerKey = viper.GetString("MIDTRANS_SERVER_KEY")
	config.Midtrans.Production = viper.GetBool("MIDTRANS_PRODUCTION")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.TTL = viper.GetDuration("COURSE_CACHE_TTL")

	config.Media.Driver = strings.ToLower(viper.GetString("MEDIA_STORAGE"))
	config.Media.LocalDir = viper.GetString("MEDIA_LOCAL_DIR")
	config.Media.PublicBaseURL = strings.TrimRight(viper.GetString("MEDIA_PUBLIC_BASE_URL"), "/")
	config.Media.GCSBucket = viper.GetString("MEDIA_GCS_BUCKET")
	config.Media.MaxUploadBytes = viper.GetInt64("MEDIA_MAX_UPLOAD_BYTES")
	config.Media.ImageMaxDimension = viper.GetInt("MEDIA_IMAGE_MAX_DIMENSION")

	config.Bunny.LibraryID = viper.GetString("BUNNY_LIBRARY_ID")
	config.Bunny.APIKey = viper.GetString("BUNNY_API_KEY")
	config.Bunny.BaseURL = strings.TrimRight(viper.GetString("BUNNY_BASE_URL"), "/")

	config.Otel.Enabled = viper.GetBool("OTEL_ENABLED")
	config.Otel.ServiceName = viper.GetString("OTEL_SERVICE_NAME")
	config.Otel.OTLPEndpoint = viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")
	config.Otel.Insecure = viper.GetBool("OTEL_EXPORTER_OTLP_INSECURE")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Info().Interface("config", config.Redacted()).Msg("Config loaded")
	return &config, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		log.Warn().Msg("JWT_SECRET is not set, using an insecure development secret")
		c.Auth.JWTSecret = "dev-insecure-secret"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	switch c.Media.Driver {
	case "local", "gcs":
	default:
		return fmt.Errorf("unsupported MEDIA_STORAGE %q", c.Media.Driver)
	}
	if c.Media.Driver == "gcs" && c.Media.GCSBucket == "" {
		return fmt.Errorf("MEDIA_GCS_BUCKET is required when MEDIA_STORAGE=gcs")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// DSN builds the postgres connection string unless DATABASE_URL is given.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// Redacted returns a copy that is safe to log.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.Database.URL = mask(c.Database.URL)
	c.Database.Password = mask(c.Database.Password)
	c.Auth.JWTSecret = mask(c.Auth.JWTSecret)
	c.Gemini.APIKey = mask(c.Gemini.APIKey)
	c.Midtrans.ServerKey = mask(c.Midtrans.ServerKey)
	c.Redis.Password = mask(c.Redis.Password)
	c.Bunny.APIKey = mask(c.Bunny.APIKey)
	return c
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
