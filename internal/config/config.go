// config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Fixed fallbacks for local development only. validate() rejects them
// in production mode.
const (
	DevUserSessionSecret  = "duka-dev-user-session-secret"
	DevAdminSessionSecret = "duka-dev-admin-session-secret"
)

type Config struct {
	App      AppConfig      `koanf:"app"`
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Auth     AuthConfig     `koanf:"auth"`
	Admin    AdminConfig    `koanf:"admin"`
	Payment  PaymentConfig  `koanf:"payment"`
	Email    EmailConfig    `koanf:"email"`
	Audit    AuditConfig    `koanf:"audit"`
	CORS     CORSConfig     `koanf:"cors"`
	Log      LogConfig      `koanf:"log"`
	Otel     OtelConfig     `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type StoreConfig struct {
	DataDir string `koanf:"data_dir"`
}

// AuthConfig carries every secret the session/crypto layer consumes.
// Secrets are loaded once here and injected; nothing below the config
// layer reads the process environment.
type AuthConfig struct {
	UserSessionSecret  string        `koanf:"user_session_secret"`
	AdminSessionSecret string        `koanf:"admin_session_secret"`
	FieldEncryptionKey string        `koanf:"field_encryption_key"`
	SessionTTL         time.Duration `koanf:"session_ttl"`
	CSRFTokenTTL       time.Duration `koanf:"csrf_token_ttl"`
	LoginRatePerMinute int           `koanf:"login_rate_per_minute"`
	LoginRateBurst     int           `koanf:"login_rate_burst"`
}

type AdminConfig struct {
	BootstrapPassword string        `koanf:"bootstrap_password"`
	MaxFailedAttempts int           `koanf:"max_failed_attempts"`
	LockDuration      time.Duration `koanf:"lock_duration"`
	AllowedOrigins    []string      `koanf:"allowed_origins"`

	// Env-only aliases kept for parity with the legacy deployment
	// surface; resolved into the canonical fields by validate().
	LockDurationMinutes int    `koanf:"lock_duration_minutes"`
	AllowedOriginsCSV   string `koanf:"allowed_origins_csv"`
}

type PaymentConfig struct {
	GatewayURL string        `koanf:"gateway_url"`
	GatewayKey string        `koanf:"gateway_key"`
	Timeout    time.Duration `koanf:"timeout"`
}

type EmailConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	FromAddress  string `koanf:"from_address"`
}

type AuditConfig struct {
	FilePath string `koanf:"file_path"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "duka-server",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"store.data_dir": "data",

		"auth.session_ttl":           "168h",
		"auth.csrf_token_ttl":        "2h",
		"auth.login_rate_per_minute": 10,
		"auth.login_rate_burst":      5,

		"admin.max_failed_attempts": 2,
		"admin.lock_duration":       "15m",
		"admin.allowed_origins":     []string{},

		"payment.timeout": "10s",

		"email.from_address": "orders@duka.example",

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-CSRF-Token",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "duka-server",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"DATA_DIR":                    "store.data_dir",
	"SESSION_SECRET":              "auth.user_session_secret",
	"ADMIN_SESSION_SECRET":        "auth.admin_session_secret",
	"FIELD_ENCRYPTION_KEY":        "auth.field_encryption_key",
	"SESSION_TTL":                 "auth.session_ttl",
	"ADMIN_BOOTSTRAP_PASSWORD":    "admin.bootstrap_password",
	"ADMIN_MAX_FAILED_ATTEMPTS":   "admin.max_failed_attempts",
	"ADMIN_LOCK_DURATION_MINUTES": "admin.lock_duration_minutes",
	"ADMIN_ALLOWED_ORIGINS":       "admin.allowed_origins_csv",
	"PAYMENT_GATEWAY_URL":         "payment.gateway_url",
	"PAYMENT_GATEWAY_KEY":         "payment.gateway_key",
	"RESEND_API_KEY":              "email.resend_api_key",
	"EMAIL_FROM_ADDRESS":          "email.from_address",
	"AUDIT_LOG_PATH":              "audit.file_path",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

// validate is the single place where missing-secret conditions are
// decided. Production hard-fails; development substitutes fixed
// fallbacks so a bare checkout still boots.
func validate(c *Config) error {
	if c.Admin.LockDurationMinutes > 0 {
		c.Admin.LockDuration =
			time.Duration(c.Admin.LockDurationMinutes) * time.Minute
	}
	if c.Admin.AllowedOriginsCSV != "" {
		c.Admin.AllowedOrigins = ParseOriginList(c.Admin.AllowedOriginsCSV)
	}

	if c.IsProduction() {
		if c.Auth.UserSessionSecret == "" ||
			c.Auth.UserSessionSecret == DevUserSessionSecret {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		if c.Auth.AdminSessionSecret == "" ||
			c.Auth.AdminSessionSecret == DevAdminSessionSecret {
			return fmt.Errorf("ADMIN_SESSION_SECRET is required in production")
		}
		if c.Auth.FieldEncryptionKey == "" {
			return fmt.Errorf("FIELD_ENCRYPTION_KEY is required in production")
		}
	} else {
		if c.Auth.UserSessionSecret == "" {
			c.Auth.UserSessionSecret = DevUserSessionSecret
		}
		if c.Auth.AdminSessionSecret == "" {
			c.Auth.AdminSessionSecret = DevAdminSessionSecret
		}
	}

	if c.Auth.UserSessionSecret == c.Auth.AdminSessionSecret {
		return fmt.Errorf(
			"SESSION_SECRET and ADMIN_SESSION_SECRET must be distinct keys",
		)
	}

	if c.Admin.MaxFailedAttempts < 1 {
		return fmt.Errorf("admin.max_failed_attempts must be positive")
	}

	if c.Admin.LockDuration <= 0 {
		return fmt.Errorf("admin.lock_duration must be positive")
	}

	if c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir is required")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ParseOriginList splits a comma-separated origin string into exact
// origin entries, dropping empties.
func ParseOriginList(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
