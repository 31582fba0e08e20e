package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "waveforge.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "WAVEFORGE_PORT")
	setString(&cfg.Server.CORSOrigin, "WAVEFORGE_CORS_ORIGIN")
	setString(&cfg.Server.PublicBaseURL, "WAVEFORGE_PUBLIC_BASE_URL")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "WAVEFORGE_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "WAVEFORGE_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "WAVEFORGE_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "WAVEFORGE_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "WAVEFORGE_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")

	setStringSlice(&cfg.Platform.RootDomains, "WAVEFORGE_ROOT_DOMAINS")
	setStringSlice(&cfg.Platform.PreviewHosts, "WAVEFORGE_PREVIEW_HOSTS")
	setDuration(&cfg.Platform.DownloadWindow, "WAVEFORGE_DOWNLOAD_WINDOW")

	setString(&cfg.Checkout.Currency, "WAVEFORGE_CURRENCY")

	setString(&cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY")
	setString(&cfg.Stripe.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setBool(&cfg.Stripe.AllowUnverifiedWebhooks, "WAVEFORGE_STRIPE_ALLOW_UNVERIFIED")

	setString(&cfg.PayPal.ClientID, "PAYPAL_CLIENT_ID")
	setString(&cfg.PayPal.Secret, "PAYPAL_SECRET")
	setString(&cfg.PayPal.BaseURL, "PAYPAL_BASE_URL")

	setString(&cfg.SMTP.Host, "WAVEFORGE_SMTP_HOST")
	setInt(&cfg.SMTP.Port, "WAVEFORGE_SMTP_PORT")
	setString(&cfg.SMTP.From, "WAVEFORGE_SMTP_FROM")
	setString(&cfg.SMTP.Password, "WAVEFORGE_SMTP_PASSWORD")

	setString(&cfg.Docgen.URL, "WAVEFORGE_DOCGEN_URL")
	setString(&cfg.Docgen.APIKey, "WAVEFORGE_DOCGEN_API_KEY")

	setString(&cfg.Files.BaseURL, "WAVEFORGE_FILES_BASE_URL")
	setString(&cfg.Files.SigningSecret, "WAVEFORGE_FILES_SIGNING_SECRET")

	setInt64(&cfg.Cache.MaxCostBytes, "WAVEFORGE_CACHE_MAX_COST")
	setDuration(&cfg.Cache.TenantTTL, "WAVEFORGE_CACHE_TENANT_TTL")

	setInt(&cfg.Rate.VerifyPerWindow, "WAVEFORGE_RATE_VERIFY")
	setInt(&cfg.Rate.OfferPerWindow, "WAVEFORGE_RATE_OFFER")
	setInt(&cfg.Rate.DownloadPerWindow, "WAVEFORGE_RATE_DOWNLOAD")
	setDuration(&cfg.Rate.Window, "WAVEFORGE_RATE_WINDOW")

	setString(&cfg.Logging.Level, "WAVEFORGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "WAVEFORGE_LOG_SERVICE")

	setInt(&cfg.Breaker.MaxFailures, "WAVEFORGE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "WAVEFORGE_BREAKER_TIMEOUT")

	setBool(&cfg.Otel.Enabled, "WAVEFORGE_OTEL_ENABLED")
	setString(&cfg.Otel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if len(cfg.Platform.RootDomains) == 0 {
		return errors.New("platform.root_domains is required")
	}
	if cfg.Platform.DownloadWindow <= 0 {
		return errors.New("platform.download_window must be positive")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Rate.VerifyPerWindow < 1 || cfg.Rate.OfferPerWindow < 1 || cfg.Rate.DownloadPerWindow < 1 {
		return errors.New("rate limits must be >= 1")
	}
	if cfg.Rate.Window <= 0 {
		return errors.New("rate.window must be positive")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
