package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// Config holds all configuration required by the gateway processes.
// It is built once at startup and passed down explicitly; no package reads
// raw environment variables on its own.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	DB       DBConfig       `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Carriers CarriersConfig `mapstructure:"carriers"`
	Events   EventsConfig   `mapstructure:"events"`
	Calls    CallsConfig    `mapstructure:"calls"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// PublicBaseURL is the externally reachable origin carriers call back into,
	// e.g. https://gw.example.com. Used to build status and continuation URLs.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

type WebhookConfig struct {
	Secret    string        `mapstructure:"secret"`
	Tolerance time.Duration `mapstructure:"tolerance"`
}

type CarriersConfig struct {
	// Enabled lists carrier names in fallback priority order.
	Enabled []string      `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
	Breaker BreakerConfig `mapstructure:"breaker"`

	Twilio TwilioConfig `mapstructure:"twilio"`
	Telnyx TelnyxConfig `mapstructure:"telnyx"`
}

type BreakerConfig struct {
	FailThreshold int           `mapstructure:"fail_threshold"`
	OpenFor       time.Duration `mapstructure:"open_for"`
}

// TwilioConfig is not validated at load time. Adapters check it on every call
// so a missing credential is reported for the request that needed it.
type TwilioConfig struct {
	AccountSID          string `mapstructure:"account_sid"`
	AuthToken           string `mapstructure:"auth_token"`
	MessagingServiceSID string `mapstructure:"messaging_service_sid"`
	FromNumber          string `mapstructure:"from_number"`
	APIBaseURL          string `mapstructure:"api_base_url"`
}

type TelnyxConfig struct {
	APIKey             string `mapstructure:"api_key"`
	MessagingProfileID string `mapstructure:"messaging_profile_id"`
	FromNumber         string `mapstructure:"from_number"`
	APIBaseURL         string `mapstructure:"api_base_url"`
}

type EventsConfig struct {
	// Backend is one of redis, kafka, none.
	Backend      string   `mapstructure:"backend"`
	RedisChannel string   `mapstructure:"redis_channel"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

type CallsConfig struct {
	StatusCallbackPath string `mapstructure:"status_callback_path"`
	ContinuationPath   string `mapstructure:"continuation_path"`
}

// Load reads embedded defaults, merges the YAML file at path (if any) and
// applies environment overrides. Keys map to env as app.env -> APP_ENV.
// A .env file in the working directory is honoured when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, fmt.Errorf("read defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.MergeInConfig(); err != nil {
				return Config{}, fmt.Errorf("merge %s: %w", path, err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Carriers.Enabled = normalizeNames(c.Carriers.Enabled)
	c.Events.KafkaBrokers = splitList(c.Events.KafkaBrokers)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every problem at once. It also fills local-friendly
// defaults where production must be explicit, so callers should keep the
// receiver they validated.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.PublicBaseURL == "" {
		errs = append(errs, errors.New("APP_PUBLIC_BASE_URL is required"))
	} else if u, err := url.Parse(c.App.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("APP_PUBLIC_BASE_URL must be an absolute URL, got %q", c.App.PublicBaseURL))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 15 * time.Minute
	}

	if c.Webhook.Secret == "" {
		errs = append(errs, errors.New("WEBHOOK_SECRET is required"))
	}
	if c.Webhook.Tolerance <= 0 {
		c.Webhook.Tolerance = 5 * time.Minute
	}

	if len(c.Carriers.Enabled) == 0 {
		errs = append(errs, errors.New("CARRIERS_ENABLED must list at least one carrier"))
	}
	seen := make(map[string]struct{}, len(c.Carriers.Enabled))
	for _, name := range c.Carriers.Enabled {
		if !isKnownCarrier(name) {
			errs = append(errs, fmt.Errorf("CARRIERS_ENABLED contains unknown carrier %q", name))
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("CARRIERS_ENABLED lists %q twice", name))
		}
		seen[name] = struct{}{}
	}
	if c.IsProduction() {
		if _, ok := seen["mock"]; ok {
			errs = append(errs, errors.New("mock carrier is not allowed in production"))
		}
	}
	if c.Carriers.Timeout <= 0 {
		c.Carriers.Timeout = 10 * time.Second
	}

	switch c.Events.Backend {
	case "", "none":
		c.Events.Backend = "none"
	case "redis":
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required for the redis events backend"))
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
	case "kafka":
		if len(c.Events.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("EVENTS_KAFKA_BROKERS is required for the kafka events backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("EVENTS_BACKEND must be one of redis, kafka, none, got %q", c.Events.Backend))
	}

	// both paths are mounted behind the signature middleware
	for _, p := range []struct{ key, path string }{
		{"CALLS_STATUS_CALLBACK_PATH", c.Calls.StatusCallbackPath},
		{"CALLS_CONTINUATION_PATH", c.Calls.ContinuationPath},
	} {
		if !strings.HasPrefix(p.path, "/webhooks/") {
			errs = append(errs, fmt.Errorf("%s must start with /webhooks/, got %q", p.key, p.path))
		}
	}
	if c.Calls.StatusCallbackPath == c.Calls.ContinuationPath {
		errs = append(errs, errors.New("CALLS_STATUS_CALLBACK_PATH and CALLS_CONTINUATION_PATH must differ"))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// CallbackURL joins the public base URL with a webhook path.
func (c Config) CallbackURL(path string) string {
	return strings.TrimRight(c.App.PublicBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func normalizeNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		// env values arrive as a single comma separated string
		for _, part := range strings.Split(raw, ",") {
			if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func isKnownCarrier(name string) bool {
	switch name {
	case "twilio", "telnyx", "mock":
		return true
	default:
		return false
	}
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
