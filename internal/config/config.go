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

// Config holds all configuration required by the API process.
// All values come from env, an optional .env file, or the deployment
// secret file mounted at /run/secrets/educhat-secret (KEY=VALUE lines).
// No business logic should depend on raw environment variables.
type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig
	SSO   SSOConfig
}

type AppConfig struct {
	Env  string
	Port int

	// Domain is the public host of this API, used to build the SSO
	// service callback URL (https://<domain>/v1/<env>/user/sso).
	Domain string

	// CORSOrigins lists browser origins allowed to call the API.
	// Empty allows any origin.
	CORSOrigins []string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit for managed-Postgres posture.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string

	// Bootstrap applies the embedded schema at startup when tables are missing.
	Bootstrap bool
}

type RedisConfig struct {
	Host string
	Port int
}

type AuthConfig struct {
	// PEM-encoded RSA key pair for session tokens. The deployment pipeline
	// is known to mangle newlines in these values; the codec repairs that
	// on load, so the raw text is carried here untouched.
	PrivateKeyPEM string
	PublicKeyPEM  string

	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// AuthCodeSalt feeds the time-step auth codes handed to the STT client.
	AuthCodeSalt string
}

type SSOConfig struct {
	// ServerURL is the CAS base URL, e.g. https://login.case.edu/cas.
	ServerURL      string
	RequestTimeout time.Duration
}

const secretFile = "/run/secrets/educhat-secret"

func Load() (Config, error) {
	// Best-effort env-file overlay; real env always wins (no override).
	_ = godotenv.Load()
	if _, err := os.Stat(secretFile); err == nil {
		_ = godotenv.Load(secretFile)
	}

	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.Domain = strings.TrimSpace(os.Getenv("DOMAIN"))
	c.App.CORSOrigins = splitCSV(os.Getenv("CORS_ORIGINS"))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))
	c.DB.Bootstrap = optionalBool("DB_BOOTSTRAP")

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.PrivateKeyPEM = os.Getenv("JWT_PRIVATE_KEY")
	c.Auth.PublicKeyPEM = os.Getenv("JWT_PUBLIC_KEY")
	c.Auth.Issuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	// Duration env vars are optional; defaults applied below.
	c.Auth.AccessTokenTTL = mustDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = mustDuration("JWT_REFRESH_TTL")
	c.Auth.AuthCodeSalt = os.Getenv("AUTH_CODE_SALT")

	c.SSO.ServerURL = strings.TrimSpace(os.Getenv("SSO_SERVER_URL"))
	c.SSO.RequestTimeout = mustDuration("SSO_TIMEOUT")

	c.applyDefaults()

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.DB.SSLMode == "" && !c.IsProduction() {
		// Local-friendly default; production must be explicit.
		c.DB.SSLMode = "disable"
	}
	if len(c.App.CORSOrigins) == 0 {
		c.App.CORSOrigins = []string{"*"}
	}
	if c.Auth.AccessTokenTTL <= 0 {
		// Session tokens are short-lived.
		c.Auth.AccessTokenTTL = 30 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		// Refresh credentials live for 15 days.
		c.Auth.RefreshTokenTTL = 15 * 24 * time.Hour
	}
	if c.SSO.ServerURL == "" {
		c.SSO.ServerURL = "https://login.case.edu/cas"
	}
	if c.SSO.RequestTimeout <= 0 {
		c.SSO.RequestTimeout = 30 * time.Second
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.IsProduction() && c.App.Domain == "" {
		errs = append(errs, errors.New("DOMAIN is required in production"))
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
	if c.DB.SSLMode == "" {
		errs = append(errs, errors.New("DB_SSLMODE is required in production"))
	} else if !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if strings.TrimSpace(c.Auth.PrivateKeyPEM) == "" {
		errs = append(errs, errors.New("JWT_PRIVATE_KEY is required"))
	}
	if strings.TrimSpace(c.Auth.PublicKeyPEM) == "" {
		errs = append(errs, errors.New("JWT_PUBLIC_KEY is required"))
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}
	if c.Auth.AuthCodeSalt == "" {
		errs = append(errs, errors.New("AUTH_CODE_SALT is required"))
	}

	if c.SSO.ServerURL == "" {
		errs = append(errs, errors.New("SSO_SERVER_URL is required"))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

// SSOEnv maps the deployment env onto the URL prefix segment the SSO
// callback lives under. Only dev and prod exist as route prefixes.
func (c Config) SSOEnv() string {
	if c.IsProduction() {
		return "prod"
	}
	return "dev"
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

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func optionalBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
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
