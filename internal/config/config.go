package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultBaseURL         = "https://taliacolors.com"
	defaultLocale          = "pt"
	defaultBrand           = "Talia Colors"
	defaultSessionIdleTTL  = 30 * time.Minute
	defaultSweepInterval   = time.Minute
	defaultWhatsAppNumber  = "554899169053"
	defaultInstagramURL    = "https://www.instagram.com/taliacolors"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	Paths     PathsConfig
	Session   SessionConfig
	Workflow  WorkflowConfig
	Booking   BookingConfig
	Analytics AnalyticsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Dev             bool
	LogLevel        string
}

// SiteConfig describes the public site.
type SiteConfig struct {
	BaseURL       string
	DefaultLocale string
	Locales       []string
	Brand         string
	InstagramURL  string
}

// PathsConfig locates on-disk resources.
type PathsConfig struct {
	Templates   string
	Public      string
	Locales     string
	Content     string
	CatalogFile string
}

// SessionConfig controls the signed session cookie and the in-memory workflow sessions.
type SessionConfig struct {
	SigningKey    string
	Secure        bool
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// WorkflowConfig tunes the color picker.
type WorkflowConfig struct {
	// ProcessingSpeed divides the simulated analysis duration; 1 is real time.
	ProcessingSpeed float64
}

// BookingConfig holds the booking channel.
type BookingConfig struct {
	WhatsAppNumber string
}

// AnalyticsConfig holds tag manager identifiers surfaced to the layout.
type AnalyticsConfig struct {
	GA4ID string
	GTMID string
	Debug bool
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for sm:// and secret:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// Load assembles the configuration from defaults, the .env file, the process environment and
// an optional explicit map, in increasing precedence. Secret references are resolved last.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	// Cloud Run injects PORT; the prefixed variable wins when both are set.
	port := stringWithDefault(lookup, "PORT", defaultPort)
	port = stringWithDefault(lookup, "TALIA_PORT", port)

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     durationWithDefault(lookup, "TALIA_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "TALIA_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "TALIA_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "TALIA_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
			Dev:             boolWithDefault(lookup, "TALIA_DEV", false),
			LogLevel:        stringWithDefault(lookup, "LOG_LEVEL", ""),
		},
		Site: SiteConfig{
			BaseURL:       strings.TrimRight(stringWithDefault(lookup, "TALIA_BASE_URL", defaultBaseURL), "/"),
			DefaultLocale: strings.ToLower(stringWithDefault(lookup, "TALIA_DEFAULT_LOCALE", defaultLocale)),
			Locales:       csvWithDefault(lookup, "TALIA_LOCALES", []string{"pt", "es", "en"}),
			Brand:         stringWithDefault(lookup, "TALIA_BRAND", defaultBrand),
			InstagramURL:  stringWithDefault(lookup, "TALIA_INSTAGRAM_URL", defaultInstagramURL),
		},
		Paths: PathsConfig{
			Templates:   stringWithDefault(lookup, "TALIA_TEMPLATES_DIR", "templates"),
			Public:      stringWithDefault(lookup, "TALIA_PUBLIC_DIR", "public"),
			Locales:     stringWithDefault(lookup, "TALIA_LOCALES_DIR", "locales"),
			Content:     stringWithDefault(lookup, "TALIA_CONTENT_DIR", "content"),
			CatalogFile: stringWithDefault(lookup, "TALIA_CATALOG_FILE", ""),
		},
		Session: SessionConfig{
			SigningKey:    stringWithDefault(lookup, "TALIA_SESSION_SIGNING_KEY", ""),
			Secure:        boolWithDefault(lookup, "TALIA_SESSION_SECURE", false),
			IdleTTL:       durationWithDefault(lookup, "TALIA_SESSION_IDLE_TTL", defaultSessionIdleTTL),
			SweepInterval: durationWithDefault(lookup, "TALIA_SESSION_SWEEP_INTERVAL", defaultSweepInterval),
		},
		Workflow: WorkflowConfig{
			ProcessingSpeed: floatWithDefault(lookup, "TALIA_PROCESSING_SPEED", 1),
		},
		Booking: BookingConfig{
			WhatsAppNumber: stringWithDefault(lookup, "TALIA_WHATSAPP_NUMBER", defaultWhatsAppNumber),
		},
		Analytics: AnalyticsConfig{
			GA4ID: stringWithDefault(lookup, "TALIA_GA4_ID", ""),
			GTMID: stringWithDefault(lookup, "TALIA_GTM_ID", ""),
			Debug: boolWithDefault(lookup, "TALIA_ANALYTICS_DEBUG", false),
		},
	}

	resolved, err := resolveSecret(ctx, cfg.Session.SigningKey, options.secret)
	if err != nil {
		return Config{}, err
	}
	cfg.Session.SigningKey = resolved

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if value == "" || !isSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return strings.TrimSpace(secret), nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if !strings.HasPrefix(cfg.Site.BaseURL, "http://") && !strings.HasPrefix(cfg.Site.BaseURL, "https://") {
		missing = append(missing, "Site.BaseURL")
	}
	if len(cfg.Site.Locales) == 0 {
		missing = append(missing, "Site.Locales")
	} else if !contains(cfg.Site.Locales, cfg.Site.DefaultLocale) {
		missing = append(missing, "Site.DefaultLocale")
	}
	if cfg.Session.IdleTTL <= 0 {
		missing = append(missing, "Session.IdleTTL")
	}
	if cfg.Session.SweepInterval <= 0 {
		missing = append(missing, "Session.SweepInterval")
	}
	if !cfg.Server.Dev && len(cfg.Session.SigningKey) < 32 {
		missing = append(missing, "Session.SigningKey")
	}
	if cfg.Workflow.ProcessingSpeed <= 0 {
		missing = append(missing, "Workflow.ProcessingSpeed")
	}
	if strings.TrimSpace(cfg.Booking.WhatsAppNumber) == "" {
		missing = append(missing, "Booking.WhatsAppNumber")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return append([]string(nil), fallback...)
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(part)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
