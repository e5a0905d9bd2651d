package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultEnvironment      = "local"
	defaultLogLevel         = "info"
	defaultTemplatesDir     = "templates"
	defaultPublicDir        = "public"
	defaultLocalesDir       = "locales"
	defaultSiteFile         = "site.yaml"
	defaultGeoEndpoint      = "https://api.ipgeolocation.io/ipgeo"
	defaultGeoTimeout       = 5 * time.Second
	defaultTimezone         = "America/Bogota"
	defaultMaxRedirects     = 2
	defaultPreferenceTTL    = 365 * 24 * time.Hour
	defaultInquiryTimeout   = 10 * time.Second
	defaultRedisKeyPrefix   = "pixel:visitor:"
	defaultVisitorCookieTTL = 365 * 24 * time.Hour
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Paths      PathsConfig
	Log        LogConfig
	Geo        GeoConfig
	Language   LanguageConfig
	Preference PreferenceConfig
	Inquiry    InquiryConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
	DevMode      bool
}

// PathsConfig locates on-disk assets.
type PathsConfig struct {
	Templates string
	Public    string
	Locales   string
	SiteFile  string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// GeoConfig configures the IP geolocation lookup.
type GeoConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// LanguageConfig controls detection and redirection.
type LanguageConfig struct {
	Timezone     string
	Location     *time.Location
	MaxRedirects int
}

// PreferenceConfig selects where client language records live.
type PreferenceConfig struct {
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	VisitorTTL    time.Duration
}

// InquiryConfig controls the inquiry relay.
type InquiryConfig struct {
	RelayTimeout time.Duration
}

// Secure reports whether cookies must carry the Secure attribute.
func (c Config) Secure() bool {
	return c.Server.Environment == "prod"
}

// UseRedis reports whether a Redis backend is configured for preferences.
func (c Config) UseRedis() bool {
	return strings.TrimSpace(c.Preference.RedisAddr) != ""
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

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
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

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the runtime configuration by combining defaults, .env overrides
// and environment variables.
func Load(opts ...Option) (Config, error) {
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
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Cloud Run injects PORT; the prefixed key wins when both are set.
	port := stringWithDefault(lookup, "PORT", defaultPort)
	port = stringWithDefault(lookup, "PIXEL_SERVER_PORT", port)

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  durationWithDefault(lookup, "PIXEL_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "PIXEL_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "PIXEL_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			Environment:  strings.ToLower(stringWithDefault(lookup, "PIXEL_ENV", defaultEnvironment)),
			DevMode:      boolWithDefault(lookup, "PIXEL_DEV", false),
		},
		Paths: PathsConfig{
			Templates: stringWithDefault(lookup, "PIXEL_TEMPLATES_DIR", defaultTemplatesDir),
			Public:    stringWithDefault(lookup, "PIXEL_PUBLIC_DIR", defaultPublicDir),
			Locales:   stringWithDefault(lookup, "PIXEL_LOCALES_DIR", defaultLocalesDir),
			SiteFile:  stringWithDefault(lookup, "PIXEL_SITE_FILE", defaultSiteFile),
		},
		Log: LogConfig{
			Level: stringWithDefault(lookup, "PIXEL_LOG_LEVEL", defaultLogLevel),
		},
		Geo: GeoConfig{
			Endpoint: stringWithDefault(lookup, "PIXEL_GEO_ENDPOINT", defaultGeoEndpoint),
			APIKey:   stringWithDefault(lookup, "PIXEL_GEO_API_KEY", ""),
			Timeout:  durationWithDefault(lookup, "PIXEL_GEO_TIMEOUT", defaultGeoTimeout),
		},
		Language: LanguageConfig{
			Timezone:     stringWithDefault(lookup, "PIXEL_TIMEZONE", defaultTimezone),
			MaxRedirects: intWithDefault(lookup, "PIXEL_MAX_LANGUAGE_REDIRECTS", defaultMaxRedirects),
		},
		Preference: PreferenceConfig{
			TTL:           durationWithDefault(lookup, "PIXEL_PREFERENCE_TTL", defaultPreferenceTTL),
			RedisAddr:     stringWithDefault(lookup, "PIXEL_REDIS_ADDR", ""),
			RedisPassword: stringWithDefault(lookup, "PIXEL_REDIS_PASSWORD", ""),
			RedisDB:       intWithDefault(lookup, "PIXEL_REDIS_DB", 0),
			RedisPrefix:   stringWithDefault(lookup, "PIXEL_REDIS_PREFIX", defaultRedisKeyPrefix),
			VisitorTTL:    durationWithDefault(lookup, "PIXEL_VISITOR_TTL", defaultVisitorCookieTTL),
		},
		Inquiry: InquiryConfig{
			RelayTimeout: durationWithDefault(lookup, "PIXEL_INQUIRY_TIMEOUT", defaultInquiryTimeout),
		},
	}

	var invalid []string
	if loc, err := time.LoadLocation(cfg.Language.Timezone); err == nil {
		cfg.Language.Location = loc
	} else {
		invalid = append(invalid, "Language.Timezone")
	}
	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "Server.Port")
	}
	switch cfg.Server.Environment {
	case "local", "dev", "staging", "prod":
	default:
		invalid = append(invalid, "Server.Environment")
	}
	if strings.TrimSpace(cfg.Geo.Endpoint) == "" {
		invalid = append(invalid, "Geo.Endpoint")
	}
	if cfg.Geo.Timeout <= 0 {
		invalid = append(invalid, "Geo.Timeout")
	}
	if cfg.Language.MaxRedirects < 0 {
		invalid = append(invalid, "Language.MaxRedirects")
	}
	if cfg.Preference.TTL <= 0 {
		invalid = append(invalid, "Preference.TTL")
	}
	if cfg.Inquiry.RelayTimeout <= 0 {
		invalid = append(invalid, "Inquiry.RelayTimeout")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
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
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
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
