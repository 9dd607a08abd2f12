package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/thebartekbanach/imgurproxy/pkg/fetcher"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

const envPrefix = "IMGURPROXY_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Config is loaded once at startup and only read afterwards.
type Config struct {
	ListenAddr string
	BasePath   string

	Timeout       time.Duration
	Extensions    []string
	ParallelProbe bool
	Coalesce      bool

	Headers       fetcher.HeaderTemplate
	CacheMaxAge   time.Duration
	MaxBodyBytes  int64
	MaxRedirects  int
	RedirectHosts []string

	AllowedOrigins []string

	LogLevel  slog.Level
	LogFormat string
}

func Default() Config {
	fetcherDefaults := fetcher.DefaultConfig()

	return Config{
		ListenAddr:     ":8000",
		Timeout:        fetcherDefaults.Timeout,
		Extensions:     []string{"jpg", "png", "gif", "webp", "mp4"},
		Coalesce:       true,
		Headers:        fetcherDefaults.Headers,
		CacheMaxAge:    24 * time.Hour,
		MaxBodyBytes:   fetcherDefaults.MaxBodyBytes,
		MaxRedirects:   fetcherDefaults.MaxRedirects,
		RedirectHosts:  fetcherDefaults.RedirectHosts,
		AllowedOrigins: []string{"*"},
		LogLevel:       slog.LevelInfo,
		LogFormat:      "text",
	}
}

func FromEnvironment() (Config, error) {
	return Load(os.LookupEnv)
}

func Load(lookup LookupFunc) (Config, error) {
	config := Default()
	env := environment{lookup: lookup}

	env.text("LISTEN_ADDR", &config.ListenAddr)
	env.basePath("BASE_PATH", &config.BasePath)

	env.duration("TIMEOUT", &config.Timeout)
	env.extensions("EXTENSIONS", &config.Extensions)
	env.boolean("PARALLEL_PROBE", &config.ParallelProbe)
	env.boolean("COALESCE", &config.Coalesce)

	env.text("USER_AGENT", &config.Headers.UserAgent)
	env.text("ACCEPT", &config.Headers.Accept)
	env.text("ACCEPT_LANGUAGE", &config.Headers.AcceptLanguage)
	env.text("REFERER", &config.Headers.Referer)
	env.duration("CACHE_MAX_AGE", &config.CacheMaxAge)
	env.size("MAX_BODY_BYTES", &config.MaxBodyBytes)
	env.redirects("MAX_REDIRECTS", &config.MaxRedirects)
	env.list("REDIRECT_HOSTS", &config.RedirectHosts)

	env.list("ALLOWED_ORIGINS", &config.AllowedOrigins)

	env.logLevel("LOG_LEVEL", &config.LogLevel)
	env.logFormat("LOG_FORMAT", &config.LogFormat)

	if len(env.errs) > 0 {
		return Config{}, errors.Join(env.errs...)
	}

	return config, nil
}

// environment collects every invalid value so a misconfigured
// deployment learns about all of them at once.
type environment struct {
	lookup LookupFunc
	errs   []error
}

func (env *environment) get(key string) (string, bool) {
	value, found := env.lookup(envPrefix + key)
	if !found {
		return "", false
	}

	value = strings.TrimSpace(value)
	return value, value != ""
}

func (env *environment) fail(key, value, reason string) {
	env.errs = append(env.errs, fmt.Errorf("%w: %s%s=%q: %s", ErrInvalidValue, envPrefix, key, value, reason))
}

func (env *environment) text(key string, target *string) {
	if value, found := env.get(key); found {
		*target = value
	}
}

func (env *environment) basePath(key string, target *string) {
	value, found := env.get(key)
	if !found {
		return
	}

	if !strings.HasPrefix(value, "/") {
		env.fail(key, value, "must start with /")
		return
	}

	*target = strings.TrimRight(value, "/")
}

// duration accepts Go durations and plain integer seconds.
func (env *environment) duration(key string, target *time.Duration) {
	value, found := env.get(key)
	if !found {
		return
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		seconds, convErr := strconv.ParseInt(value, 10, 64)
		if convErr != nil {
			env.fail(key, value, "not a duration")
			return
		}
		parsed = time.Duration(seconds) * time.Second
	}

	if parsed <= 0 {
		env.fail(key, value, "must be positive")
		return
	}

	*target = parsed
}

func (env *environment) boolean(key string, target *bool) {
	value, found := env.get(key)
	if !found {
		return
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		env.fail(key, value, "not a boolean")
		return
	}

	*target = parsed
}

func (env *environment) size(key string, target *int64) {
	value, found := env.get(key)
	if !found {
		return
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		env.fail(key, value, "must be a positive integer")
		return
	}

	*target = parsed
}

func (env *environment) redirects(key string, target *int) {
	value, found := env.get(key)
	if !found {
		return
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		env.fail(key, value, "must be a non-negative integer")
		return
	}

	*target = parsed
}

func (env *environment) list(key string, target *[]string) {
	value, found := env.get(key)
	if !found {
		return
	}

	items := splitList(value)
	if len(items) == 0 {
		env.fail(key, value, "list is empty")
		return
	}

	*target = items
}

func (env *environment) extensions(key string, target *[]string) {
	value, found := env.get(key)
	if !found {
		return
	}

	items := splitList(value)
	if len(items) == 0 {
		env.fail(key, value, "list is empty")
		return
	}

	extensions := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		extension, known := resolver.NormalizeExtension(item)
		if !known {
			env.fail(key, value, fmt.Sprintf("%q is not a served media extension", item))
			return
		}

		if !seen[extension] {
			seen[extension] = true
			extensions = append(extensions, extension)
		}
	}

	*target = extensions
}

func (env *environment) logLevel(key string, target *slog.Level) {
	value, found := env.get(key)
	if !found {
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		env.fail(key, value, "unknown log level")
		return
	}

	*target = level
}

func (env *environment) logFormat(key string, target *string) {
	value, found := env.get(key)
	if !found {
		return
	}

	value = strings.ToLower(value)
	if value != "text" && value != "json" {
		env.fail(key, value, "must be text or json")
		return
	}

	*target = value
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}

var ErrInvalidValue = errors.New("invalid configuration value")
