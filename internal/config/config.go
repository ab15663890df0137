package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/fraudscope/internal/domain/analysis"
)

// DefaultPath is read when no path is given. It may be absent.
const DefaultPath = "config.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FRAUDSCOPE_"

// Customer input modes of the console form.
const (
	InputSelect   = "select"
	InputFreetext = "freetext"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port" validate:"min=1,max=65535"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		// RateLimit is action requests per second per client; 0 disables it.
		RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`
		RateBurst int     `yaml:"rate_burst" validate:"gte=0"`
	} `yaml:"server"`

	Backend struct {
		BaseURL string `yaml:"base_url" validate:"required,url"`
		// Timeout bounds each backend call; 0 waits indefinitely.
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"backend"`

	Console struct {
		CustomerInput       string         `yaml:"customer_input" validate:"oneof=select freetext"`
		CacheToggle         bool           `yaml:"cache_toggle"`
		ScorePrecision      ScorePrecision `yaml:"score_precision"`
		FenceStaleResponses bool           `yaml:"fence_stale_responses"`
	} `yaml:"console"`

	Log struct {
		Level  string `yaml:"level" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" validate:"oneof=json console"`
	} `yaml:"log"`
}

// ScorePrecision reads either a decimal count or "raw" from YAML.
type ScorePrecision struct {
	analysis.ScorePrecision
}

func (p *ScorePrecision) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: score_precision must be a number or \"raw\"", value.Line)
	}
	sp, err := analysis.ParseScorePrecision(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	p.ScorePrecision = sp
	return nil
}

func (p ScorePrecision) MarshalYAML() (any, error) {
	if p.Raw {
		return "raw", nil
	}
	return p.Digits, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 3000
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Server.RateLimit = 5
	cfg.Server.RateBurst = 10
	cfg.Backend.BaseURL = "http://localhost:8000"
	cfg.Console.CustomerInput = InputSelect
	cfg.Console.CacheToggle = true
	cfg.Console.ScorePrecision = ScorePrecision{analysis.FixedScore(3)}
	cfg.Console.FenceStaleResponses = true
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return &cfg
}

// ResolvePath picks the config file: the explicit path, then CONFIG_PATH,
// then DefaultPath. The bool reports whether the file must exist.
func ResolvePath(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, true
	}
	return DefaultPath, false
}

// Load reads .env, the YAML file at path and FRAUDSCOPE_* overrides, in that
// order of increasing precedence, then validates the result.
func Load(path string, required bool) (*Config, error) {
	// a missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and the backend URL.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid config: backend.base_url %q must be an http(s) URL", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 || c.Server.ShutdownTimeout < 0 {
		return errors.New("invalid config: timeouts must not be negative")
	}
	return nil
}

// FreetextInput reports whether the console asks for a typed customer name
// instead of offering the fetched list.
func (c *Config) FreetextInput() bool {
	return c.Console.CustomerInput == InputFreetext
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	flt := func(key string, dst *float64) {
		if v, ok := lookup(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	num("PORT", &c.Server.Port)
	dur("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	flt("RATE_LIMIT", &c.Server.RateLimit)
	num("RATE_BURST", &c.Server.RateBurst)
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	str("BACKEND_URL", &c.Backend.BaseURL)
	dur("BACKEND_TIMEOUT", &c.Backend.Timeout)
	str("CUSTOMER_INPUT", &c.Console.CustomerInput)
	boolean("CACHE_TOGGLE", &c.Console.CacheToggle)
	boolean("FENCE_STALE_RESPONSES", &c.Console.FenceStaleResponses)
	if v, ok := lookup(EnvPrefix + "SCORE_PRECISION"); ok {
		sp, err := analysis.ParseScorePrecision(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSCORE_PRECISION: %w", EnvPrefix, err))
		} else {
			c.Console.ScorePrecision = ScorePrecision{sp}
		}
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
