package goji

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultCacheTTL is how long composed templates and template files stay cached
	DefaultCacheTTL = 300 * time.Second

	// DefaultTemplatesExt is appended to template names when loading files
	DefaultTemplatesExt = ".html"

	// DefaultMaxDepth bounds include/replace and partial nesting
	DefaultMaxDepth = 32

	// partialsSubdir is where partials live when no partials directory is configured
	partialsSubdir = "partials"
)

// Config holds compiler configuration options
type Config struct {
	CacheEnabled  bool          `yaml:"cache"`
	CacheTTL      time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	TemplatesDir  string        `yaml:"templates_dir"`
	PartialsDir   string        `yaml:"partials_dir"`                                   // Defaults to TemplatesDir/partials
	TemplatesExt  string        `yaml:"templates_ext" validate:"required,startswith=."` // Includes the leading dot
	MaxDepth      int           `yaml:"max_depth" validate:"gte=1"`
	ExprCacheSize int           `yaml:"expr_cache_size" validate:"gte=0"` // Compiled expressions kept; 0 uses the default
	Minify        bool          `yaml:"minify"`                           // Minify rendered output
	Logger        *slog.Logger  `yaml:"-" validate:"-"`
}

// Option is a functional option for configuring a Compiler or a single Compile call
type Option func(*Config)

// DefaultConfig returns the configuration used when no options are given
func DefaultConfig() Config {
	return Config{
		CacheEnabled: true,
		CacheTTL:     DefaultCacheTTL,
		TemplatesExt: DefaultTemplatesExt,
		MaxDepth:     DefaultMaxDepth,
	}
}

// WithConfig replaces the whole configuration. A nil Logger keeps the current one.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		logger := c.Logger
		*c = cfg
		if c.Logger == nil {
			c.Logger = logger
		}
	}
}

// WithCache enables or disables the template and compiled-template caches
func WithCache(enabled bool) Option {
	return func(c *Config) {
		c.CacheEnabled = enabled
	}
}

// WithCacheTTL sets how long cache entries live. Zero keeps entries until EmptyCache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.CacheTTL = ttl
	}
}

// WithTemplatesDir sets the directory g-include and g-replace names resolve against
func WithTemplatesDir(dir string) Option {
	return func(c *Config) {
		c.TemplatesDir = dir
	}
}

// WithPartialsDir sets the partials directory, overriding TemplatesDir/partials
func WithPartialsDir(dir string) Option {
	return func(c *Config) {
		c.PartialsDir = dir
	}
}

// WithTemplatesExt sets the template file extension, e.g. ".html"
func WithTemplatesExt(ext string) Option {
	return func(c *Config) {
		c.TemplatesExt = ext
	}
}

// WithMaxDepth bounds how deeply templates and partials may nest
func WithMaxDepth(depth int) Option {
	return func(c *Config) {
		c.MaxDepth = depth
	}
}

// WithExprCacheSize sets how many compiled expressions the compiler keeps.
// It only has an effect when passed to New.
func WithExprCacheSize(size int) Option {
	return func(c *Config) {
		c.ExprCacheSize = size
	}
}

// WithMinify enables minification of rendered output
func WithMinify(enabled bool) Option {
	return func(c *Config) {
		c.Minify = enabled
	}
}

// WithLogger sets the logger used for cache and composition diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// with returns a copy of c with opts applied; c itself is never modified.
func (c Config) with(opts ...Option) Config {
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// PartialsPath returns the effective partials directory
func (c Config) PartialsPath() string {
	if c.PartialsDir != "" {
		return c.PartialsDir
	}
	return filepath.Join(c.TemplatesDir, partialsSubdir)
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration, returning an error wrapping ErrInvalidConfig
func (c Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// LoadConfigFile reads a YAML configuration file on top of DefaultConfig.
// If the file doesn't exist, the defaults are returned.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Relative directories are relative to the config file
	base := filepath.Dir(path)
	if cfg.TemplatesDir != "" && !filepath.IsAbs(cfg.TemplatesDir) {
		cfg.TemplatesDir = filepath.Join(base, cfg.TemplatesDir)
	}
	if cfg.PartialsDir != "" && !filepath.IsAbs(cfg.PartialsDir) {
		cfg.PartialsDir = filepath.Join(base, cfg.PartialsDir)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
