// Package commands implements the goji command-line interface.
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/livefir/goji"
	"github.com/livefir/goji/cmd/goji/internal/logging"
)

// defaultConfigPath is read when it exists and no --config is given
const defaultConfigPath = "goji.yaml"

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath   string
	EnvFile      string
	TemplatesDir string
	PartialsDir  string
	LogLevel     string
	Minify       bool
	NoCache      bool

	logger *slog.Logger
}

// baseEnv holds defaults sourced from GOJI_* environment variables.
type baseEnv struct {
	// ConfigPath is the goji.yaml path from GOJI_CONFIG.
	ConfigPath string `env:"GOJI_CONFIG"`
	// TemplatesDir is the templates directory from GOJI_TEMPLATES_DIR.
	TemplatesDir string `env:"GOJI_TEMPLATES_DIR"`
	// PartialsDir is the partials directory from GOJI_PARTIALS_DIR.
	PartialsDir string `env:"GOJI_PARTIALS_DIR"`
	// LogLevel is the logging level from GOJI_LOG_LEVEL.
	LogLevel string `env:"GOJI_LOG_LEVEL"`
	// Minify toggles output minification from GOJI_MINIFY.
	Minify bool `env:"GOJI_MINIFY"`
	// NoCache disables caching from GOJI_NO_CACHE.
	NoCache bool `env:"GOJI_NO_CACHE"`
}

// BuildInfo identifies the binary for the version command.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand constructs the goji root command with its subcommands.
func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:           "goji",
		Short:         "Render goji directive templates",
		Long:          "goji composes HTML templates with g-include/g-replace and renders g-* directives against YAML or JSON data.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.applyEnv(cmd); err != nil {
				return err
			}
			opts.logger = logging.NewLogger(cmd.ErrOrStderr(), logging.ParseLevel(opts.LogLevel))
			opts.logger.Debug("logger initialized", "level", opts.LogLevel)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to goji.yaml (default ./goji.yaml when present)")
	flags.StringVar(&opts.EnvFile, "env-file", "", "Load GOJI_* variables from a .env file")
	flags.StringVarP(&opts.TemplatesDir, "templates-dir", "t", "", "Directory template names resolve against")
	flags.StringVar(&opts.PartialsDir, "partials-dir", "", "Partials directory (default <templates-dir>/partials)")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.Minify, "minify", false, "Minify rendered output")
	flags.BoolVar(&opts.NoCache, "no-cache", false, "Disable template caching")

	cmd.AddCommand(
		newRenderCommand(opts),
		newCheckCommand(opts),
		newVersionCommand(build),
	)

	return cmd
}

// applyEnv fills every flag the user did not set from GOJI_* variables, after loading
// the optional .env file.
func (o *Options) applyEnv(cmd *cobra.Command) error {
	if o.EnvFile != "" {
		if err := godotenv.Load(o.EnvFile); err != nil {
			return fmt.Errorf("load env file %q: %w", o.EnvFile, err)
		}
	}

	var e baseEnv
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse GOJI_* environment: %w", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("config") && e.ConfigPath != "" {
		o.ConfigPath = e.ConfigPath
	}
	if !flags.Changed("templates-dir") && e.TemplatesDir != "" {
		o.TemplatesDir = e.TemplatesDir
	}
	if !flags.Changed("partials-dir") && e.PartialsDir != "" {
		o.PartialsDir = e.PartialsDir
	}
	if !flags.Changed("log-level") && e.LogLevel != "" {
		o.LogLevel = e.LogLevel
	}
	if !flags.Changed("minify") && e.Minify {
		o.Minify = true
	}
	if !flags.Changed("no-cache") && e.NoCache {
		o.NoCache = true
	}
	return nil
}

// newCompiler builds a compiler from the config file overlaid with flags and environment.
func (o *Options) newCompiler() (*goji.Compiler, error) {
	path := o.ConfigPath
	if path == "" {
		path = defaultConfigPath
	} else if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file %q not found", path)
	}

	cfg, err := goji.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}

	opts := []goji.Option{goji.WithConfig(cfg), goji.WithLogger(o.logger)}
	if o.TemplatesDir != "" {
		opts = append(opts, goji.WithTemplatesDir(o.TemplatesDir))
	}
	if o.PartialsDir != "" {
		opts = append(opts, goji.WithPartialsDir(o.PartialsDir))
	}
	if o.Minify {
		opts = append(opts, goji.WithMinify(true))
	}
	if o.NoCache {
		opts = append(opts, goji.WithCache(false))
	}

	compiler, err := goji.New(opts...)
	if err != nil {
		return nil, err
	}

	n, err := compiler.RegisterPartialsDir()
	if err != nil {
		return nil, err
	}
	o.logger.Debug("compiler ready", "templates_dir", compiler.Config().TemplatesDir, "partials", n)
	return compiler, nil
}
