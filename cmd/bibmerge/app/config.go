package app

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/bibmerge/pkg/constants"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/reconcile"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "BIBMERGE"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string

	// Config file
	ConfigFile string

	// Merge defaults
	Selectors []string
	Workers   int
	Direction reconcile.Direction
	Union     bool
	KeepKey   bool
	Strict    bool

	// Logging configuration
	DefaultLogLevel string
	LogFormat       string
	LogOutput       string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (BIBMERGE_*)
// 3. .env files
// 4. Config file (configFile, or .bibmerge.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("selectors", constants.DefaultSelectors)
	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("direction", reconcile.LeftToRight.String())
	v.SetDefault("union", true)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	// The unprefixed logging variables are honored as well.
	for _, key := range []string{"log_level", "log_format", "log_output"} {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), strings.ToUpper(key)); err != nil {
			return nil, errors.NewConfigError("env", "failed to bind "+key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".bibmerge")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit config file must exist; the search locations are optional.
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", err.Error(), err)
		}
	}

	direction, err := reconcile.ParseDirection(v.GetString("direction"))
	if err != nil {
		return nil, errors.NewConfigError("config", err.Error(), err)
	}

	config := &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no-color") || os.Getenv("NO_COLOR") != "",
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),

		Selectors: splitList(v.GetStringSlice("selectors")),
		Workers:   v.GetInt("workers"),
		Direction: direction,
		Union:     v.GetBool("union"),
		KeepKey:   v.GetBool("keep_key"),
		Strict:    v.GetBool("strict"),

		DefaultLogLevel: v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		LogOutput:       v.GetString("log_output"),
	}
	if config.ConfigFile != "" {
		config.ConfigFile = filepath.Clean(config.ConfigFile)
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// splitList accepts both YAML lists and comma separated environment values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return slices.Clip(out)
}
