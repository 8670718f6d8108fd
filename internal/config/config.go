package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/milden6/wordgraph"
)

// envPrefix is prepended to environment variable names, e.g. DAWGTEST_INPUT.
const envPrefix = "DAWGTEST"

// Config holds all configuration for the dictionary tester
type Config struct {
	Input      string `mapstructure:"input"`
	OutputDir  string `mapstructure:"output_dir"`
	OutputFile string `mapstructure:"output_file"`
	Storage    string `mapstructure:"storage"`
	LogLevel   string `mapstructure:"log_level"`
	Probes     int    `mapstructure:"probes"`
	Seed       int64  `mapstructure:"seed"`
}

// LoadConfig loads configuration from an optional file, environment
// variables and the given flags, in increasing order of precedence.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("input", "")
	v.SetDefault("output_dir", "graphs")
	v.SetDefault("output_file", "dictionary.dawg")
	v.SetDefault("storage", "array")
	v.SetDefault("log_level", "info")
	v.SetDefault("probes", 1000)
	v.SetDefault("seed", 1)
}

// Flags returns the command line flags understood by LoadConfig.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("dawgtest", pflag.ContinueOnError)
	fs.String("config", "", "path to a config file")
	fs.String("input", "", "word list, one word per line")
	fs.String("output_dir", "graphs", "directory the graph is written to")
	fs.String("output_file", "dictionary.dawg", "name of the written graph")
	fs.String("storage", "array", "node storage used while building: array or list")
	fs.String("log_level", "info", "log level")
	fs.Int("probes", 1000, "number of random words that must not be found")
	fs.Int64("seed", 1, "seed for the random probes")
	return fs
}

// StorageKind returns the node storage named by the configuration.
func (c *Config) StorageKind() (wordgraph.Storage, error) {
	return wordgraph.ParseStorage(c.Storage)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input word list is required")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if _, err := c.StorageKind(); err != nil {
		return err
	}
	if c.Probes < 0 {
		return fmt.Errorf("invalid probe count: %d", c.Probes)
	}
	return nil
}
