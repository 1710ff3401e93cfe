// Package config loads plox.yaml, the run configuration for the CLI
// wrapping the ordering core: which game to target, where its rule files
// live, and which sorter variant to use. It layers defaults, a config
// file, and environment overrides in that precedence order.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is PLOX's run configuration.
type Config struct {
	Game           string `mapstructure:"game"`
	RulesDir       string `mapstructure:"rules_dir"`
	ConfigPath     string `mapstructure:"-"`
	UnstableSorter bool   `mapstructure:"unstable_sorter"`
	NonInteractive bool   `mapstructure:"non_interactive"`
}

// Load reads plox.yaml (if present) from the current directory over the
// library defaults, and lets PLOX_-prefixed environment variables
// override both.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("game", "tes3")
	v.SetDefault("rules_dir", "rules")
	v.SetDefault("unstable_sorter", false)
	v.SetDefault("non_interactive", false)

	v.SetConfigName("plox")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PLOX")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validGames = map[string]bool{"tes3": true, "openmw": true, "cyberpunk": true}

func validate(cfg *Config) error {
	if !validGames[cfg.Game] {
		return fmt.Errorf("config: unknown game %q (want one of tes3, openmw, cyberpunk)", cfg.Game)
	}
	if cfg.RulesDir == "" {
		return fmt.Errorf("config: rules_dir must not be empty")
	}
	return nil
}
