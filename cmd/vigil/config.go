package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/wikivigil/vigil/internal/model"
)

// cliConfig holds the panel's deployment configuration: where the wiki
// is, which tags get highlighted, and the default preference values
// users have not overridden.
type cliConfig struct {
	APIURL        string         `mapstructure:"api-url"`
	UserAgent     string         `mapstructure:"user-agent"`
	DBPath        string         `mapstructure:"db-path"`
	SettingsPath  string         `mapstructure:"settings-path"`
	Skin          string         `mapstructure:"skin"`
	DangerousTags []string       `mapstructure:"dangerous-tags"`
	Defaults      defaultsConfig `mapstructure:"defaults"`
}

type defaultsConfig struct {
	Origin    string `mapstructure:"origin"`
	Quantity  int    `mapstructure:"quantity"`
	Frequency int    `mapstructure:"frequency"`
	NewOnly   bool   `mapstructure:"new-only"`
	Namespace string `mapstructure:"namespace"`
	Direction string `mapstructure:"direction"`
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vigil"), nil
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	dir, err := configDir()
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetEnvPrefix("VIGIL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("api-url", "http://127.0.0.1:8484/api.php")
	v.SetDefault("user-agent", "vigil/"+version)
	v.SetDefault("db-path", filepath.Join(dir, "history.db"))
	v.SetDefault("settings-path", filepath.Join(dir, "settings.json"))
	v.SetDefault("skin", model.DefaultSkin)
	v.SetDefault("dangerous-tags", []string{"possible vandalism", "mw-blanking"})
	v.SetDefault("defaults.origin", model.DefaultOrigin)
	v.SetDefault("defaults.quantity", model.DefaultQuantity)
	v.SetDefault("defaults.frequency", model.DefaultFrequency)
	v.SetDefault("defaults.new-only", false)
	v.SetDefault("defaults.namespace", model.DefaultNamespace)
	v.SetDefault("defaults.direction", model.DefaultDirection)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(dir, "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// siteConfig assembles the static per-deployment configuration.
func (c cliConfig) siteConfig() model.SiteConfig {
	tags := make(map[string]bool, len(c.DangerousTags))
	for _, tag := range c.DangerousTags {
		tags[tag] = true
	}
	return model.SiteConfig{
		DangerousTags: tags,
		DefaultPrefs: model.Preferences{
			Origin:    c.Defaults.Origin,
			Quantity:  c.Defaults.Quantity,
			Frequency: c.Defaults.Frequency,
			NewOnly:   c.Defaults.NewOnly,
			Namespace: c.Defaults.Namespace,
			Direction: c.Defaults.Direction,
		},
	}
}
