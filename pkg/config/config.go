// Package config loads the forgecheck configuration from an optional YAML
// file, FORGECHECK_* environment variables and built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lerenn/forgecheck/pkg/forge"
	"github.com/spf13/viper"
)

// Repo selects the deployment repository to scan. URL switches to the GitHub
// API source; otherwise Path is opened as a local clone.
type Repo struct {
	Path     string `mapstructure:"path"`
	URL      string `mapstructure:"url"`
	Remote   string `mapstructure:"remote"`
	Manifest string `mapstructure:"manifest"`
}

// Forge configures the registry endpoint.
type Forge struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Cache configures the registry snapshot persisted between runs.
type Cache struct {
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// Config is the full forgecheck configuration.
type Config struct {
	Repo  Repo  `mapstructure:"repo"`
	Forge Forge `mapstructure:"forge"`
	Cache Cache `mapstructure:"cache"`
}

// Load reads the configuration. An empty configPath means defaults and
// environment only; a named file that cannot be read is an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("repo.path", ".")
	v.SetDefault("repo.remote", "origin")
	v.SetDefault("repo.manifest", "Puppetfile")
	v.SetDefault("forge.url", forge.DefaultBaseURL)
	v.SetDefault("forge.timeout", 30*time.Second)
	v.SetDefault("cache.path", filepath.Join(os.TempDir(), "forgecheck-cache.json"))
	v.SetDefault("cache.ttl", forge.DefaultTTL)

	v.SetEnvPrefix("FORGECHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %q: %w", configPath, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &config, nil
}
