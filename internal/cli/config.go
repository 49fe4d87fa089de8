package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/confusion"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry/npm"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry/pypi"
)

// duration lets TOML carry values like "30s" or "5m".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// config is the on-disk configuration, loaded from
// $XDG_CONFIG_HOME/confcheck/config.toml (or ~/.config/confcheck/).
// Every field has a working default so the file is optional.
type config struct {
	Registry registryConfig `toml:"registry"`
	Run      runConfig      `toml:"run"`
	Cache    cacheConfig    `toml:"cache"`
	Packages packagesConfig `toml:"packages"`
}

type registryConfig struct {
	PyPIURL string `toml:"pypi_url"`
	NpmURL  string `toml:"npm_url"`
}

type runConfig struct {
	Concurrency   int      `toml:"concurrency"`
	LookupTimeout duration `toml:"lookup_timeout"`
	MaxRetries    int      `toml:"max_retries"`
	RunTimeout    duration `toml:"run_timeout"`
}

type cacheConfig struct {
	// Backend is one of "file", "redis", "mongo", "none".
	Backend  string   `toml:"backend"`
	TTL      duration `toml:"ttl"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	MongoURI string   `toml:"mongo_uri"`
}

type packagesConfig struct {
	// InternalPatterns and PublicPatterns assign a declared source to
	// manifest entries that do not state one. Shell-glob syntax.
	InternalPatterns []string `toml:"internal_patterns"`
	PublicPatterns   []string `toml:"public_patterns"`

	// TrustedPrefixes confirm organization ownership of public registry
	// entries whose names carry these prefixes.
	TrustedPrefixes []string `toml:"trusted_prefixes"`
}

func defaultConfig() config {
	return config{
		Registry: registryConfig{
			PyPIURL: pypi.DefaultBaseURL,
			NpmURL:  npm.DefaultBaseURL,
		},
		Run: runConfig{
			Concurrency:   confusion.DefaultConfig.Concurrency,
			LookupTimeout: duration(confusion.DefaultConfig.LookupTimeout),
			MaxRetries:    confusion.DefaultConfig.MaxRetries,
			RunTimeout:    duration(confusion.DefaultConfig.RunTimeout),
		},
		Cache: cacheConfig{
			Backend: "file",
			TTL:     duration(24 * time.Hour),
		},
	}
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default file is not an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return cfg, fmt.Errorf("config file: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// runConfig converts the config's run section into the engine's Config.
func (c config) runConfig() confusion.Config {
	return confusion.Config{
		Concurrency:   c.Run.Concurrency,
		LookupTimeout: time.Duration(c.Run.LookupTimeout),
		MaxRetries:    c.Run.MaxRetries,
		RunTimeout:    time.Duration(c.Run.RunTimeout),
		RetryDelay:    confusion.DefaultConfig.RetryDelay,
	}
}
