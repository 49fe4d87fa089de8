package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry/npm"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry/pypi"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Point XDG at an empty directory so no real config leaks in.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Registry.PyPIURL != pypi.DefaultBaseURL {
		t.Errorf("pypi url = %q, want %q", cfg.Registry.PyPIURL, pypi.DefaultBaseURL)
	}
	if cfg.Registry.NpmURL != npm.DefaultBaseURL {
		t.Errorf("npm url = %q, want %q", cfg.Registry.NpmURL, npm.DefaultBaseURL)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("cache backend = %q, want file", cfg.Cache.Backend)
	}
	if err := cfg.runConfig().Validate(); err != nil {
		t.Errorf("default run config invalid: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[registry]
pypi_url = "https://pypi.internal.example.com/pypi"

[run]
concurrency = 12
lookup_timeout = "3s"
max_retries = 4
run_timeout = "90s"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/2"
ttl = "1h"

[packages]
internal_patterns = ["acme-*", "@acme/*"]
trusted_prefixes = ["acme-"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Registry.PyPIURL != "https://pypi.internal.example.com/pypi" {
		t.Errorf("pypi url = %q", cfg.Registry.PyPIURL)
	}
	// Unset sections keep defaults.
	if cfg.Registry.NpmURL != npm.DefaultBaseURL {
		t.Errorf("npm url = %q, want default", cfg.Registry.NpmURL)
	}

	rc := cfg.runConfig()
	if rc.Concurrency != 12 || rc.MaxRetries != 4 {
		t.Errorf("run config = %+v", rc)
	}
	if rc.LookupTimeout != 3*time.Second || rc.RunTimeout != 90*time.Second {
		t.Errorf("timeouts = %s / %s", rc.LookupTimeout, rc.RunTimeout)
	}

	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != "redis://localhost:6379/2" {
		t.Errorf("cache config = %+v", cfg.Cache)
	}
	if time.Duration(cfg.Cache.TTL) != time.Hour {
		t.Errorf("cache ttl = %s, want 1h", time.Duration(cfg.Cache.TTL))
	}
	if len(cfg.Packages.InternalPatterns) != 2 || len(cfg.Packages.TrustedPrefixes) != 1 {
		t.Errorf("packages config = %+v", cfg.Packages)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loadConfig with missing explicit path succeeded, want error")
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[run]\nlookup_timeout = \"soon\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig with bad duration succeeded, want error")
	}
}
