package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/cache"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/confusion"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/inventory"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry/npm"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/registry/pypi"
)

// ErrExposureDetected is returned by the check command when any package is
// classified as exposed, so callers can map it to a non-zero exit code.
var ErrExposureDetected = errors.New("exposed packages detected")

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	pkg         string // single package name instead of a manifest
	pkgVersion  string // declared version for --package
	source      string // declared source for --package
	ecosystem   string // registry selection for --package
	registryURL string // base URL override
	output      string // JSON report file path
	noCache     bool   // disable the response cache
	concurrency int    // worker override, 0 keeps config
}

func newCheckCmd(root *rootOpts) *cobra.Command {
	opts := checkOpts{source: "internal", ecosystem: "pypi"}

	cmd := &cobra.Command{
		Use:   "check [manifest]",
		Short: "Check packages for dependency confusion exposure",
		Long: `Check locally declared packages against a public registry.

The argument is a dependency manifest (requirements.txt or package.json).
Alternatively --package checks a single name.

Examples:
  confcheck check requirements.txt
  confcheck check package.json --output findings.json
  confcheck check --package internal-auth-lib --pkg-version 1.2.0
  confcheck check --package left-pad --source public --registry npm`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var manifest string
			if len(args) > 0 {
				manifest = args[0]
			}
			if (manifest == "") == (opts.pkg == "") {
				return errors.New("provide either a manifest file or --package")
			}
			return runCheck(cmd.Context(), root, opts, manifest)
		},
	}

	cmd.Flags().StringVarP(&opts.pkg, "package", "p", "", "check a single package name")
	cmd.Flags().StringVar(&opts.pkgVersion, "pkg-version", "", "declared version for --package")
	cmd.Flags().StringVar(&opts.source, "source", opts.source, "declared source for --package (internal|public|unknown)")
	cmd.Flags().StringVar(&opts.ecosystem, "registry", opts.ecosystem, "registry to check against (pypi|npm)")
	cmd.Flags().StringVar(&opts.registryURL, "registry-url", "", "registry base URL override")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the JSON report to a file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the registry response cache")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "concurrent lookups (overrides config)")

	return cmd
}

func runCheck(ctx context.Context, root *rootOpts, opts checkOpts, manifest string) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}

	refs, ecosystem, err := collectRefs(cfg, opts, manifest)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		printInfo("No packages to check")
		return nil
	}

	backend, err := newCacheBackend(ctx, cfg, opts.noCache)
	if err != nil {
		logger.Warnf("Cache disabled: %v", err)
		backend = cache.NewNullCache()
	}
	defer backend.Close()

	client, err := newRegistryClient(ecosystem, cfg, opts.registryURL, backend)
	if err != nil {
		return err
	}

	runCfg := cfg.runConfig()
	if opts.concurrency > 0 {
		runCfg.Concurrency = opts.concurrency
	}

	eval := confusion.NewEvaluator(ownershipVerifier(cfg))
	runner, err := confusion.NewRunner(client, eval, runCfg, logger.Debugf)
	if err != nil {
		return err
	}

	logger.Debugf("checking %d packages against %s", len(refs), client.Name())
	report, err := runner.Run(ctx, refs)
	if err != nil {
		return err
	}

	printReport(report)
	if opts.output != "" {
		if err := writeReport(opts.output, report); err != nil {
			return err
		}
		printDetail("Report: %s", opts.output)
	}

	if report.HasExposure() {
		return ErrExposureDetected
	}
	return nil
}

// collectRefs produces the packages to check and the registry ecosystem
// they belong to, either from a manifest file or from --package flags.
func collectRefs(cfg config, opts checkOpts, manifest string) ([]confusion.PackageRef, string, error) {
	assigner := inventory.NewAssigner(cfg.Packages.InternalPatterns, cfg.Packages.PublicPatterns)

	if manifest != "" {
		parser, err := inventory.ForFile(manifest)
		if err != nil {
			return nil, "", err
		}
		refs, err := parser.Parse(manifest)
		if err != nil {
			return nil, "", fmt.Errorf("parse %s: %w", manifest, err)
		}
		assigner.Apply(refs)
		ecosystem := "pypi"
		if len(refs) > 0 {
			ecosystem = refs[0].Ecosystem
		}
		return refs, ecosystem, nil
	}

	source, err := confusion.ParseSource(opts.source)
	if err != nil {
		return nil, "", err
	}
	refs := []confusion.PackageRef{{
		Name:      opts.pkg,
		Version:   opts.pkgVersion,
		Source:    source,
		Ecosystem: opts.ecosystem,
	}}
	assigner.Apply(refs)
	return refs, opts.ecosystem, nil
}

// newRegistryClient builds a registry client for the ecosystem, applying
// the configured or overridden base URL.
func newRegistryClient(ecosystem string, cfg config, overrideURL string, backend cache.Cache) (registry.Client, error) {
	ttl := time.Duration(cfg.Cache.TTL)
	switch ecosystem {
	case "pypi":
		url := cfg.Registry.PyPIURL
		if overrideURL != "" {
			url = overrideURL
		}
		return pypi.NewClient(backend, ttl, url), nil
	case "npm":
		url := cfg.Registry.NpmURL
		if overrideURL != "" {
			url = overrideURL
		}
		return npm.NewClient(backend, ttl, url), nil
	default:
		return nil, fmt.Errorf("unsupported registry: %s", ecosystem)
	}
}

// newCacheBackend builds the configured cache backend.
func newCacheBackend(ctx context.Context, cfg config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case "", "file":
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, err
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case "mongo":
		mc, err := cache.NewMongoCache(ctx, cfg.Cache.MongoURI, appName)
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Cache.Backend)
	}
}

func ownershipVerifier(cfg config) confusion.OwnershipVerifier {
	if len(cfg.Packages.TrustedPrefixes) == 0 {
		return nil
	}
	return confusion.TrustedPrefixes(cfg.Packages.TrustedPrefixes...)
}
