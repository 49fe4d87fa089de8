package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/internal/server"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/cache"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/confusion"
	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/inventory"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string
	interval time.Duration
	noCache  bool
}

func newServeCmd(root *rootOpts) *cobra.Command {
	opts := serveOpts{addr: ":8818", interval: time.Hour}

	cmd := &cobra.Command{
		Use:   "serve <manifest>",
		Short: "Serve findings for a manifest over HTTP",
		Long: `Run checks for a manifest on an interval and expose the latest report
at /api/findings for CI dashboards. /healthz reports liveness.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().DurationVar(&opts.interval, "interval", opts.interval, "re-check interval")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the registry response cache")

	return cmd
}

func runServe(ctx context.Context, root *rootOpts, opts serveOpts, manifest string) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}

	backend, err := newCacheBackend(ctx, cfg, opts.noCache)
	if err != nil {
		logger.Warnf("Cache disabled: %v", err)
		backend = cache.NewNullCache()
	}
	defer backend.Close()

	runner, refs, err := newManifestRunner(cfg, backend, manifest, logger)
	if err != nil {
		return err
	}

	srv := server.New(logger)
	refresh := func() {
		report, err := runner.Run(ctx, refs)
		if err != nil {
			logger.Errorf("check failed: %v", err)
			return
		}
		srv.SetReport(report)
		logger.Infof("checked %d packages, %d exposed", report.Total, report.Counts[confusion.ClassExposed])
	}
	refresh()

	httpSrv := &http.Server{Addr: opts.addr, Handler: srv.Handler()}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", opts.addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refresh()
		case err := <-errCh:
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return ctx.Err()
		}
	}
}

// newManifestRunner builds a runner and package list for a manifest file
// using the configured registry, evaluator and cache.
func newManifestRunner(cfg config, backend cache.Cache, manifest string, logger *log.Logger) (*confusion.Runner, []confusion.PackageRef, error) {
	parser, err := inventory.ForFile(manifest)
	if err != nil {
		return nil, nil, err
	}
	refs, err := parser.Parse(manifest)
	if err != nil {
		return nil, nil, err
	}
	if len(refs) == 0 {
		return nil, nil, errors.New("manifest declares no packages")
	}
	inventory.NewAssigner(cfg.Packages.InternalPatterns, cfg.Packages.PublicPatterns).Apply(refs)

	client, err := newRegistryClient(refs[0].Ecosystem, cfg, "", backend)
	if err != nil {
		return nil, nil, err
	}

	eval := confusion.NewEvaluator(ownershipVerifier(cfg))
	runner, err := confusion.NewRunner(client, eval, cfg.runConfig(), logger.Debugf)
	if err != nil {
		return nil, nil, err
	}
	return runner, refs, nil
}
