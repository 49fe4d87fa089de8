// Package cli implements the confcheck command-line interface.
//
// Commands cover running dependency-confusion checks against manifest
// files or single packages, serving the latest findings over HTTP, and
// managing the registry response cache. Logging uses charmbracelet/log
// with loggers carried through context.Context; --verbose (-v) enables
// debug level.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ShadowGuardAI/codeintel-dependency-confusion-checker/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "confcheck"

// rootOpts holds flags shared by every subcommand.
type rootOpts struct {
	verbose    bool
	configPath string
}

// Execute runs the confcheck CLI. The context is cancelled on SIGINT and
// SIGTERM by the caller.
func Execute(ctx context.Context) error {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          appName,
		Short:        "Confcheck detects dependency confusion exposure",
		Long: `Confcheck checks locally declared packages against public registries
(PyPI, npm) and flags names that an attacker could claim or shadow.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/confcheck/config.toml)")

	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
