package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/protosy/internal/config"
	"firestige.xyz/protosy/internal/console"
	"firestige.xyz/protosy/internal/log"
	"firestige.xyz/protosy/internal/metrics"
	"firestige.xyz/protosy/internal/plugin"
)

func newConsoleCmd() *cobra.Command {
	var preload []string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run the interactive plugin console",
		Long: `Run the interactive plugin console.

Plugins from the configuration (plugins.preload, then plugins.dir when
plugins.autoload is set) and from --load are loaded before the prompt
appears. Every plugin still loaded on exit is deactivated and unmapped.

Examples:
  protosy console
  protosy console -c protosy.yml
  protosy console --load ./libupcase.so`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			cfg.Plugins.Preload = append(cfg.Plugins.Preload, preload...)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runConsole(ctx, cfg, plugin.NewRegistry(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringSliceVarP(&preload, "load", "l", nil, "plugin library to load before the prompt (repeatable)")
	return cmd
}

func runConsole(ctx context.Context, cfg *config.GlobalConfig, registry *plugin.Registry, in io.Reader, out io.Writer) error {
	logger := log.GetLogger()

	if cfg.Metrics.Enabled {
		server := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := server.Stop(context.Background()); err != nil {
				logger.WithError(err).Warn("Failed to stop metrics server")
			}
		}()
	}

	defer func() {
		if cerr := registry.Close(); cerr != nil {
			logger.WithError(cerr).Warn("Failed to release plugins")
		}
	}()

	loader := plugin.NewLoader(plugin.LoaderConfig{
		Dir:      cfg.Plugins.Dir,
		Patterns: cfg.Plugins.Patterns,
		Preload:  cfg.Plugins.Preload,
		Autoload: cfg.Plugins.Autoload,
	}, registry)
	loaded, lerr := loader.Load()
	if lerr != nil {
		logger.WithError(lerr).Warn("Some plugins failed to load")
	}
	logger.WithField("count", loaded).Info("Startup plugins loaded")

	c := console.New(registry, in, out,
		console.WithPrompts(cfg.Console.Prompt, cfg.Console.ArgPrompt),
		console.WithColor(cfg.Console.Color),
	)
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
