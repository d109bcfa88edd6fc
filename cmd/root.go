// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"

	"firestige.xyz/protosy/internal/config"
	"firestige.xyz/protosy/internal/log"
)

var (
	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "protosy",
		Short: "protosy - native plugin host",
		Long: `protosy loads native shared libraries that implement the plugin C ABI
(name, initialize, on_load, on_unload), activates them and keeps them in an
ordered registry addressable by name or index.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults and PROTOSY_* environment when empty)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"override log level (trace/debug/info/warn/error)")

	root.AddCommand(newConsoleCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig() (*config.GlobalConfig, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.ValidateAndApplyDefaults(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setup loads configuration and initialises logging.
func setup() (*config.GlobalConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := log.Init(&cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}
