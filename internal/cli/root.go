// Package cli implements the soochak command line.
package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dshills/soochak/internal/config"
	"github.com/dshills/soochak/internal/logging"
)

var errNoManifest = errors.New("no manifest: pass --manifest or set manifest in the config")

// RootOptions holds global flags and the state they resolve to.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Manifest   string

	// Resolved by PersistentPreRunE.
	Config config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the soochak CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "soochak",
		Short: "Priority-ordered event dispatch",
		Long: `soochak dispatches named events to listeners in priority order.

Listeners are declared in a TOML or YAML manifest and may be built-in
actions or Lua scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (TOML or YAML)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")
	cmd.PersistentFlags().StringVarP(&opts.Manifest, "manifest", "m", "", "listener manifest (overrides config)")

	cmd.AddCommand(NewTriggerCommand(opts))
	cmd.AddCommand(NewListenersCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// resolve loads the config, applies flag overrides and builds the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(config.WithPath(o.ConfigPath))
	if err != nil {
		return err
	}

	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Log.Format = o.LogFormat
	}
	if o.Manifest != "" {
		cfg.Manifest = o.Manifest
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.Config = cfg
	o.Logger = logging.New(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	return nil
}

// manifestPath returns the resolved manifest or an error if none is set.
func (o *RootOptions) manifestPath() (string, error) {
	if o.Config.Manifest == "" {
		return "", errNoManifest
	}
	return o.Config.Manifest, nil
}
