// cmd/osfiler/commands/root.go
// Package commands wires the osfiler CLI: global flags, configuration
// loading, and the engine lifecycle shared by all subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	modulesCmd "github.com/OnlyOneCookie/OSFiler/cmd/osfiler/commands/modules"
	"github.com/OnlyOneCookie/OSFiler/pkg/config"
	"github.com/OnlyOneCookie/OSFiler/pkg/engine"
	"github.com/OnlyOneCookie/OSFiler/pkg/logging"
	_ "github.com/OnlyOneCookie/OSFiler/pkg/modules"
	"github.com/OnlyOneCookie/OSFiler/pkg/version"
)

const cliExecutable = "osfiler"

// NewCommand constructs the top-level osfiler CLI command.
func NewCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:     cliExecutable,
		Short:   "OSFiler module engine",
		Long:    "OSFiler discovers, configures, and executes investigation modules.",
		Version: version.Info(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			manager := config.NewManager()
			if err := manager.Load(cmd.Flags(), configFile); err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			cfg := manager.Get()

			if err := logging.ConfigureGlobalLogging(cfg.Log.Level, cfg.Log.Format); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			runner := engine.NewRunner(engine.Env{ConfigDir: cfg.Modules.ConfigDir})
			service := engine.NewService(runner)
			log.Debug().Int("modules", runner.Count()).Str("config_dir", cfg.Modules.ConfigDir).Msg("Engine ready")

			ctx := modulesCmd.WithApp(cmd.Context(), &modulesCmd.App{
				Config:  cfg,
				Runner:  runner,
				Service: service,
			})
			cmd.SetContext(ctx)

			if cfg.Modules.WatchConfig {
				go func() {
					if err := runner.WatchConfigs(ctx); err != nil && !errors.Is(err, context.Canceled) {
						log.Error().Err(err).Msg("Config watcher stopped")
					}
				}()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: <config-dir>/config.yaml)")
	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(modulesCmd.NewCommand())

	return cmd
}
