package modules

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OnlyOneCookie/OSFiler/pkg/engine"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and update per-module configuration",
	}

	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigGetCommand() *cobra.Command {
	var schemaOnly bool

	cmd := &cobra.Command{
		Use:   "get <module-name>",
		Short: "Print a module's effective configuration",
		Long: `Print the effective configuration of a module as JSON. The effective
configuration is the schema defaults overlaid with the persisted document,
read fresh from disk.`,
		Example: `  # Show the effective configuration
  osfiler modules config get usernames_module

  # Show only the configuration schema
  osfiler modules config get usernames_module --schema`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			moduleName := args[0]

			view, err := app.Service.GetModuleConfig(moduleName, cliCaller)
			if err != nil {
				if errors.Is(err, engine.ErrModuleNotFound) {
					return fmt.Errorf("module '%s' not found\n\nUse 'osfiler modules list' to see loaded modules", moduleName)
				}
				return fmt.Errorf("get module config: %w", err)
			}
			if !view.HasConfig {
				fmt.Printf("Module %s has no configuration.\n", moduleName)
				return nil
			}

			if schemaOnly {
				return printJSON(view.ConfigSchema)
			}
			return printJSON(view.Config)
		},
	}

	cmd.Flags().BoolVar(&schemaOnly, "schema", false, "Print the configuration schema instead of the values")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "set <module-name>",
		Short: "Replace a module's configuration document",
		Long: `Replace the persisted configuration document of a module with a JSON
document read from a file or from stdin. The document is validated against
the module's configuration schema before it is written.`,
		Example: `  # Update from a file
  osfiler modules config set usernames_module --file new_config.json

  # Update from stdin
  cat new_config.json | osfiler modules config set usernames_module`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			moduleName := args[0]

			var raw []byte
			if fromFile != "" {
				raw, err = os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read config file: %w", err)
				}
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read config from stdin: %w", err)
				}
			}

			var cfg map[string]any
			if err := json.Unmarshal(raw, &cfg); err != nil {
				return fmt.Errorf("parse config document: %w", err)
			}

			saved, err := app.Service.UpdateModuleConfig(moduleName, cfg, cliCaller)
			if err != nil {
				if errors.Is(err, engine.ErrModuleNotFound) {
					return fmt.Errorf("module '%s' not found\n\nUse 'osfiler modules list' to see loaded modules", moduleName)
				}
				return fmt.Errorf("update module config: %w", err)
			}

			fmt.Printf("%s configuration for %s updated\n", color.GreenString("ok:"), moduleName)
			return printJSON(saved)
		},
	}

	cmd.Flags().StringVar(&fromFile, "file", "", "Read the configuration document from this JSON file (default: stdin)")

	return cmd
}
