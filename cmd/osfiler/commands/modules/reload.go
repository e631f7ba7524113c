package modules

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newReloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reload [module-name]",
		Short: "Reload one module or all modules",
		Long: `Re-instantiate one module from its registered factory, or rebuild the
whole module set when no name is given. A module that fails to reload keeps
its previous instance; other modules are unaffected.`,
		Example: `  # Reload everything
  osfiler modules reload

  # Reload a single module
  osfiler modules reload usernames_module`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			ok, err := app.Service.Reload(name, cliCaller)
			if err != nil {
				return fmt.Errorf("reload: %w", err)
			}
			if !ok {
				return fmt.Errorf("failed to reload module '%s'", name)
			}

			if name == "" {
				fmt.Printf("%s reloaded %d module(s)\n", color.GreenString("ok:"), app.Runner.Count())
			} else {
				fmt.Printf("%s reloaded module %s\n", color.GreenString("ok:"), name)
			}
			return nil
		},
	}

	return cmd
}
