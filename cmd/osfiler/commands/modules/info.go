package modules

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OnlyOneCookie/OSFiler/pkg/engine"
)

func newInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <module-name>",
		Short: "Show detailed information about a module",
		Long: `Display the full descriptor of a loaded module, including its
parameters and configuration schema.`,
		Example: `  # Show info for a specific module
  osfiler modules info usernames_module`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			moduleName := args[0]

			desc, err := app.Service.GetModuleDescriptor(moduleName)
			if err != nil {
				if errors.Is(err, engine.ErrModuleNotFound) {
					return fmt.Errorf("module '%s' not found\n\nUse 'osfiler modules list' to see loaded modules", moduleName)
				}
				return fmt.Errorf("get module descriptor: %w", err)
			}

			fmt.Printf("Module: %s\n", desc.Name)
			fmt.Printf("Display name: %s\n", desc.DisplayName)
			fmt.Printf("Version: %s\n", desc.Version)
			fmt.Printf("Author: %s\n", desc.Author)
			fmt.Printf("Category: %s\n", desc.Category)
			fmt.Printf("Description: %s\n", desc.Description)
			fmt.Printf("Configurable: %s\n", yesNo(desc.HasConfig))

			printParams("Required parameters", desc.RequiredParams)
			printParams("Optional parameters", desc.OptionalParams)
			return nil
		},
	}

	return cmd
}

func printParams(title string, params []engine.ParamSpec) {
	if len(params) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, p := range params {
		fmt.Printf("  %s (%s): %s", p.Name, p.Type, p.Description)
		if p.Default != nil {
			fmt.Printf(" [default: %v]", p.Default)
		}
		fmt.Println()
	}
}
