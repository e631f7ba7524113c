package modules

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OnlyOneCookie/OSFiler/pkg/engine"
)

func newListCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all loaded modules",
		Long: `List all modules currently loaded by the engine.

Displays module name, version, category, and whether the module carries a
persistent configuration document.`,
		Example: `  # List all loaded modules
  osfiler modules list

  # List modules with descriptions and parameter details
  osfiler modules list --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}

			descriptors := app.Service.ListModules()
			printListResult(descriptors, verbose)
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed information")

	return cmd
}

// printListResult formats and prints the module descriptors.
func printListResult(descriptors []engine.ModuleDescriptor, verbose bool) {
	if len(descriptors) == 0 {
		fmt.Println("No modules loaded.")
		return
	}

	fmt.Printf("Found %d module(s):\n\n", len(descriptors))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if verbose {
		fmt.Fprintln(w, "NAME\tVERSION\tCATEGORY\tCONFIG\tREQUIRED PARAMS\tDESCRIPTION")
		fmt.Fprintln(w, "----\t-------\t--------\t------\t---------------\t-----------")
		for _, d := range descriptors {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				d.Name,
				d.Version,
				d.Category,
				yesNo(d.HasConfig),
				paramNames(d.RequiredParams),
				d.Description); err != nil {
				log.Debug().Err(err).Msg("Failed to write module entry")
			}
		}
	} else {
		fmt.Fprintln(w, "NAME\tVERSION\tCATEGORY\tCONFIG")
		fmt.Fprintln(w, "----\t-------\t--------\t------")
		for _, d := range descriptors {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				d.Name, d.Version, d.Category, yesNo(d.HasConfig)); err != nil {
				log.Debug().Err(err).Msg("Failed to write module entry")
			}
		}
	}
	if err := w.Flush(); err != nil {
		log.Warn().Err(err).Msg("Failed to flush output")
	}
}

func yesNo(v bool) string {
	if v {
		return color.GreenString("yes")
	}
	return "no"
}

func paramNames(params []engine.ParamSpec) string {
	if len(params) == 0 {
		return "-"
	}
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
