package modules

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OnlyOneCookie/OSFiler/pkg/engine"
)

func newRunCommand() *cobra.Command {
	var (
		params     []string
		fileParams []string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "run <module-name>",
		Short: "Execute a module",
		Long: `Execute a loaded module with the given parameters.

Parameters are passed as key=value pairs. File parameters upload a local
file as the parameter value. The execution result envelope is printed on
completion; a module fault is reported inside the envelope, not as a
command failure.`,
		Example: `  # Search platforms for a username
  osfiler modules run usernames_module --param username=johndoe

  # Override the request timeout for one run
  osfiler modules run usernames_module --param username=johndoe --param timeout=5

  # Extract metadata from a local image
  osfiler modules run image_meta_module --file image_file=./photo.jpg

  # Print the raw result envelope as JSON
  osfiler modules run usernames_module --param username=johndoe --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromCommand(cmd)
			if err != nil {
				return err
			}
			moduleName := args[0]

			paramMap, err := buildParams(params, fileParams)
			if err != nil {
				return err
			}

			result, err := app.Service.Execute(cmd.Context(), moduleName, paramMap, cliCaller)
			if err != nil {
				if errors.Is(err, engine.ErrModuleNotFound) {
					return fmt.Errorf("module '%s' not found\n\nUse 'osfiler modules list' to see loaded modules", moduleName)
				}
				return fmt.Errorf("execute module: %w", err)
			}

			if jsonOutput {
				return printJSON(result)
			}
			printRunResult(result)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "Module parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&fileParams, "file", nil, "File parameter as key=path (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw result envelope as JSON")

	return cmd
}

// buildParams converts repeated key=value and key=path flags into the
// parameter map a module expects.
func buildParams(params, fileParams []string) (map[string]any, error) {
	out := make(map[string]any, len(params)+len(fileParams))
	for _, kv := range params {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", kv)
		}
		out[key] = value
	}
	for _, kv := range fileParams {
		key, path, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --file %q, expected key=path", kv)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file parameter %s: %w", key, err)
		}
		out[key] = engine.FileParam{Filename: filepath.Base(path), Data: data}
	}
	return out, nil
}

// printRunResult renders the execution envelope for humans.
func printRunResult(result engine.ExecutionResult) {
	if result.Status == engine.StatusError {
		fmt.Printf("%s %s\n", color.RedString("error:"), result.Error)
		return
	}
	fmt.Printf("%s module %s completed at %s\n",
		color.GreenString("ok:"), result.Module, result.Timestamp.Format("2006-01-02 15:04:05"))

	moduleResult, ok := result.Data.(engine.ModuleResult)
	if !ok {
		_ = printJSON(result.Data)
		return
	}

	if moduleResult.Title != "" {
		fmt.Println(moduleResult.Title)
	}
	if moduleResult.Subtitle != "" {
		fmt.Println(moduleResult.Subtitle)
	}
	if len(moduleResult.Nodes) == 0 {
		return
	}
	fmt.Println()
	for _, card := range moduleResult.Nodes {
		fmt.Printf("  %s", color.CyanString(card.Title))
		if card.Subtitle != "" {
			fmt.Printf("  (%s)", card.Subtitle)
		}
		if card.URL != "" {
			fmt.Printf("  %s", card.URL)
		}
		fmt.Println()
	}
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
