// cmd/osfiler/commands/modules/root.go
// Package modules implements the `osfiler modules` command group.
package modules

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OnlyOneCookie/OSFiler/pkg/config"
	"github.com/OnlyOneCookie/OSFiler/pkg/engine"
)

// App bundles the engine state the subcommands operate on. The root
// command constructs it once per invocation and stores it on the context.
type App struct {
	Config  config.Config
	Runner  *engine.Runner
	Service *engine.Service
}

type ctxKey string

const appKey ctxKey = "osfiler.app"

// WithApp stores the app state on the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// appFromCommand extracts the app state placed by the root command.
func appFromCommand(cmd *cobra.Command) (*App, error) {
	app, ok := cmd.Context().Value(appKey).(*App)
	if !ok || app == nil {
		return nil, fmt.Errorf("engine not initialized")
	}
	return app, nil
}

// cliCaller is the identity used for local CLI invocations. The local
// operator is treated as administrative.
var cliCaller = engine.Caller{ID: "cli", IsAdmin: true}

// NewCommand constructs the `modules` command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List, execute, configure, and reload investigation modules",
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newInfoCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newReloadCommand())
	cmd.AddCommand(newConfigCommand())

	return cmd
}
