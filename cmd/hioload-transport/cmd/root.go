package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/adapters"
	"github.com/momentics/hioload-transport/internal/app"
)

type rootFlags struct {
	cfgFile  string
	logLevel string
	workers  int
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "hioload-transport",
		Short: "Exercise stream teardown and batch failure fan-out",
		Long: `hioload-transport runs the stream lifecycle core in-process: it fails
stream op batches through each propagation variant and tears streams down
under concurrent unrefs, printing what fired and where.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().IntVar(&flags.workers, "workers", 0, "engine worker override (0 keeps the configured value)")

	root.AddCommand(newFailCommand(flags), newTeardownCommand(flags))
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

type runtimeDeps struct {
	fx.In

	Logger *zap.Logger
	Engine *adapters.EngineAdapter
}

// withRuntime starts the application, runs fn and stops it again.
func withRuntime(ctx context.Context, flags *rootFlags, fn func(deps runtimeDeps) error) error {
	overrides := map[string]any{}
	if flags.logLevel != "" {
		overrides["log.level"] = flags.logLevel
	}
	if flags.workers > 0 {
		overrides["engine.workers"] = flags.workers
	}

	var deps runtimeDeps
	fxApp := fx.New(
		app.Module(),
		fx.Supply(app.Options{ConfigFile: flags.cfgFile, Overrides: overrides}),
		fx.Populate(&deps),
		fx.NopLogger,
	)
	if err := fxApp.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}
	runErr := fn(deps)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
