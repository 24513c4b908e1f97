package cli

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/app"
	"github.com/Freeeeeet/skillmatch/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions общие флаги всех команд
type RootOptions struct {
	Verbose bool
}

// NewRootCommand создаёт корневую команду matchctl
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "matchctl",
		Short:         "Operator tool for the skillmatch database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))

	return cmd
}

// withApp загружает конфигурацию, подключается к базе и выполняет fn
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	env := "production"
	if opts.Verbose {
		env = cfg.Environment
	}
	logger := app.NewLogger(env)
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
