// Package commands implements the lodgingctl administration CLI.
package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hbnb/lodging-core/internal/bootstrap"
	"github.com/hbnb/lodging-core/internal/infrastructure/observability"
	"github.com/hbnb/lodging-core/pkg/config"
)

var (
	appCtx   *bootstrap.App
	driver   string
	logLevel string
)

// Execute runs the CLI against os.Args
func Execute() error {
	return run(newRootCmd())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lodgingctl",
		Short:         "Administer users, places, reviews and amenities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if driver != "" {
				cfg.Store.Driver = driver
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			if logLevel != "" {
				cfg.App.LogLevel = logLevel
			}
			observability.InitLogger(cmd.ErrOrStderr(), observability.LogOptions{Service: cfg.App.Name, Env: cfg.App.Env, Level: cfg.App.LogLevel})

			appCtx, err = bootstrap.Build(cmd.Context(), cfg)
			return err
		},
	}

	root.PersistentFlags().StringVar(&driver, "store", "", "repository backend: memory, postgres or sqlite (default $STORE_DRIVER)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "zerolog level (default $LOG_LEVEL)")

	root.AddCommand(migrateCmd(), seedCmd(), userCmd(), placeCmd(), reviewCmd(), amenityCmd())
	return root
}

func run(cmd *cobra.Command) error {
	ctx := context.Background()
	defer func() {
		if appCtx != nil {
			appCtx.Close(ctx)
			appCtx = nil
		}
	}()

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("command failed")
	}
	return err
}
