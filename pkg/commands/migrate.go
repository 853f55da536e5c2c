package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/opsfabric/premise/modules"
	"github.com/opsfabric/premise/pkg/application"
	"github.com/opsfabric/premise/pkg/configuration"
	"github.com/opsfabric/premise/pkg/eventbus"
)

// loadApp builds an application with every built-in module registered but no
// HTTP surface. Used by the CLI subcommands that need services or migrations.
func loadApp(ctx context.Context) (application.Application, *pgxpool.Pool, error) {
	conf := configuration.Use()
	logger := conf.Logger()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return app, pool, nil
}

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(newMigrateUpCmd(), newMigrateStatusCmd())
	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			app, pool, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := app.Migrations().Up(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			app.Logger().Info("migrations applied")
			return nil
		},
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the status of every known migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			app, pool, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := app.Migrations().Status(ctx)
			if err != nil {
				return err
			}
			for _, status := range statuses {
				applied := "pending"
				if !status.AppliedAt.IsZero() {
					applied = status.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%-50s %s\n", status.Source.Path, applied)
			}
			return nil
		},
	}
}
