package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dedirosandiaj/problem-log-new/internal/persistence"
)

// NewMigrateCommand groups the schema migration tools.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back or inspect the embedded SQL migrations.`,
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *persistence.Migrator) error {
				return m.Down(ctx, steps)
			})
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(ctx context.Context, m *persistence.Migrator) error {
					return m.Up(ctx)
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), func(ctx context.Context, m *persistence.Migrator) error {
					return m.Status(ctx)
				})
			},
		},
	)
	return cmd
}

func withMigrator(ctx context.Context, fn func(context.Context, *persistence.Migrator) error) error {
	rt, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer rt.close()
	if err := rt.requireDatabase(); err != nil {
		return err
	}

	migrator, err := persistence.NewMigrator(rt.pg.PoolHandle(), rt.logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := fn(ctx, migrator); err != nil {
		rt.logger.Error("migration failed", zap.Error(err))
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
