package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/qrave1/GiftRoulette/internal/application/config"
	"github.com/qrave1/GiftRoulette/internal/application/constant"
	"github.com/qrave1/GiftRoulette/internal/infra/adapters/postgres/migrations"
)

var migrateTarget int64

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the rooms/players schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations (up to --to when set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSchemaProvider(func(p *goose.Provider) error {
			var (
				results []*goose.MigrationResult
				err     error
			)

			if migrateTarget > 0 {
				results, err = p.UpTo(cmd.Context(), migrateTarget)
			} else {
				results, err = p.Up(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}

			if len(results) == 0 {
				slog.Info("schema is up to date")
			}

			for _, r := range results {
				logMigration(r)
			}

			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration (down to --to when set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSchemaProvider(func(p *goose.Provider) error {
			if cmd.Flags().Changed("to") {
				results, err := p.DownTo(cmd.Context(), migrateTarget)
				if err != nil {
					return fmt.Errorf("roll back schema: %w", err)
				}

				for _, r := range results {
					logMigration(r)
				}

				return nil
			}

			r, err := p.Down(cmd.Context())
			if err != nil {
				return fmt.Errorf("roll back schema: %w", err)
			}

			logMigration(r)

			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSchemaProvider(func(p *goose.Provider) error {
			statuses, err := p.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("schema status: %w", err)
			}

			for _, s := range statuses {
				applied := "-"
				if !s.AppliedAt.IsZero() {
					applied = s.AppliedAt.Format("2006-01-02 15:04:05")
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-20s %s\n", s.State, applied, s.Source.Path)
			}

			version, err := p.GetDBVersion(cmd.Context())
			if err != nil {
				return fmt.Errorf("schema version: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)

			return nil
		})
	},
}

// withSchemaProvider открывает БД из конфига и отдаёт goose провайдер со встроенными миграциями
func withSchemaProvider(fn func(p *goose.Provider) error) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setupLogger(cfg)

	db, err := sql.Open("pgx", cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}

	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.MigrationsFS)
	if err != nil {
		_ = db.Close()

		return fmt.Errorf("init schema provider: %w", err)
	}

	defer func() {
		if err := p.Close(); err != nil {
			slog.Error("close schema provider", slog.Any(constant.Error, err))
		}
	}()

	return fn(p)
}

func logMigration(r *goose.MigrationResult) {
	if r == nil || r.Source == nil {
		return
	}

	slog.Info(
		"migration "+r.Direction,
		slog.Int64("version", r.Source.Version),
		slog.String("file", r.Source.Path),
		slog.Duration("took", r.Duration),
	)
}

func init() {
	migrateUpCmd.Flags().Int64Var(&migrateTarget, "to", 0, "target version")
	migrateDownCmd.Flags().Int64Var(&migrateTarget, "to", 0, "target version")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
