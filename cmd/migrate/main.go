package main

import (
	"database/sql"
	"fmt"
	"os"

	"snappoint/migrations"
	"snappoint/pkg/config"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dir string

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply goose migrations to the postgres database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "", "directory with migration files (defaults to the embedded set)")

	withDB := func(fn func(db *sql.DB, dir string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			db, err := sql.Open("postgres", postgresDSN(cfg))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := goose.SetDialect("postgres"); err != nil {
				return fmt.Errorf("set dialect: %w", err)
			}

			migrationsDir := dir
			if migrationsDir == "" {
				goose.SetBaseFS(migrations.FS)
				migrationsDir = "."
			}
			return fn(db, migrationsDir)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withDB(func(db *sql.DB, dir string) error {
				if err := goose.Up(db, dir); err != nil {
					return fmt.Errorf("run migrations: %w", err)
				}
				fmt.Println("Migrations applied successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: withDB(func(db *sql.DB, dir string) error {
				if err := goose.Down(db, dir); err != nil {
					return fmt.Errorf("rollback migrations: %w", err)
				}
				fmt.Println("Migrations rolled back successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print migration status",
			RunE: withDB(func(db *sql.DB, dir string) error {
				return goose.Status(db, dir)
			}),
		},
		newCreateCmd(&dir),
	)

	return root
}

func newCreateCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := *dir
			if target == "" {
				target = "migrations"
			}
			// goose.Create only writes a file, so no connection is needed.
			if err := goose.Create(nil, target, args[0], "sql"); err != nil {
				return fmt.Errorf("create migration: %w", err)
			}
			fmt.Printf("Created migration: %s\n", args[0])
			return nil
		},
	}
}

func postgresDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)
}
