package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"docintel/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or revert the documents schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&source, "source", "file://db/migrations", "Migration source URL")

	withMigrate := func(fn func(m *migrate.Migrate, args []string) error) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, args []string) error {
			m, err := open(source)
			if err != nil {
				return err
			}
			defer m.Close()
			return fn(m, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
			if err := ignoreNoChange(m.Up()); err != nil {
				return fmt.Errorf("migration up failed: %w", err)
			}
			log.Println("migrations applied successfully")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
			if err := ignoreNoChange(m.Down()); err != nil {
				return fmt.Errorf("migration down failed: %w", err)
			}
			log.Println("migrations reverted successfully")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "steps N",
		Short: "Apply N migrations, or revert them when N is negative",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrate(func(m *migrate.Migrate, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid steps argument: %w", err)
			}
			if err := ignoreNoChange(m.Steps(n)); err != nil {
				return fmt.Errorf("migration steps failed: %w", err)
			}
			log.Printf("applied %d migration steps", n)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
			version, dirty, err := m.Version()
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Printf("version: %d, dirty: %v\n", version, dirty)
			return nil
		}),
	})
	return cmd
}

func open(source string) (*migrate.Migrate, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	m, err := migrate.New(source, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
