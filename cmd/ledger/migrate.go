package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"budgetledger/internal/config"
	"budgetledger/internal/database"
)

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Every other command applies pending migrations on start. Use these
subcommands to inspect the schema version or roll back.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: c.withMigrator(func(cmd *cobra.Command, _ []string, m *database.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [N]",
		Short: "Roll back the last N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: c.withMigrator(func(cmd *cobra.Command, args []string, m *database.Migrator) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}
			if err := m.Down(steps); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Rolled back %d migration(s)", steps)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: c.withMigrator(func(cmd *cobra.Command, _ []string, m *database.Migrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			state := "clean"
			if dirty {
				state = expenseStyle.Render("dirty")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (%s)\n", version, state)
			return nil
		}),
	})

	return cmd
}

// withMigrator runs fn with a migrator for the configured database.
func (c *cli) withMigrator(fn func(cmd *cobra.Command, args []string, m *database.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromViper(c.v)
		if err != nil {
			return err
		}
		m, err := database.NewMigrator(database.NewConfig(cfg))
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(cmd, args, m)
	}
}
