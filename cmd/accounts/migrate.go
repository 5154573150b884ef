// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/store"
)

func newMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the accounts database schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all of them unless --steps is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if steps > 0 {
					if err := m.Steps(-steps); err != nil {
						return err
					}
					cmd.Printf("Rolled back %d migration(s)\n", steps)
					return nil
				}
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("All migrations rolled back")
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back")

	var jsonOutput bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				st, err := m.Status()
				if err != nil {
					return err
				}
				return printMigrationStatus(cmd, st, jsonOutput)
			})
		},
	}
	status.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, deps, func(m Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					cmd.Println("Migrations completed successfully")
					return nil
				})
			},
		},
		down,
		status,
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark VERSION as applied without running it (recovers a dirty schema)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := parseForceVersion(args[0])
				if err != nil {
					return err
				}
				return withMigrator(cmd, deps, func(m Migrator) error {
					if err := m.Force(version); err != nil {
						return err
					}
					cmd.Printf("Forced schema version %d\n", version)
					return nil
				})
			},
		},
	)
	return cmd
}

func withMigrator(cmd *cobra.Command, deps *Deps, fn func(Migrator) error) error {
	cfg, logger, err := loadConfig(cmd, deps)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	m, err := deps.MigratorOpener(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			logger.Warn("migrator did not close cleanly", "error", cerr)
		}
	}()
	return fn(m)
}

// parseForceVersion reads a schema version. Trailing non-digits are ignored.
func parseForceVersion(s string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &version); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Wrap(err)
	}
	return version, nil
}

type migrationStatusView struct {
	Version uint   `json:"version"`
	Dirty   bool   `json:"dirty"`
	Applied []uint `json:"applied"`
	Pending []uint `json:"pending"`
}

func printMigrationStatus(cmd *cobra.Command, st store.Status, jsonOutput bool) error {
	if jsonOutput {
		view := migrationStatusView{Version: st.Version, Dirty: st.Dirty, Applied: st.Applied, Pending: st.Pending}
		if view.Applied == nil {
			view.Applied = []uint{}
		}
		if view.Pending == nil {
			view.Pending = []uint{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return oops.Code("OUTPUT_FAILED").Wrap(err)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Schema version:\t%d\n", st.Version)
	if st.Dirty {
		fmt.Fprintln(w, "State:\tDIRTY (run migrate force after fixing)")
	}
	for _, v := range st.Applied {
		name, _ := store.MigrationName(v) //nolint:errcheck // name is cosmetic
		fmt.Fprintf(w, "applied\t%s\n", name)
	}
	for _, v := range st.Pending {
		name, _ := store.MigrationName(v) //nolint:errcheck // name is cosmetic
		fmt.Fprintf(w, "pending\t%s\n", name)
	}
	if err := w.Flush(); err != nil {
		return oops.Code("OUTPUT_FAILED").Wrap(err)
	}
	return nil
}
