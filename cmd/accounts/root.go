// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the accounts CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage user accounts",
		Long: `accounts manages the user account lifecycle: registration, activation,
login, password reset, deletion and suspension. Confirmations travel by e-mail
as single-use interaction codes.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file path (default: $XDG_CONFIG_HOME/accounts/config.yaml)")
	pf.String("database-url", "", "PostgreSQL URL (default: $DATABASE_URL)")
	pf.String("log-format", "json", "log format (json or text)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("mail", "log", "mail transport (log, smtp or kafka)")
	pf.String("metrics-textfile", "", "write run metrics to this node_exporter textfile")
	pf.String("metrics-push-url", "", "push run metrics to this Pushgateway")

	cmd.AddCommand(
		newMigrateCmd(deps),
		newRegisterCmd(deps),
		newConfirmCmd(deps),
		newLoginCmd(deps),
		newResetPasswordCmd(deps),
		newDeleteCmd(deps),
		newSuspendCmd(deps),
		newShowCmd(deps),
	)
	return cmd
}
