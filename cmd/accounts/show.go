// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/account"
)

// accountView is the printable form of an account. Credentials and codes
// are left out.
type accountView struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	Active             bool       `json:"active"`
	RegisteredAt       time.Time  `json:"registered_at"`
	PendingInteraction string     `json:"pending_interaction,omitempty"`
	InteractionIssued  *time.Time `json:"interaction_issued_at,omitempty"`
}

func newAccountView(acct *account.Account) accountView {
	v := accountView{
		ID:           acct.ID().String(),
		Username:     acct.Username(),
		Email:        acct.Email(),
		Active:       acct.Active(),
		RegisteredAt: acct.RegisteredAt().UTC(),
	}
	if in, ok := acct.Interaction(); ok {
		issued := in.IssuedAt.UTC()
		v.PendingInteraction = in.Kind.String()
		v.InteractionIssued = &issued
	}
	return v
}

func newShowCmd(deps *Deps) *cobra.Command {
	var (
		lookup     lookupFlags
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				acct, err := a.service.Get(ctx, lookup.lookup())
				if err != nil {
					return err
				}
				return printAccount(cmd, newAccountView(acct), jsonOutput)
			})
		},
	}

	lookup.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output account as JSON")
	return cmd
}

func printAccount(cmd *cobra.Command, v accountView, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return oops.Code("OUTPUT_FAILED").Wrap(err)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", v.ID)
	fmt.Fprintf(w, "Username:\t%s\n", v.Username)
	fmt.Fprintf(w, "E-mail:\t%s\n", v.Email)
	fmt.Fprintf(w, "Active:\t%t\n", v.Active)
	fmt.Fprintf(w, "Registered:\t%s\n", v.RegisteredAt.Format(time.RFC3339))
	if v.PendingInteraction != "" {
		fmt.Fprintf(w, "Pending:\t%s since %s\n", v.PendingInteraction, v.InteractionIssued.Format(time.RFC3339))
	}
	if err := w.Flush(); err != nil {
		return oops.Code("OUTPUT_FAILED").Wrap(err)
	}
	return nil
}
