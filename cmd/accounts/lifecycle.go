// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/account"
)

func newConfirmCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm CODE",
		Short: "Confirm a pending activation, password reset or deletion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				kind, err := a.service.ConfirmInteraction(ctx, strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				cmd.Printf("Confirmed %s\n", kind)
				return nil
			})
		},
	}
}

func newLoginCmd(deps *Deps) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check an account's credentials",
		Long: `Check an account's credentials. Without --password the password is
read from the first line of standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("password") {
				pw, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = pw
			}
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				acct, err := a.service.Login(ctx, username, password)
				if err != nil {
					return err
				}
				cmd.Printf("Authenticated %s\n", acct.Username())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "password (default: read from stdin)")
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // flag exists
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", oops.Code("INPUT_FAILED").Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newResetPasswordCmd(deps *Deps) *cobra.Command {
	var (
		lookup   lookupFlags
		message  messageFlags
		password string
		confirm  bool
	)

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace an account's password",
		Long: `Replace an account's password. Without --password a random one is
generated. When a message is given the new password only takes effect after
the mailed reset code is confirmed, unless --confirm=false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmpl, err := message.template()
			if err != nil {
				return err
			}
			req := account.ResetRequest{
				Password: password,
				Confirm:  confirmation(cmd, confirm, tmpl),
				Message:  tmpl,
			}
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				acct, err := a.service.Get(ctx, lookup.lookup())
				if err != nil {
					return err
				}
				if err := a.service.ResetPassword(ctx, acct, req); err != nil {
					return err
				}
				if req.Confirm {
					cmd.Printf("Password reset for %s awaits confirmation\n", acct.Username())
					printCode(cmd, acct, tmpl)
				} else {
					cmd.Printf("Password reset for %s\n", acct.Username())
				}
				if password == "" && tmpl == "" {
					cmd.Printf("Generated password: %s\n", acct.Cleartext())
				}
				return nil
			})
		},
	}

	lookup.register(cmd)
	message.register(cmd, "reset message template")
	cmd.Flags().StringVar(&password, "password", "", "new password (default: generated)")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "require confirmation by code (default: on when a message is given)")
	return cmd
}

func newDeleteCmd(deps *Deps) *cobra.Command {
	var (
		lookup  lookupFlags
		message messageFlags
		confirm bool
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account",
		Long: `Delete an account. When a message is given the deletion only happens
after the mailed code is confirmed, unless --confirm=false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmpl, err := message.template()
			if err != nil {
				return err
			}
			req := account.DeletionRequest{Confirm: confirmation(cmd, confirm, tmpl), Message: tmpl}
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				acct, err := a.service.RequestDeletion(ctx, lookup.lookup(), req)
				if err != nil {
					return err
				}
				if req.Confirm {
					cmd.Printf("Deletion of %s awaits confirmation\n", acct.Username())
					printCode(cmd, acct, tmpl)
				} else {
					cmd.Printf("Deleted %s\n", acct.Username())
				}
				return nil
			})
		},
	}

	lookup.register(cmd)
	message.register(cmd, "deletion message template")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "require confirmation by code (default: on when a message is given)")
	return cmd
}

func newSuspendCmd(deps *Deps) *cobra.Command {
	var (
		lookup  lookupFlags
		message messageFlags
	)

	cmd := &cobra.Command{
		Use:   "suspend",
		Short: "Deactivate an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmpl, err := message.template()
			if err != nil {
				return err
			}
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				if err := a.service.Suspend(ctx, lookup.lookup(), tmpl); err != nil {
					return err
				}
				cmd.Println("Account suspended")
				return nil
			})
		},
	}

	lookup.register(cmd)
	message.register(cmd, "suspension message template")
	return cmd
}

// printCode shows a freshly issued code when no message carried it.
func printCode(cmd *cobra.Command, acct *account.Account, message string) {
	if message != "" {
		return
	}
	if in, ok := acct.Interaction(); ok {
		cmd.Printf("Confirmation code: %s\n", in.Code)
	}
}
