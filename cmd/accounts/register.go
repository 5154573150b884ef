// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/holomush/accounts/internal/account"
	"github.com/holomush/accounts/internal/notify"
)

type registerConfig struct {
	username string
	email    string
	password string
	activate bool
	message  messageFlags
}

func newRegisterCmd(deps *Deps) *cobra.Command {
	cfg := &registerConfig{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Long: `Register a new account. Without --password a random password is
generated. With --message an activation code is issued and mailed; without
it the account stays inactive unless --activate is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegister(cmd, deps, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.username, "username", "", "account username")
	cmd.Flags().StringVar(&cfg.email, "email", "", "account e-mail address")
	cmd.Flags().StringVar(&cfg.password, "password", "", "initial password (default: generated)")
	cmd.Flags().BoolVar(&cfg.activate, "activate", false, "activate the account immediately")
	cfg.message.register(cmd, "activation message template")
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // flag exists
	_ = cmd.MarkFlagRequired("email")    //nolint:errcheck // flag exists

	return cmd
}

func runRegister(cmd *cobra.Command, deps *Deps, cfg *registerConfig) error {
	message, err := cfg.message.template()
	if err != nil {
		return err
	}

	return withApp(cmd, deps, func(ctx context.Context, a *app) error {
		acct, err := a.service.Register(ctx, account.RegisterRequest{
			Username: cfg.username,
			Email:    cfg.email,
			Password: cfg.password,
			RegisterOptions: account.RegisterOptions{
				ActivationMessage: message,
				AutoActivate:      cfg.activate,
			},
		})
		if err != nil {
			return err
		}

		cmd.Printf("Registered %s <%s> (id %s, active %t)\n",
			acct.Username(), acct.Email(), acct.ID(), acct.Active())
		if cfg.password == "" && (message == "" || a.cfg.Mail.Transport == notify.TransportLog) {
			cmd.Printf("Generated password: %s\n", acct.Cleartext())
		}
		return nil
	})
}
