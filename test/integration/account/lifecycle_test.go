// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package account_test

import (
	"regexp"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/accounts/internal/account"
)

var codeInBody = regexp.MustCompile(`code=([0-9a-f]{64})`)

func codeFrom(msg account.Message) string {
	m := codeInBody.FindStringSubmatch(msg.Body)
	Expect(m).To(HaveLen(2), "no code in %q", msg.Body)
	return m[1]
}

func register(username, email, password string) *account.Account {
	acct, err := env.service.Register(env.ctx, account.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
		RegisterOptions: account.RegisterOptions{
			ActivationMessage: "Hello $username, activate with code=$url",
		},
	})
	Expect(err).NotTo(HaveOccurred())
	return acct
}

var _ = Describe("Account lifecycle", func() {
	Describe("registration and activation", func() {
		It("activates an account through the mailed code", func() {
			acct := register("alice", "alice@example.com", "secret1")
			Expect(acct.IsNew()).To(BeFalse())
			Expect(acct.Active()).To(BeFalse())

			msg := env.inbox.last()
			Expect(msg.To).To(Equal("alice@example.com"))
			Expect(msg.Subject).To(Equal("Account activation"))

			_, err := env.service.Login(env.ctx, "alice", "secret1")
			Expect(err).To(MatchError(account.ErrInactiveAccount))

			kind, err := env.service.ConfirmInteraction(env.ctx, codeFrom(msg))
			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal(account.InteractionActivate))

			loggedIn, err := env.service.Login(env.ctx, "alice", "secret1")
			Expect(err).NotTo(HaveOccurred())
			Expect(loggedIn.ID()).To(Equal(acct.ID()))
		})

		It("accepts each code once", func() {
			register("alice", "alice@example.com", "secret1")
			code := codeFrom(env.inbox.last())

			_, err := env.service.ConfirmInteraction(env.ctx, code)
			Expect(err).NotTo(HaveOccurred())
			_, err = env.service.ConfirmInteraction(env.ctx, code)
			Expect(err).To(MatchError(account.ErrNoMatchingInteraction))
		})

		It("rejects duplicate usernames and e-mails", func() {
			register("alice", "alice@example.com", "secret1")

			_, err := env.service.Register(env.ctx, account.RegisterRequest{Username: "alice", Email: "other@example.com"})
			Expect(err).To(MatchError(account.ErrDuplicateUsername))
			Expect(account.KindOf(err)).To(Equal(account.KindConflict))

			_, err = env.service.Register(env.ctx, account.RegisterRequest{Username: "alicia", Email: "alice@example.com"})
			Expect(err).To(MatchError(account.ErrDuplicateEmail))
		})

		It("keeps an expired code on the account", func() {
			register("alice", "alice@example.com", "secret1")
			code := codeFrom(env.inbox.last())

			env.clock.Advance(account.DefaultActivationDeadline + time.Second)
			_, err := env.service.ConfirmInteraction(env.ctx, code)
			Expect(err).To(MatchError(account.ErrInteractionExpired))

			stored, err := env.service.Get(env.ctx, account.ByUsername("alice"))
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Active()).To(BeFalse())
			in, ok := stored.Interaction()
			Expect(ok).To(BeTrue())
			Expect(in.Code).To(Equal(code))
		})
	})

	Describe("password reset", func() {
		var acct *account.Account

		BeforeEach(func() {
			register("alice", "alice@example.com", "secret1")
			_, err := env.service.ConfirmInteraction(env.ctx, codeFrom(env.inbox.last()))
			Expect(err).NotTo(HaveOccurred())
			acct, err = env.service.Get(env.ctx, account.ByUsername("alice"))
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps the old password until the reset is confirmed", func() {
			env.clock.Advance(2 * time.Second)
			err := env.service.ResetPassword(env.ctx, acct, account.ResetRequest{
				Password: "secret2",
				Confirm:  true,
				Message:  "Confirm your new password with code=$url",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(env.inbox.last().Subject).To(Equal("Password reset"))

			_, err = env.service.Login(env.ctx, "alice", "secret1")
			Expect(err).NotTo(HaveOccurred())
			_, err = env.service.Login(env.ctx, "alice", "secret2")
			Expect(err).To(MatchError(account.ErrInvalidCredentials))

			kind, err := env.service.ConfirmInteraction(env.ctx, codeFrom(env.inbox.last()))
			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal(account.InteractionReset))

			_, err = env.service.Login(env.ctx, "alice", "secret2")
			Expect(err).NotTo(HaveOccurred())
			_, err = env.service.Login(env.ctx, "alice", "secret1")
			Expect(err).To(MatchError(account.ErrInvalidCredentials))
		})

		It("applies the per-kind deadline", func() {
			env.clock.Advance(2 * time.Second)
			err := env.service.ResetPassword(env.ctx, acct, account.ResetRequest{
				Password: "secret2",
				Confirm:  true,
				Message:  "code=$url",
			})
			Expect(err).NotTo(HaveOccurred())

			env.clock.Advance(time.Hour + time.Second)
			_, err = env.service.ConfirmInteraction(env.ctx, codeFrom(env.inbox.last()))
			Expect(err).To(MatchError(account.ErrInteractionExpired))
		})
	})

	Describe("deletion and suspension", func() {
		BeforeEach(func() {
			register("alice", "alice@example.com", "secret1")
		})

		It("deletes only after confirmation when asked to", func() {
			env.clock.Advance(2 * time.Second)
			_, err := env.service.RequestDeletion(env.ctx, account.ByEmail("alice@example.com"), account.DeletionRequest{
				Confirm: true,
				Message: "Confirm removal with code=$url",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.service.Get(env.ctx, account.ByUsername("alice"))
			Expect(err).NotTo(HaveOccurred())

			kind, err := env.service.ConfirmInteraction(env.ctx, codeFrom(env.inbox.last()))
			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal(account.InteractionDelete))

			_, err = env.service.Get(env.ctx, account.ByUsername("alice"))
			Expect(err).To(MatchError(account.ErrNotFound))
		})

		It("deletes immediately without confirmation", func() {
			_, err := env.service.RequestDeletion(env.ctx, account.ByUsername("alice"), account.DeletionRequest{})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.service.Get(env.ctx, account.ByUsername("alice"))
			Expect(err).To(MatchError(account.ErrNotFound))
		})

		It("suspends an active account", func() {
			_, err := env.service.ConfirmInteraction(env.ctx, codeFrom(env.inbox.last()))
			Expect(err).NotTo(HaveOccurred())

			Expect(env.service.Suspend(env.ctx, account.ByUsername("alice"), "Goodbye $username")).To(Succeed())
			Expect(env.inbox.last().Body).To(Equal("Goodbye alice"))

			_, err = env.service.Login(env.ctx, "alice", "secret1")
			Expect(err).To(MatchError(account.ErrInactiveAccount))
		})

		It("reports unknown accounts", func() {
			err := env.service.Suspend(env.ctx, account.ByUsername("nobody"), "")
			Expect(err).To(MatchError(account.ErrNotFound))
		})
	})
})
