// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/accounts/pkg/errutil"
)

// Service drives the account lifecycle: registration, authentication,
// password reset, deletion, suspension and interaction confirmation.
type Service struct {
	repo    Repository
	mailer  Mailer
	cfg     Config
	policy  PasswordPolicy
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the metrics sink. Defaults to unregistered metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source used to issue and check codes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a lifecycle service.
func NewService(repo Repository, mailer Mailer, cfg Config, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, oops.Code(CodeConfigInvalid).Errorf("account repository is required")
	}
	if mailer == nil {
		return nil, oops.Code(CodeConfigInvalid).Errorf("mailer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		repo:    repo,
		mailer:  mailer,
		cfg:     cfg,
		policy:  cfg.PasswordPolicy(),
		logger:  slog.Default(),
		metrics: NewMetrics(nil),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		return nil, oops.Code(CodeConfigInvalid).Errorf("logger is required")
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// PasswordPolicy returns the configured password policy.
func (s *Service) PasswordPolicy() PasswordPolicy { return s.policy }

// RegisterRequest describes a new account.
type RegisterRequest struct {
	Username string
	Email    string
	// Password is optional; a random one is generated when empty.
	Password string
	RegisterOptions
}

// RegisterOptions controls activation at registration time.
type RegisterOptions struct {
	// ActivationMessage, when non-empty, issues an activation code and mails
	// this template to the new account.
	ActivationMessage string
	// AutoActivate activates the account immediately.
	AutoActivate bool
}

// Register validates the request, builds the account and creates it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	acct, err := New(req.Username, req.Email)
	if err != nil {
		s.metrics.observe("register", err)
		return nil, err
	}
	if req.Password != "" {
		if err := acct.SetPassword(req.Password, s.policy); err != nil {
			s.metrics.observe("register", err)
			return nil, err
		}
	}
	if err := s.Create(ctx, acct, req.RegisterOptions); err != nil {
		return nil, err
	}
	return acct, nil
}

// Create stores a new account built by the caller. Without a password a
// random one is generated and kept in Cleartext for one-time disclosure.
func (s *Service) Create(ctx context.Context, acct *Account, opts RegisterOptions) (err error) {
	defer func() { s.metrics.observe("register", err) }()

	if err := s.checkUnique(ctx, acct); err != nil {
		return err
	}
	if !acct.IsNew() {
		return oops.Code(CodeNotNew).
			With("username", acct.Username()).
			With("email", acct.Email()).
			Wrapf(ErrAccountNotNew, "account for %s (%s) is not new", acct.Username(), acct.Email())
	}
	if acct.PasswordHash() == "" {
		// Generated passwords have a fixed length and skip the minimum.
		if err := acct.SetPassword(GeneratePassword(), PasswordPolicy{}); err != nil {
			return err
		}
	}
	if opts.AutoActivate {
		acct.Activate()
	}
	var code string
	if opts.ActivationMessage != "" {
		in, err := acct.SetInteraction(InteractionActivate, s.now())
		if err != nil {
			return err
		}
		code = in.Code
	}
	if err := s.Store(ctx, acct); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "account registered",
		"username", acct.Username(),
		"active", acct.Active(),
		"activation_sent", code != "")

	if opts.ActivationMessage != "" {
		s.send(ctx, acct, s.cfg.Subjects.Activation, opts.ActivationMessage, map[string]string{
			VarPassword: acct.Cleartext(),
			VarURL:      code,
		})
	}
	return nil
}

func (s *Service) checkUnique(ctx context.Context, acct *Account) error {
	taken, err := s.repo.Exists(ctx, FieldUsername, acct.Username())
	if err != nil {
		return err
	}
	if taken {
		return DuplicateUsername(acct.Username())
	}
	taken, err = s.repo.Exists(ctx, FieldEmail, acct.Email())
	if err != nil {
		return err
	}
	if taken {
		return DuplicateEmail(acct.Email())
	}
	return nil
}

// Store persists acct: a full insert for new accounts, otherwise a partial
// update of the dirty fields. The dirty set is cleared on success.
func (s *Service) Store(ctx context.Context, acct *Account) error {
	if acct.IsNew() {
		id, registeredAt, err := s.repo.Insert(ctx, acct.DataToInsert())
		if err != nil {
			return err
		}
		acct.MarkStored(id, registeredAt)
		return nil
	}
	data := acct.DataToStore()
	if len(data) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, acct.ID(), data); err != nil {
		return err
	}
	acct.MarkClean()
	return nil
}

// Get loads the account matching lookup.
func (s *Service) Get(ctx context.Context, lookup Lookup) (*Account, error) {
	if err := lookup.Validate(); err != nil {
		return nil, err
	}
	return s.repo.FindBy(ctx, lookup)
}

// Authenticate checks candidate against the account's password. Inactive
// accounts are refused regardless of the password.
func (s *Service) Authenticate(acct *Account, candidate string) (bool, error) {
	ok, err := s.authenticate(acct, candidate)
	switch {
	case err != nil:
		s.metrics.observe("authenticate", err)
	case !ok:
		s.metrics.observe("authenticate", ErrInvalidCredentials)
	default:
		s.metrics.observe("authenticate", nil)
	}
	return ok, err
}

func (s *Service) authenticate(acct *Account, candidate string) (bool, error) {
	if acct.IsNew() {
		return false, oops.Code(CodeIsNew).
			With("username", acct.Username()).
			Wrap(ErrAccountIsNew)
	}
	if !acct.Active() {
		return false, oops.Code(CodeInactive).
			With("username", acct.Username()).
			Wrap(ErrInactiveAccount)
	}
	return VerifyPassword(acct.Username(), acct.PasswordHash(), candidate)
}

// Login loads the account by username and authenticates it. An unknown
// username and a wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*Account, error) {
	acct, err := s.Get(ctx, ByUsername(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidUsername) {
			return nil, oops.Code(CodeInvalidCredentials).Wrap(ErrInvalidCredentials)
		}
		return nil, err
	}
	ok, err := s.Authenticate(acct, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, oops.Code(CodeInvalidCredentials).
			With("username", username).
			Wrap(ErrInvalidCredentials)
	}
	return acct, nil
}

// ResetRequest describes a password reset.
type ResetRequest struct {
	// Password is the new password; a random one is generated when empty.
	Password string
	// Confirm stages the password behind a reset code instead of applying it.
	Confirm bool
	// Message, when non-empty, is mailed to the account.
	Message string
}

// ResetPassword replaces or stages the account's password. With Confirm the
// live password keeps working until ConfirmInteraction is called with the
// issued reset code.
func (s *Service) ResetPassword(ctx context.Context, acct *Account, req ResetRequest) (err error) {
	defer func() { s.metrics.observe("reset_password", err) }()

	if acct.IsNew() {
		return oops.Code(CodeIsNew).
			With("username", acct.Username()).
			Wrap(ErrAccountIsNew)
	}

	password, policy := req.Password, s.policy
	if password == "" {
		password, policy = GeneratePassword(), PasswordPolicy{}
	}

	var code string
	if req.Confirm {
		if err := acct.SetPendingPassword(password, policy); err != nil {
			return err
		}
		in, err := acct.SetInteraction(InteractionReset, s.now())
		if err != nil {
			return err
		}
		code = in.Code
	} else if err := acct.SetPassword(password, policy); err != nil {
		return err
	}

	if err := s.Store(ctx, acct); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset",
		"username", acct.Username(),
		"pending_confirmation", req.Confirm)

	if req.Message != "" {
		s.send(ctx, acct, s.cfg.Subjects.Reset, req.Message, map[string]string{
			VarPassword: acct.Cleartext(),
			VarURL:      code,
		})
	}
	return nil
}

// ConfirmInteraction consumes a pending interaction code and applies the
// operation it gates. The code is single-use: a second confirmation with
// the same code returns ErrNoMatchingInteraction. An expired code returns
// ErrInteractionExpired and leaves the account untouched.
func (s *Service) ConfirmInteraction(ctx context.Context, code string) (kind InteractionKind, err error) {
	defer func() { s.metrics.observe("confirm_interaction", err) }()

	if len(code) != InteractionCodeLength {
		return "", NoMatchingInteraction()
	}

	acct, err := s.repo.FindByInteractionCode(ctx, code)
	if err != nil {
		return "", err
	}
	in, ok := acct.Interaction()
	if !ok || in.Code != code {
		return "", NoMatchingInteraction()
	}

	if !IsTimely(in.IssuedAt, s.cfg.Deadline(in.Kind), s.now()) {
		return in.Kind, oops.Code(CodeInteractionExpired).
			With("username", acct.Username()).
			With("kind", in.Kind.String()).
			With("issued_at", in.IssuedAt).
			Wrapf(ErrInteractionExpired, "%s expired", in.Kind)
	}

	switch in.Kind {
	case InteractionActivate:
		acct.Activate()
	case InteractionReset:
		if err := acct.PromotePendingPassword(); err != nil {
			// Nothing to promote; retire the code.
			acct.ClearInteraction()
			if cerr := s.repo.ConsumeInteraction(ctx, acct.ID(), code, acct.DataToStore()); cerr != nil {
				return in.Kind, cerr
			}
			acct.MarkClean()
			return in.Kind, err
		}
	case InteractionDelete:
		if err := s.repo.DeleteByInteraction(ctx, acct.ID(), code); err != nil {
			return in.Kind, err
		}
		s.logger.InfoContext(ctx, "account deleted", "username", acct.Username(), "confirmed", true)
		return in.Kind, nil
	default:
		return "", oops.Code(CodeInvalidInteractionKind).
			With("kind", string(in.Kind)).
			Wrap(ErrInvalidInteractionKind)
	}

	acct.ClearInteraction()
	if err := s.repo.ConsumeInteraction(ctx, acct.ID(), code, acct.DataToStore()); err != nil {
		return in.Kind, err
	}
	acct.MarkClean()

	s.logger.InfoContext(ctx, "interaction confirmed",
		"username", acct.Username(),
		"kind", in.Kind.String())
	return in.Kind, nil
}

// DeletionRequest describes an account removal.
type DeletionRequest struct {
	// Confirm defers the deletion behind a delete code.
	Confirm bool
	// Message, when non-empty, is mailed to the account.
	Message string
}

// RequestDeletion removes the account matching lookup, or with Confirm issues
// a delete code and leaves the account in place until it is confirmed. The
// returned account reflects its state before any immediate deletion.
func (s *Service) RequestDeletion(ctx context.Context, lookup Lookup, req DeletionRequest) (acct *Account, err error) {
	defer func() { s.metrics.observe("delete", err) }()

	acct, err = s.Get(ctx, lookup)
	if err != nil {
		return nil, err
	}

	var code string
	if req.Confirm {
		in, err := acct.SetInteraction(InteractionDelete, s.now())
		if err != nil {
			return nil, err
		}
		code = in.Code
		if err := s.Store(ctx, acct); err != nil {
			return nil, err
		}
	} else {
		n, err := s.repo.Delete(ctx, lookup)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, NotFound(lookup)
		}
	}

	s.logger.InfoContext(ctx, "account deletion requested",
		"username", acct.Username(),
		"pending_confirmation", req.Confirm)

	if req.Message != "" {
		s.send(ctx, acct, s.cfg.Subjects.Delete, req.Message, map[string]string{
			VarURL: code,
		})
	}
	return acct, nil
}

// Suspend deactivates the account matching lookup. There is no confirmation
// step.
func (s *Service) Suspend(ctx context.Context, lookup Lookup, message string) (err error) {
	defer func() { s.metrics.observe("suspend", err) }()

	if err := lookup.Validate(); err != nil {
		return err
	}

	var acct *Account
	if message != "" {
		acct, err = s.repo.FindBy(ctx, lookup)
		if err != nil {
			return err
		}
	}

	n, err := s.repo.SetActive(ctx, lookup, false)
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFound(lookup)
	}

	s.logger.InfoContext(ctx, "account suspended",
		"username", lookup.Username,
		"email", lookup.Email)

	if acct != nil {
		s.send(ctx, acct, s.cfg.Subjects.Suspend, message, nil)
	}
	return nil
}

// SendEmail renders template and mails it to the account. Delivery is best
// effort: failures are logged and counted, never returned. The sender,
// username and email variables are always available; vars may override them.
func (s *Service) SendEmail(ctx context.Context, acct *Account, subject, template string, vars map[string]string) {
	s.send(ctx, acct, subject, template, vars)
}

func (s *Service) send(ctx context.Context, acct *Account, subject, template string, vars map[string]string) {
	all := map[string]string{
		VarSender:   s.cfg.Sender,
		VarUsername: acct.Username(),
		VarEmail:    acct.Email(),
	}
	for k, v := range vars {
		all[k] = v
	}

	msg := Message{
		From:    s.cfg.Sender,
		To:      acct.Email(),
		Subject: subject,
		Body:    Render(template, all),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.metrics.notificationFailed(subject)
		errutil.LogWarn(s.logger, "notification not delivered", oops.Code(CodeNotificationFailed).
			With("username", acct.Username()).
			With("subject", subject).
			Wrap(err))
	}
}
