// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package account implements the account and credential lifecycle.
//
// # Domain Types
//
// Accounts are created with New (unsaved) or Restore (loaded from a
// repository). Fields change only through setters, which validate input,
// hash passwords and track dirty fields so that Service.Store can issue a
// partial update.
//
// # Interactions
//
// Operations that need out-of-band confirmation (activation, password reset,
// deletion) issue a single pending Interaction whose code is mailed to the
// account holder. Service.ConfirmInteraction consumes the code atomically and
// applies the gated operation.
//
// # Services
//
// Service coordinates the Repository and Mailer ports:
//   - Register, Create - new accounts with optional activation
//   - Authenticate, Login - credential checks
//   - ResetPassword - direct or confirmed password change
//   - RequestDeletion, Suspend - removal and deactivation
//   - ConfirmInteraction - completes a pending operation
//
// Notifications are best effort: delivery failures are logged and counted,
// never returned.
package account
