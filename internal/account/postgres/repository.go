// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres implements account.Repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
)

const (
	table = "accounts"

	usernameConstraint = "accounts_username_key"
	emailConstraint    = "accounts_email_key"
)

var selectColumns = []string{
	"id",
	"username",
	"email",
	"password_hash",
	"pending_password_hash",
	"interaction_code",
	"interaction_issued_at",
	"interaction_type",
	"active",
	"registered_at",
}

// Repository implements account.Repository using PostgreSQL.
type Repository struct {
	pool    poolIface
	builder squirrel.StatementBuilderType
}

var _ account.Repository = (*Repository)(nil)

// NewRepository creates a Repository on pool, normally a *pgxpool.Pool.
func NewRepository(pool poolIface) *Repository {
	return &Repository{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func lookupWhere(lookup account.Lookup) squirrel.Eq {
	where := squirrel.Eq{}
	if lookup.Username != "" {
		where["username"] = lookup.Username
	}
	if lookup.Email != "" {
		where["email"] = lookup.Email
	}
	return where
}

// FindBy retrieves the account matching lookup.
func (r *Repository) FindBy(ctx context.Context, lookup account.Lookup) (*account.Account, error) {
	if err := lookup.Validate(); err != nil {
		return nil, err
	}
	stmt, args, err := r.builder.Select(selectColumns...).
		From(table).
		Where(lookupWhere(lookup)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, oops.Code(account.CodeLookupFailed).With("operation", "build find query").Wrap(err)
	}

	acct, err := scanAccount(r.pool.QueryRow(ctx, stmt, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.NotFound(lookup)
	}
	if err != nil {
		return nil, oops.Code(account.CodeLookupFailed).
			With("operation", "find account").
			With("username", lookup.Username).
			With("email", lookup.Email).
			Wrap(err)
	}
	return acct, nil
}

// FindByInteractionCode retrieves the account holding a pending code.
func (r *Repository) FindByInteractionCode(ctx context.Context, code string) (*account.Account, error) {
	stmt, args, err := r.builder.Select(selectColumns...).
		From(table).
		Where(squirrel.Eq{"interaction_code": code}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, oops.Code(account.CodeLookupFailed).With("operation", "build interaction query").Wrap(err)
	}

	acct, err := scanAccount(r.pool.QueryRow(ctx, stmt, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.NoMatchingInteraction()
	}
	if err != nil {
		return nil, oops.Code(account.CodeLookupFailed).
			With("operation", "find account by interaction code").
			Wrap(err)
	}
	return acct, nil
}

// Exists reports whether any account stores value in field's column.
func (r *Repository) Exists(ctx context.Context, field account.Field, value string) (bool, error) {
	column := field.Column()
	if column == "" {
		return false, oops.Code(account.CodeLookupFailed).
			With("field", int(field)).
			Errorf("unknown account field")
	}
	stmt, args, err := r.builder.Select("1").
		Prefix("SELECT EXISTS (").
		From(table).
		Where(squirrel.Eq{column: value}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, oops.Code(account.CodeLookupFailed).With("operation", "build exists query").Wrap(err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, stmt, args...).Scan(&exists); err != nil {
		return false, oops.Code(account.CodeLookupFailed).
			With("operation", "check account exists").
			With("column", column).
			Wrap(err)
	}
	return exists, nil
}

// Insert stores a new account, assigning its id. The registration time is
// set by the database.
func (r *Repository) Insert(ctx context.Context, data account.Assignments) (ulid.ULID, time.Time, error) {
	id := ulid.Make()
	stmt, args, err := r.builder.Insert(table).
		Columns(append([]string{"id"}, data.Columns()...)...).
		Values(append([]any{id.String()}, data.Values()...)...).
		Suffix("RETURNING registered_at").
		ToSql()
	if err != nil {
		return ulid.ULID{}, time.Time{}, oops.Code(account.CodeStoreFailed).With("operation", "build insert").Wrap(err)
	}

	var registeredAt time.Time
	err = withTx(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, stmt, args...).Scan(&registeredAt)
	})
	if err != nil {
		if dup := duplicateError(err, data); dup != nil {
			return ulid.ULID{}, time.Time{}, dup
		}
		return ulid.ULID{}, time.Time{}, oops.Code(account.CodeStoreFailed).
			With("operation", "insert account").
			Wrap(err)
	}
	return id, registeredAt, nil
}

// Update writes data to the account with the given id.
func (r *Repository) Update(ctx context.Context, id ulid.ULID, data account.Assignments) error {
	if len(data) == 0 {
		return nil
	}
	n, err := r.update(ctx, data.Map(), squirrel.Eq{"id": id.String()})
	if err != nil {
		if dup := duplicateError(err, data); dup != nil {
			return dup
		}
		return oops.Code(account.CodeStoreFailed).
			With("operation", "update account").
			With("id", id.String()).
			Wrap(err)
	}
	if n == 0 {
		return oops.Code(account.CodeNotFound).
			With("id", id.String()).
			Wrap(account.ErrNotFound)
	}
	return nil
}

// ConsumeInteraction applies data only if the account still holds code. The
// interaction columns are always cleared, so a code can be consumed once.
func (r *Repository) ConsumeInteraction(ctx context.Context, id ulid.ULID, code string, data account.Assignments) error {
	values := data.Map()
	values[account.FieldInteractionCode.Column()] = nil
	values[account.FieldInteractionIssuedAt.Column()] = nil
	values[account.FieldInteractionType.Column()] = nil

	n, err := r.update(ctx, values, squirrel.Eq{"id": id.String(), "interaction_code": code})
	if err != nil {
		return oops.Code(account.CodeConfirmFailed).
			With("operation", "consume interaction").
			With("id", id.String()).
			Wrap(err)
	}
	if n == 0 {
		return account.NoMatchingInteraction()
	}
	return nil
}

// DeleteByInteraction removes the account only if it still holds code.
func (r *Repository) DeleteByInteraction(ctx context.Context, id ulid.ULID, code string) error {
	n, err := r.delete(ctx, squirrel.Eq{"id": id.String(), "interaction_code": code})
	if err != nil {
		return oops.Code(account.CodeDeleteFailed).
			With("operation", "delete by interaction").
			With("id", id.String()).
			Wrap(err)
	}
	if n == 0 {
		return account.NoMatchingInteraction()
	}
	return nil
}

// Delete removes the accounts matching lookup.
func (r *Repository) Delete(ctx context.Context, lookup account.Lookup) (int64, error) {
	if err := lookup.Validate(); err != nil {
		return 0, err
	}
	n, err := r.delete(ctx, lookupWhere(lookup))
	if err != nil {
		return 0, oops.Code(account.CodeDeleteFailed).
			With("operation", "delete account").
			With("username", lookup.Username).
			With("email", lookup.Email).
			Wrap(err)
	}
	return n, nil
}

// SetActive sets the active flag on the accounts matching lookup.
func (r *Repository) SetActive(ctx context.Context, lookup account.Lookup, active bool) (int64, error) {
	if err := lookup.Validate(); err != nil {
		return 0, err
	}
	n, err := r.update(ctx, map[string]any{"active": active}, lookupWhere(lookup))
	if err != nil {
		return 0, oops.Code(account.CodeSuspendFailed).
			With("operation", "set active").
			With("username", lookup.Username).
			With("email", lookup.Email).
			Wrap(err)
	}
	return n, nil
}

func (r *Repository) update(ctx context.Context, values map[string]any, where squirrel.Eq) (int64, error) {
	stmt, args, err := r.builder.Update(table).SetMap(values).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}
	return r.exec(ctx, stmt, args)
}

func (r *Repository) delete(ctx context.Context, where squirrel.Eq) (int64, error) {
	stmt, args, err := r.builder.Delete(table).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	return r.exec(ctx, stmt, args)
}

func (r *Repository) exec(ctx context.Context, stmt string, args []any) (int64, error) {
	var n int64
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, stmt, args...)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}

// duplicateError maps a unique violation on username or email to the
// matching conflict error. Any other error yields nil.
func duplicateError(err error, data account.Assignments) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	values := data.Map()
	switch pgErr.ConstraintName {
	case usernameConstraint:
		username, _ := values[account.FieldUsername.Column()].(string)
		return account.DuplicateUsername(username)
	case emailConstraint:
		email, _ := values[account.FieldEmail.Column()].(string)
		return account.DuplicateEmail(email)
	default:
		return nil
	}
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		idStr string
		rec   account.Record
	)
	err := row.Scan(
		&idStr,
		&rec.Username,
		&rec.Email,
		&rec.PasswordHash,
		&rec.PendingPasswordHash,
		&rec.InteractionCode,
		&rec.InteractionIssuedAt,
		&rec.InteractionType,
		&rec.Active,
		&rec.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.With("operation", "scan account").Wrap(err)
	}

	rec.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse account id").With("id", idStr).Wrap(err)
	}
	return account.Restore(rec)
}
