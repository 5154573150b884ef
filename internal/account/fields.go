// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

// Field identifies a persisted account attribute.
type Field uint8

// Persisted fields, in column order.
const (
	FieldUsername Field = iota
	FieldEmail
	FieldPasswordHash
	FieldPendingPasswordHash
	FieldInteractionCode
	FieldInteractionIssuedAt
	FieldInteractionType
	FieldActive

	fieldCount
)

var fieldColumns = [fieldCount]string{
	FieldUsername:            "username",
	FieldEmail:               "email",
	FieldPasswordHash:        "password_hash",
	FieldPendingPasswordHash: "pending_password_hash",
	FieldInteractionCode:     "interaction_code",
	FieldInteractionIssuedAt: "interaction_issued_at",
	FieldInteractionType:     "interaction_type",
	FieldActive:              "active",
}

// Column returns the column the field is stored in.
func (f Field) Column() string {
	if f >= fieldCount {
		return ""
	}
	return fieldColumns[f]
}

func (f Field) String() string { return f.Column() }

// FieldSet is an ordered set of fields. Order is first-mutation order.
type FieldSet struct {
	mask  uint16
	order []Field
}

// Add records f. Adding a field already present keeps its original position.
func (s *FieldSet) Add(f Field) {
	bit := uint16(1) << f
	if s.mask&bit != 0 {
		return
	}
	s.mask |= bit
	s.order = append(s.order, f)
}

// Has reports whether f is in the set.
func (s *FieldSet) Has(f Field) bool {
	return s.mask&(uint16(1)<<f) != 0
}

// Len returns the number of fields in the set.
func (s *FieldSet) Len() int { return len(s.order) }

// Fields returns the fields in insertion order.
func (s *FieldSet) Fields() []Field {
	out := make([]Field, len(s.order))
	copy(out, s.order)
	return out
}

// Columns returns the column names in insertion order.
func (s *FieldSet) Columns() []string {
	out := make([]string, len(s.order))
	for i, f := range s.order {
		out[i] = f.Column()
	}
	return out
}

// Reset empties the set.
func (s *FieldSet) Reset() {
	s.mask = 0
	s.order = nil
}
