// Package ident generates opaque identifiers for imported models and motions.
package ident

import "github.com/google/uuid"

// ID is an opaque unique identifier. Only equality is meaningful.
type ID string

// New returns a fresh random identifier.
func New() ID {
	return ID(uuid.NewString())
}

// IsZero reports whether id is the empty identifier.
func (id ID) IsZero() bool {
	return id == ""
}

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}
