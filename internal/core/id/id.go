// Package id defines the identifier type shared by every stored entity.
package id

import (
	"github.com/google/uuid"
)

// ID is the identifier for catalogs, documents and register rows.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7, so id order approximates creation
// order and B-tree inserts stay local.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v7
}

// Parse validates and converts a string to an ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts a string to an ID, panicking on error. For tests and
// seed data only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether the ID is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
