package auth

import (
	"context"
	"errors"
	"slices"
)

// ErrUserNotFound is returned by a UserStore when no user has the identifier.
var ErrUserNotFound = errors.New("user not found")

// UserRecord is a stored user.
type UserRecord struct {
	Username     string
	PasswordHash string
	Authorities  []string
	Disabled     bool
}

func (u *UserRecord) clone() *UserRecord {
	c := *u
	c.Authorities = slices.Clone(u.Authorities)
	return &c
}

// UserStore looks users up by identifier.
type UserStore interface {
	LookupByIdentifier(ctx context.Context, identifier string) (*UserRecord, error)
}
