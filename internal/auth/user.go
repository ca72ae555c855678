// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Gender is the fixed gender enumeration used for avatar derivation.
type Gender string

// Recognized gender values.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender validates a raw gender value from client input.
func ParseGender(raw string) (Gender, error) {
	switch Gender(raw) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	default:
		return "", oops.Code(CodeInvalidInput).
			With("gender", raw).
			Errorf("invalid gender")
	}
}

// User represents a registered account. PasswordHash always holds a
// bcrypt hash, never the plaintext, for the entire lifetime of the
// record. ProfilePicURL is derived once at creation and stored; it is
// never recomputed afterwards.
type User struct {
	ID            ulid.ULID
	Username      string
	FullName      string
	PasswordHash  string
	Gender        Gender
	ProfilePicURL string
	CreatedAt     time.Time
}

// NewUser creates a validated User with a fresh ID and a derived
// profile picture URL. The password must already be hashed.
func NewUser(fullName, username, passwordHash string, gender Gender) (*User, error) {
	if fullName == "" || username == "" || passwordHash == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("invalid user data")
	}
	if gender != GenderMale && gender != GenderFemale {
		return nil, oops.Code(CodeInvalidInput).Errorf("invalid user data")
	}

	return &User{
		ID:            ulid.Make(),
		Username:      username,
		FullName:      fullName,
		PasswordHash:  passwordHash,
		Gender:        gender,
		ProfilePicURL: AvatarURL(username, gender),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// UserRepository manages user persistence. Implementations must
// enforce username uniqueness at insert time and surface a collision
// as ErrUsernameTaken; the service's check-then-insert sequence is not
// atomic on its own.
type UserRepository interface {
	// Create stores a new user. Returns ErrUsernameTaken (wrapped)
	// when the username is already present.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound (wrapped)
	// when no such user exists.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by exact username match.
	// Returns ErrNotFound (wrapped) when no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)
}
