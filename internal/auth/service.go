// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

package auth

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// dummyPasswordHash is verified against when a username does not exist,
// so the unknown-user and wrong-password paths take comparable time.
// It is a bcrypt hash that never matches any submitted password.
//
//nolint:gosec // G101: fake hash for timing consistency, not a credential.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service implements the credential operations: registration, login,
// and profile retrieval. All state lives in the injected repository;
// the service itself holds no mutable state and is safe for concurrent
// use.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewService creates a credential Service.
func NewService(users UserRepository, hasher PasswordHasher) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &Service{users: users, hasher: hasher}, nil
}

// RegisterInput carries the registration payload. All fields are
// required.
type RegisterInput struct {
	FullName        string
	Username        string
	Password        string
	ConfirmPassword string
	Gender          string
}

// LoginInput carries the login payload. Both fields are required.
type LoginInput struct {
	Username string
	Password string
}

// Register validates the input, hashes the password, and creates the
// user record. The username uniqueness pre-check is advisory only; the
// store's unique constraint closes the race, and a collision at insert
// time is reported the same way as one caught by the pre-check.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.FullName == "" || in.Username == "" || in.Password == "" ||
		in.ConfirmPassword == "" || in.Gender == "" {
		return nil, oops.Code(CodeInvalidInput).Errorf("all fields are required")
	}
	if in.Password != in.ConfirmPassword {
		return nil, oops.Code(CodeInvalidInput).Errorf("passwords do not match")
	}

	gender, err := ParseGender(in.Gender)
	if err != nil {
		return nil, err
	}

	_, err = s.users.GetByUsername(ctx, in.Username)
	if err == nil {
		return nil, oops.Code(CodeUsernameTaken).Errorf("username already taken")
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check username").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(in.FullName, in.Username, hash, gender)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, oops.Code(CodeUsernameTaken).Errorf("username already taken")
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			With("username", in.Username).
			Wrap(err)
	}

	return user, nil
}

// Login verifies the credentials and returns the matching user. The
// unknown-user and wrong-password failures are indistinguishable to the
// caller, and a dummy hash comparison keeps their response times
// comparable.
func (s *Service) Login(ctx context.Context, in LoginInput) (*User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
	}

	user, lookupErr := s.users.GetByUsername(ctx, in.Username)

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(in.Password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		return nil, oops.Code(CodeInvalidCredentials).Errorf("invalid username or password")
	}

	return user, nil
}

// GetUser retrieves the profile for a verified caller identity. The
// caller ID comes from a verified session token; a miss means the
// token outlived the account.
func (s *Service) GetUser(ctx context.Context, id ulid.ULID) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeUserNotFound).
				With("id", id.String()).
				Errorf("user not found")
		}
		return nil, oops.Code("AUTH_GET_USER_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}
