// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

// Package memory implements the auth repositories in process memory.
// It mirrors the PostgreSQL semantics, including username uniqueness,
// and backs tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/chatloop/chatloop/internal/auth"
)

// UserRepository implements auth.UserRepository with a mutex-guarded map.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[ulid.ULID]*auth.User
	byUsername map[string]ulid.ULID
}

// NewUserRepository creates an empty in-memory repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[ulid.ULID]*auth.User),
		byUsername: make(map[string]ulid.ULID),
	}
}

// Create stores a new user, enforcing username uniqueness.
func (r *UserRepository) Create(_ context.Context, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return oops.Code("USER_USERNAME_TAKEN").
			With("username", user.Username).
			Wrap(auth.ErrUsernameTaken)
	}

	u := *user
	r.byID[u.ID] = &u
	r.byUsername[u.Username] = u.ID
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	u := *user
	return &u, nil
}

// GetByUsername retrieves a user by exact username match.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	u := *r.byID[id]
	return &u, nil
}

// Delete removes a user. Used by tests to model an account deleted
// while its session token is still live.
func (r *UserRepository) Delete(_ context.Context, id ulid.ULID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.byID[id]; ok {
		delete(r.byUsername, user.Username)
		delete(r.byID, id)
	}
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
