// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

package auth

import "errors"

// Error codes attached to oops errors returned by the credential
// service. The HTTP layer maps them to response statuses.
const (
	CodeInvalidInput       = "AUTH_INVALID_INPUT"
	CodeUsernameTaken      = "AUTH_USERNAME_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeUserNotFound       = "AUTH_USER_NOT_FOUND"
	CodeInvalidToken       = "AUTH_INVALID_TOKEN"
)

// ErrNotFound is returned by repositories when a requested user does
// not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned by repositories when an insert collides
// with the unique username constraint.
var ErrUsernameTaken = errors.New("username taken")
