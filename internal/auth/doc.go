// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

// Package auth provides the credential service for chatloop.
//
// # Domain Types
//
// User should be created with NewUser, which validates the account
// invariants (non-empty fields, recognized gender, hashed password).
// Direct struct initialization bypasses validation and may create
// invalid state. Repository implementations receive pre-validated
// values from the constructor.
//
// # Services
//
// Service coordinates registration, credential verification, and
// profile retrieval over a UserRepository and a PasswordHasher. Session
// tokens are issued by a TokenIssuer after a successful Register or
// Login; the HTTP layer owns the cookie that carries them.
package auth
