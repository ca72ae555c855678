// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

package auth

import "github.com/oklog/ulid/v2"

// TokenIssuer mints a signed session token asserting a user identity.
// Tokens are stateless: the server keeps no session table, and
// validity is entirely determined by signature and expiry.
type TokenIssuer interface {
	Issue(userID ulid.ULID) (string, error)
}

// TokenVerifier checks a session token and returns the asserted user
// identity. Verification failures carry the CodeInvalidToken code.
type TokenVerifier interface {
	Verify(token string) (ulid.ULID, error)
}
