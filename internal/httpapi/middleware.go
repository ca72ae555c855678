// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/oklog/ulid/v2"
)

// callerKey is the context key for the verified caller identity.
type callerKey struct{}

// CallerID returns the verified user ID placed in the context by the
// authentication middleware.
func CallerID(ctx context.Context) (ulid.ULID, bool) {
	id, ok := ctx.Value(callerKey{}).(ulid.ULID)
	return id, ok
}

// requireAuth verifies the session cookie and injects the asserted
// user ID into the request context. Requests without a valid token are
// rejected before the handler runs; the response does not distinguish
// missing, malformed, and expired tokens.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			h.writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, err := h.verifier.Verify(cookie.Value)
		if err != nil {
			h.writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), callerKey{}, userID)
		next(w, r.WithContext(ctx))
	}
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument counts requests per operation and response status.
func (h *Handler) instrument(op string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		h.metrics.HTTPRequestsTotal.
			WithLabelValues(op, strconv.Itoa(rec.status)).
			Inc()
	}
}
