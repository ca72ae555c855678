// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

// Package httpapi exposes the credential service as a JSON API with
// cookie-carried session tokens.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/chatloop/chatloop/internal/auth"
	"github.com/chatloop/chatloop/internal/observability"
	"github.com/chatloop/chatloop/internal/token"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "jwt"

// maxBodyBytes bounds request payloads; the auth payloads are tiny.
const maxBodyBytes = 1 << 20

// Handler serves the authentication endpoints.
type Handler struct {
	svc          *auth.Service
	issuer       auth.TokenIssuer
	verifier     auth.TokenVerifier
	cookieTTL    time.Duration
	cookieSecure bool
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// Options configures a Handler.
type Options struct {
	// CookieTTL is the session cookie lifetime. It should match the
	// token validity window. Values <= 0 fall back to token.DefaultTTL.
	CookieTTL time.Duration

	// CookieSecure marks the session cookie Secure. Enable in
	// production behind TLS.
	CookieSecure bool

	// Metrics receives request and domain counters. Optional.
	Metrics *observability.Metrics

	// Logger for boundary diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(svc *auth.Service, issuer auth.TokenIssuer, verifier auth.TokenVerifier, opts Options) (*Handler, error) {
	if svc == nil {
		return nil, oops.Errorf("credential service is required")
	}
	if issuer == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if verifier == nil {
		return nil, oops.Errorf("token verifier is required")
	}
	if opts.CookieTTL <= 0 {
		opts.CookieTTL = token.DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Handler{
		svc:          svc,
		issuer:       issuer,
		verifier:     verifier,
		cookieTTL:    opts.CookieTTL,
		cookieSecure: opts.CookieSecure,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}, nil
}

// Routes builds the API route table. Method mismatches get 405 from
// the mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", h.instrument("register", h.handleRegister))
	mux.HandleFunc("POST /api/auth/login", h.instrument("login", h.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", h.instrument("logout", h.handleLogout))
	mux.HandleFunc("GET /api/auth/me", h.instrument("me", h.requireAuth(h.handleMe)))
	return mux
}

// userResponse is the profile payload. The password hash never appears
// in any response.
type userResponse struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:         u.ID.String(),
		FullName:   u.FullName,
		Username:   u.Username,
		ProfilePic: u.ProfilePicURL,
	}
}

type registerRequest struct {
	FullName        string `json:"fullName"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Gender          string `json:"gender"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.svc.Register(r.Context(), auth.RegisterInput{
		FullName:        req.FullName,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Gender:          req.Gender,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.setSessionCookie(w, user); err != nil {
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RegistrationsTotal.Inc()
	}
	h.writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.svc.Login(r.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		h.writeError(w, err)
		return
	}

	if err := h.setSessionCookie(w, user); err != nil {
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}
	h.writeJSON(w, http.StatusOK, toUserResponse(user))
}

// handleLogout clears the session cookie. The token is not verified:
// logout is idempotent and unconditional.
func (h *Handler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.clearedSessionCookie())
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerID(r.Context())
	if !ok {
		// Unreachable behind requireAuth; kept so the handler never
		// trusts an unset context.
		h.writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.svc.GetUser(r.Context(), callerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toUserResponse(user))
}

// setSessionCookie issues a token for the user and attaches it as the
// session cookie.
func (h *Handler) setSessionCookie(w http.ResponseWriter, user *auth.User) error {
	tok, err := h.issuer.Issue(user.ID)
	if err != nil {
		return oops.Code("TOKEN_ISSUE_FAILED").
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	http.SetCookie(w, h.sessionCookie(tok))
	return nil
}

func (h *Handler) sessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// clearedSessionCookie overwrites the session cookie with an empty
// value and an immediate expiry so the client drops it.
func (h *Handler) clearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// decodeJSON decodes a bounded JSON request body.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return oops.Code(auth.CodeInvalidInput).Errorf("all fields are required")
		}
		return oops.Code(auth.CodeInvalidInput).Errorf("invalid request body")
	}
	return nil
}
