// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/chatloop/chatloop/internal/auth"
	authpostgres "github.com/chatloop/chatloop/internal/auth/postgres"
	"github.com/chatloop/chatloop/internal/httpapi"
	"github.com/chatloop/chatloop/internal/store"
	"github.com/chatloop/chatloop/internal/token"
)

// testEnv holds the resources for the end-to-end auth flow tests.
type testEnv struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container testcontainers.Container
	pool      *pgxpool.Pool
	server    *httpapi.Server
	baseURL   string
}

var env *testEnv

var _ = BeforeSuite(func() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	env = &testEnv{ctx: ctx, cancel: cancel}

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("chatloop_test"),
		tcpostgres.WithUsername("chatloop"),
		tcpostgres.WithPassword("chatloop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	Expect(err).NotTo(HaveOccurred())
	env.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())

	migrator, err := store.NewMigrator(connStr)
	Expect(err).NotTo(HaveOccurred())
	Expect(migrator.Up()).To(Succeed())
	Expect(migrator.Close()).To(Succeed())

	pool, err := store.Open(ctx, connStr)
	Expect(err).NotTo(HaveOccurred())
	env.pool = pool

	svc, err := auth.NewService(
		authpostgres.NewUserRepository(pool),
		auth.NewBcryptHasher(auth.DefaultBcryptCost),
	)
	Expect(err).NotTo(HaveOccurred())

	tokens, err := token.NewManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	Expect(err).NotTo(HaveOccurred())

	handler, err := httpapi.NewHandler(svc, tokens, tokens, httpapi.Options{
		CookieTTL: tokens.TTL(),
	})
	Expect(err).NotTo(HaveOccurred())

	server := httpapi.NewServer("127.0.0.1:0", handler.Routes())
	_, err = server.Start()
	Expect(err).NotTo(HaveOccurred())
	env.server = server
	env.baseURL = "http://" + server.Addr()
})

var _ = AfterSuite(func() {
	if env == nil {
		return
	}
	if env.server != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		Expect(env.server.Stop(stopCtx)).To(Succeed())
	}
	if env.pool != nil {
		env.pool.Close()
	}
	if env.container != nil {
		Expect(env.container.Terminate(context.Background())).To(Succeed())
	}
	env.cancel()
})

// apiClient is an HTTP client with a cookie jar, modeling a browser
// session against the auth API.
type apiClient struct {
	http *http.Client
}

func newAPIClient() *apiClient {
	jar, err := cookiejar.New(nil)
	Expect(err).NotTo(HaveOccurred())
	return &apiClient{http: &http.Client{Jar: jar, Timeout: 10 * time.Second}}
}

func (c *apiClient) post(path string, body any) (*http.Response, map[string]any) {
	raw, err := json.Marshal(body)
	Expect(err).NotTo(HaveOccurred())

	resp, err := c.http.Post(env.baseURL+path, "application/json", bytes.NewReader(raw))
	Expect(err).NotTo(HaveOccurred())
	return resp, decodeResponse(resp)
}

func (c *apiClient) get(path string) (*http.Response, map[string]any) {
	resp, err := c.http.Get(env.baseURL + path)
	Expect(err).NotTo(HaveOccurred())
	return resp, decodeResponse(resp)
}

func (c *apiClient) sessionCookie() *http.Cookie {
	u, err := url.Parse(env.baseURL)
	Expect(err).NotTo(HaveOccurred())
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == httpapi.SessionCookieName {
			return cookie
		}
	}
	return nil
}

func decodeResponse(resp *http.Response) map[string]any {
	defer func() { _ = resp.Body.Close() }()
	var body map[string]any
	Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
	return body
}

func registration(username string) map[string]string {
	return map[string]string{
		"fullName":        "Integration User",
		"username":        username,
		"password":        "password123",
		"confirmPassword": "password123",
		"gender":          "male",
	}
}

var _ = Describe("Auth flow", func() {
	var serial int

	uniqueName := func() string {
		serial++
		return fmt.Sprintf("flow_user_%d_%d", GinkgoParallelProcess(), serial)
	}

	It("registers, reads the profile, and logs out", func() {
		client := newAPIClient()
		username := uniqueName()

		By("registering a new account")
		resp, body := client.post("/api/auth/register", registration(username))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(body["username"]).To(Equal(username))
		Expect(body["profilePic"]).To(Equal(
			"https://avatar.iran.liara.run/public/boy?username=" + username))
		Expect(body).NotTo(HaveKey("password"))
		Expect(client.sessionCookie()).NotTo(BeNil())

		By("fetching the profile with the session cookie")
		resp, body = client.get("/api/auth/me")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body["username"]).To(Equal(username))

		By("logging out")
		resp, body = client.post("/api/auth/logout", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body["message"]).To(Equal("logged out"))
		Expect(client.sessionCookie()).To(BeNil())

		By("rejecting the profile request after logout")
		resp, body = client.get("/api/auth/me")
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(body["error"]).To(Equal("authentication required"))
	})

	It("logs in with registered credentials from a fresh client", func() {
		registrant := newAPIClient()
		username := uniqueName()
		resp, _ := registrant.post("/api/auth/register", registration(username))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		client := newAPIClient()
		resp, body := client.post("/api/auth/login", map[string]string{
			"username": username,
			"password": "password123",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body["username"]).To(Equal(username))
		Expect(client.sessionCookie()).NotTo(BeNil())

		resp, body = client.get("/api/auth/me")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body["username"]).To(Equal(username))
	})

	It("rejects a duplicate username with a conflict", func() {
		client := newAPIClient()
		username := uniqueName()

		resp, _ := client.post("/api/auth/register", registration(username))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		resp, body := newAPIClient().post("/api/auth/register", registration(username))
		Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		Expect(body["error"]).To(Equal("username already taken"))
	})

	It("answers wrong password and unknown user identically", func() {
		client := newAPIClient()
		username := uniqueName()
		resp, _ := client.post("/api/auth/register", registration(username))
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		resp, wrongPass := newAPIClient().post("/api/auth/login", map[string]string{
			"username": username,
			"password": "wrongpassword",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))

		resp, unknown := newAPIClient().post("/api/auth/login", map[string]string{
			"username": "never_registered",
			"password": "wrongpassword",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(wrongPass).To(Equal(unknown))
	})

	It("rejects invalid registration payloads", func() {
		client := newAPIClient()

		payload := registration(uniqueName())
		payload["confirmPassword"] = "different456"
		resp, body := client.post("/api/auth/register", payload)
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(body["error"]).To(ContainSubstring("passwords do not match"))
		Expect(client.sessionCookie()).To(BeNil())
	})
})
