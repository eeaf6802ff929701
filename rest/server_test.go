package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mgiroux/ticketd/auth"
	"github.com/mgiroux/ticketd/rest"
	"github.com/mgiroux/ticketd/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var signingKey = []byte("end-to-end-signing-key")

type testServer struct {
	app     *fiber.App
	db      *bun.DB
	users   *store.Users
	tickets *store.Tickets
	tokens  *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := store.Open("file:rest_" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, store.Migrate(context.Background(), db))

	users := store.NewUsers(db)
	tickets := store.NewTickets(db)

	provider := auth.NewUserProvider(users)
	tokens := auth.NewTokenService(signingKey, time.Hour, "ticketd-test", nil)
	auther := auth.NewAuthenticator(provider, tokens)

	app := rest.New(rest.Deps{
		Auther:  auther,
		Users:   users,
		Tickets: tickets,
	})

	return &testServer{app: app, db: db, users: users, tickets: tickets, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func (s *testServer) register(t *testing.T, username, email, password string) {
	t.Helper()

	res := s.do(t, "POST", "/users", "", fiber.Map{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()

	res := s.do(t, "POST", "/users/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var token string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&token))
	require.NotEmpty(t, token)
	return token
}

func decodeError(t *testing.T, res *http.Response) rest.ErrorEntity {
	t.Helper()

	var body rest.ErrorEntity
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

func TestRegisterLoginAndAccess(t *testing.T) {
	s := newTestServer(t)

	s.register(t, "alice", "alice@x.com", "secret-password")
	token := s.login(t, "alice", "secret-password")

	t.Run("token grants access to protected paths", func(t *testing.T) {
		res := s.do(t, "GET", "/tickets", token, nil)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		// The final base64url char carries padding bits, so tamper with
		// the one before it.
		n := len(token) - 2
		flip := "A"
		if token[n] == 'A' {
			flip = "B"
		}

		res := s.do(t, "GET", "/tickets", token[:n]+flip+token[n+1:], nil)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		res := s.do(t, "GET", "/tickets", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("failure responses are indistinguishable", func(t *testing.T) {
		expired := auth.NewTokenService(signingKey, time.Hour, "ticketd-test", nil).
			WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })

		expiredToken, err := expired.Generate(identityStub{username: "alice", email: "alice@x.com"})
		require.NoError(t, err)

		resExpired := s.do(t, "GET", "/tickets", expiredToken, nil)
		resMissing := s.do(t, "GET", "/tickets", "", nil)
		resGarbage := s.do(t, "GET", "/tickets", "garbage", nil)

		assert.Equal(t, fiber.StatusUnauthorized, resExpired.StatusCode)

		bodyExpired := decodeError(t, resExpired)
		bodyMissing := decodeError(t, resMissing)
		bodyGarbage := decodeError(t, resGarbage)

		assert.Equal(t, bodyMissing, bodyExpired)
		assert.Equal(t, bodyMissing, bodyGarbage)
	})
}

type identityStub struct {
	id       int64
	username string
	email    string
}

func (s identityStub) ID() int64        { return s.id }
func (s identityStub) Username() string { return s.username }
func (s identityStub) Email() string    { return s.email }

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@x.com", "secret-password")

	t.Run("wrong password and unknown user read the same", func(t *testing.T) {
		resWrong := s.do(t, "POST", "/users/login", "", fiber.Map{
			"username": "alice",
			"password": "not-it",
		})
		resUnknown := s.do(t, "POST", "/users/login", "", fiber.Map{
			"username": "mallory",
			"password": "whatever",
		})

		assert.Equal(t, fiber.StatusUnauthorized, resWrong.StatusCode)
		assert.Equal(t, fiber.StatusUnauthorized, resUnknown.StatusCode)
		assert.Equal(t, decodeError(t, resWrong), decodeError(t, resUnknown))
	})

	t.Run("missing fields are a bad request", func(t *testing.T) {
		res := s.do(t, "POST", "/users/login", "", fiber.Map{"username": "alice"})
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})
}

func TestRegistrationConflicts(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@x.com", "secret-password")

	t.Run("duplicate email", func(t *testing.T) {
		res := s.do(t, "POST", "/users", "", fiber.Map{
			"username": "alice2",
			"email":    "alice@x.com",
			"password": "secret-password",
		})
		assert.Equal(t, fiber.StatusConflict, res.StatusCode)
	})

	t.Run("duplicate username", func(t *testing.T) {
		res := s.do(t, "POST", "/users", "", fiber.Map{
			"username": "alice",
			"email":    "alice2@x.com",
			"password": "secret-password",
		})
		assert.Equal(t, fiber.StatusConflict, res.StatusCode)
	})

	t.Run("invalid payload", func(t *testing.T) {
		res := s.do(t, "POST", "/users", "", fiber.Map{
			"username": "bob",
			"email":    "not-an-email",
			"password": "secret-password",
		})
		assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
	})
}

func TestTicketLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@x.com", "secret-password")
	token := s.login(t, "alice", "secret-password")

	t.Run("create", func(t *testing.T) {
		res := s.do(t, "POST", "/tickets", token, fiber.Map{
			"title":       "broken build",
			"description": "ci is red",
		})
		assert.Equal(t, fiber.StatusCreated, res.StatusCode)
	})

	t.Run("duplicate title", func(t *testing.T) {
		res := s.do(t, "POST", "/tickets", token, fiber.Map{"title": "broken build"})
		assert.Equal(t, fiber.StatusConflict, res.StatusCode)
		assert.Equal(t, "Duplicate ticket title", decodeError(t, res).Message)
	})

	t.Run("get", func(t *testing.T) {
		res := s.do(t, "GET", "/tickets/1", token, nil)
		require.Equal(t, fiber.StatusOK, res.StatusCode)

		var ticket store.Ticket
		require.NoError(t, json.NewDecoder(res.Body).Decode(&ticket))
		assert.Equal(t, "broken build", ticket.Title)
		assert.Equal(t, store.StatusOpen, ticket.Status)
	})

	t.Run("update", func(t *testing.T) {
		res := s.do(t, "PUT", "/tickets/1", token, fiber.Map{
			"title":  "broken build",
			"status": store.StatusDone,
		})
		assert.Equal(t, fiber.StatusNoContent, res.StatusCode)
	})

	t.Run("get missing", func(t *testing.T) {
		res := s.do(t, "GET", "/tickets/999", token, nil)
		assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
		assert.Equal(t, "Ticket not found.", decodeError(t, res).Message)
	})

	t.Run("delete", func(t *testing.T) {
		res := s.do(t, "DELETE", "/tickets/1", token, nil)
		assert.Equal(t, fiber.StatusAccepted, res.StatusCode)

		res = s.do(t, "GET", "/tickets/1", token, nil)
		assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
	})
}

func TestTicketAssignment(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@x.com", "secret-password")
	token := s.login(t, "alice", "secret-password")

	res := s.do(t, "POST", "/tickets", token, fiber.Map{"title": "ticket seven"})
	require.Equal(t, fiber.StatusCreated, res.StatusCode)

	user, err := s.users.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)

	t.Run("assign to existing user", func(t *testing.T) {
		res := s.do(t, "PUT", "/tickets/1/assign/1", token, nil)
		assert.Equal(t, fiber.StatusNoContent, res.StatusCode)

		ticket, err := s.tickets.Find(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, ticket.UserID)
		assert.Equal(t, user.ID, *ticket.UserID)
	})

	t.Run("assign to missing user", func(t *testing.T) {
		res := s.do(t, "PUT", "/tickets/1/assign/999", token, nil)
		assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
		assert.Equal(t, "User to assign ticket not found.", decodeError(t, res).Message)

		// No partial state change: the previous assignee survives.
		ticket, err := s.tickets.Find(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, ticket.UserID)
		assert.Equal(t, user.ID, *ticket.UserID)
	})

	t.Run("assign a missing ticket", func(t *testing.T) {
		res := s.do(t, "PUT", "/tickets/999/assign/1", token, nil)
		assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
		assert.Equal(t, "Ticket not found.", decodeError(t, res).Message)
	})
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@x.com", "secret-password")
	token := s.login(t, "alice", "secret-password")

	t.Run("list users omits password hashes", func(t *testing.T) {
		res := s.do(t, "GET", "/users", token, nil)
		require.Equal(t, fiber.StatusOK, res.StatusCode)

		raw, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "password")
	})

	t.Run("list users requires a token", func(t *testing.T) {
		res := s.do(t, "GET", "/users", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	t.Run("update profile", func(t *testing.T) {
		res := s.do(t, "PUT", "/users/1", token, fiber.Map{
			"username": "alice",
			"email":    "alice@elsewhere.com",
		})
		assert.Equal(t, fiber.StatusNoContent, res.StatusCode)

		user, err := s.users.Find(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "alice@elsewhere.com", user.Email)
	})

	t.Run("user tickets view", func(t *testing.T) {
		res := s.do(t, "POST", "/tickets", token, fiber.Map{"title": "assigned work"})
		require.Equal(t, fiber.StatusCreated, res.StatusCode)
		res = s.do(t, "PUT", "/tickets/1/assign/1", token, nil)
		require.Equal(t, fiber.StatusNoContent, res.StatusCode)

		res = s.do(t, "GET", "/users/1/ticket", token, nil)
		require.Equal(t, fiber.StatusOK, res.StatusCode)

		var tickets []*store.Ticket
		require.NoError(t, json.NewDecoder(res.Body).Decode(&tickets))
		require.Len(t, tickets, 1)
		assert.Equal(t, "assigned work", tickets[0].Title)
	})
}

func TestUnexpectedFaultsAreLogged(t *testing.T) {
	s := newTestServer(t)

	// Break the store so a request fails with an internal error.
	require.NoError(t, s.db.Close())

	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	res := s.do(t, "POST", "/users", "", fiber.Map{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret-password",
	})

	os.Stdout = orig
	require.NoError(t, w.Close())

	captured, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "An unexpected error occurred", decodeError(t, res).Message)

	// The default logger must leave a trace of the real fault.
	assert.Contains(t, string(captured), "unexpected error")
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("health", func(t *testing.T) {
		res := s.do(t, "GET", "/health", "", nil)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("docs", func(t *testing.T) {
		res := s.do(t, "GET", "/docs", "", nil)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	})
}
