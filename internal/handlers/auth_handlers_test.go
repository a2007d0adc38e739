package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOLLEN17/bookshelf/internal/auth"
	"github.com/NOLLEN17/bookshelf/internal/database"
	"github.com/NOLLEN17/bookshelf/internal/models"
)

// testServer holds a running API and its dependencies.
type testServer struct {
	server *httptest.Server
	db     *sql.DB
	tokens *auth.TokenIssuer
}

// setupTestServer starts the full router over a fresh SQLite file.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err, "initialize test database")

	tokens, err := auth.NewTokenIssuer("test-secret", "HS256", auth.DefaultTokenTTL)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ts := &testServer{
		server: httptest.NewServer(NewRouter(db, tokens, logger)),
		db:     db,
		tokens: tokens,
	}
	t.Cleanup(func() {
		ts.server.Close()
		db.Close()
	})
	return ts
}

// do sends a request with an optional JSON body and bearer token and returns
// the status code and raw body.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ts.send(t, req)
}

func (ts *testServer) send(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "%s %s", req.Method, req.URL.Path)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (ts *testServer) login(t *testing.T, username, password string) (int, []byte) {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req, err := http.NewRequest(http.MethodPost, ts.server.URL+"/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.send(t, req)
}

// register creates an account and returns its access token.
func (ts *testServer) register(t *testing.T, username, password string) string {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "register %s: %s", username, body)
	return decodeToken(t, body)
}

func decodeToken(t *testing.T, body []byte) string {
	t.Helper()
	var resp models.TokenResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decodeDetail(t *testing.T, body []byte) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(body, &resp), "body: %s", body)
	return resp.Detail
}

func TestRegisterAndLogin(t *testing.T) {
	ts := setupTestServer(t)

	var tokenA, tokenB string

	t.Run("POST /register valid", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/register", "", map[string]string{
			"username":  "alice",
			"password":  "secret1",
			"email":     "alice@example.com",
			"full_name": "Alice",
		})
		require.Equal(t, http.StatusOK, status, string(body))
		tokenA = decodeToken(t, body)

		user, err := database.GetUserByUsername(ts.db, "alice")
		require.NoError(t, err, "user not found in DB after registration")
		assert.NotEqual(t, "secret1", user.PasswordHash)
		assert.Equal(t, "alice@example.com", *user.Email)
	})

	t.Run("POST /register existing username", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/register", "", map[string]string{
			"username": "alice",
			"password": "another",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Username already exists", decodeDetail(t, body))

		var count int
		require.NoError(t, ts.db.QueryRow("SELECT COUNT(*) FROM users WHERE username = 'alice'").Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("POST /register existing email", func(t *testing.T) {
		status, body := ts.do(t, http.MethodPost, "/register", "", map[string]string{
			"username": "alice2",
			"password": "secret1",
			"email":    "alice@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Email already registered", decodeDetail(t, body))
	})

	t.Run("POST /login valid", func(t *testing.T) {
		status, body := ts.login(t, "alice", "secret1")
		require.Equal(t, http.StatusOK, status, string(body))
		tokenB = decodeToken(t, body)
	})

	t.Run("both tokens work independently", func(t *testing.T) {
		assert.NotEqual(t, tokenA, tokenB)
		for _, token := range []string{tokenA, tokenB} {
			status, body := ts.do(t, http.MethodGet, "/me", token, nil)
			require.Equal(t, http.StatusOK, status, string(body))
			var me models.User
			require.NoError(t, json.Unmarshal(body, &me))
			assert.Equal(t, "alice", me.Username)
		}
	})

	t.Run("POST /login wrong password", func(t *testing.T) {
		status, body := ts.login(t, "alice", "wrong-password")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid username or password", decodeDetail(t, body))
	})

	t.Run("POST /login unknown user", func(t *testing.T) {
		status, body := ts.login(t, "nobody", "secret1")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid username or password", decodeDetail(t, body))
	})

	t.Run("POST /login missing fields", func(t *testing.T) {
		status, _ := ts.login(t, "", "")
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})
}

func TestRegisterValidation(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"short username", map[string]string{"username": "al", "password": "secret1"}},
		{"short password", map[string]string{"username": "alice", "password": "123"}},
		{"bad email", map[string]string{"username": "alice", "password": "secret1", "email": "not-an-email"}},
		{"missing fields", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ts.do(t, http.MethodPost, "/register", "", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, status, string(body))
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.server.URL+"/register", strings.NewReader("{"))
		require.NoError(t, err)
		status, body := ts.send(t, req)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "Invalid JSON body", decodeDetail(t, body))
	})

	var count int
	require.NoError(t, ts.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Zero(t, count, "rejected registrations must not touch storage")
}

func TestLongPasswordLogin(t *testing.T) {
	ts := setupTestServer(t)
	// 50 characters, 98 bytes: past bcrypt's 72-byte window.
	password := strings.Repeat("пароль", 8) + "xx"
	ts.register(t, "longpw", password)

	status, body := ts.login(t, "longpw", password)
	assert.Equal(t, http.StatusOK, status, string(body))
}

func TestAuthMiddleware(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.register(t, "alice", "secret1")

	foreign, err := auth.NewTokenIssuer("other-secret", "HS256", auth.DefaultTokenTTL)
	require.NoError(t, err)
	foreignToken, err := foreign.Issue("alice")
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.server.URL+"/me", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.server.URL+"/me", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Basic "+token)
		status, body := ts.send(t, req)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Not authenticated", decodeDetail(t, body))
	})

	t.Run("lower-case scheme", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.server.URL+"/me", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "bearer "+token)
		status, _ := ts.send(t, req)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("garbage token", func(t *testing.T) {
		status, body := ts.do(t, http.MethodGet, "/me", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token", decodeDetail(t, body))
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		status, body := ts.do(t, http.MethodGet, "/books", foreignToken, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token", decodeDetail(t, body))
	})

	t.Run("user deleted after issuance", func(t *testing.T) {
		ghostToken, err := ts.tokens.Issue("ghost")
		require.NoError(t, err)
		status, body := ts.do(t, http.MethodGet, "/me", ghostToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "User not found", decodeDetail(t, body))
	})

	t.Run("empty subject", func(t *testing.T) {
		emptyToken, err := ts.tokens.Issue("")
		require.NoError(t, err)
		status, body := ts.do(t, http.MethodGet, "/me", emptyToken, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token", decodeDetail(t, body))
	})

	t.Run("every protected route", func(t *testing.T) {
		for _, route := range []struct{ method, path string }{
			{http.MethodGet, "/me"},
			{http.MethodPut, "/me"},
			{http.MethodGet, "/me/profile"},
			{http.MethodPost, "/books"},
			{http.MethodGet, "/books"},
			{http.MethodGet, "/books/1"},
			{http.MethodPut, "/books/1"},
			{http.MethodDelete, "/books/1"},
		} {
			status, _ := ts.do(t, route.method, route.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, status, "%s %s", route.method, route.path)
		}
	})
}

func TestRequestIDHeader(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.server.URL + "/me")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req, err := http.NewRequest(http.MethodGet, ts.server.URL+"/me", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}
