package habits_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/habits/internal/habits/app"
)

/*
 * End-to-end helpers: the real application, configured from the
 * environment, behind a loopback HTTP server.
 */

const testPassword = "Habit123!"

type client struct {
	t       *testing.T
	baseURL string
	http    *http.Client
	token   string
}

// startServer boots the application with relaxed rate limits unless the
// caller already exported RATELIMIT_* overrides.
func startServer(t *testing.T, env map[string]string) *client {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	defaults := map[string]string{
		"ENV":                       "test",
		"LOG_LEVEL":                 "error",
		"DATABASE_DRIVER":           "sqlite",
		"DATABASE_URL":              filepath.Join(dir, "habits.db"),
		"UPLOAD_DIR":                filepath.Join(dir, "uploads"),
		"PEPPER_FILE":               filepath.Join(dir, "pepper"),
		"UPLOAD_MAX_BYTES":          "1024",
		"RATELIMIT_AUTH_REQUESTS":   "1000",
		"RATELIMIT_AUTH_BURST":      "1000",
		"RATELIMIT_WRITE_REQUESTS":  "1000",
		"RATELIMIT_WRITE_BURST":     "1000",
		"RATELIMIT_READ_REQUESTS":   "1000",
		"RATELIMIT_READ_BURST":      "1000",
		"RATELIMIT_UPLOAD_REQUESTS": "1000",
		"RATELIMIT_UPLOAD_BURST":    "1000",
	}
	for k, v := range defaults {
		if _, ok := env[k]; !ok {
			t.Setenv(k, v)
		}
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	application, err := app.New(app.LoadConfig())
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Shutdown()
	})

	return &client{t: t, baseURL: srv.URL, http: srv.Client()}
}

func (c *client) send(method, path, contentType string, body io.Reader) (int, map[string]any) {
	c.t.Helper()

	req, err := http.NewRequest(method, c.baseURL+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (c *client) json(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	if body == nil {
		return c.send(method, path, "", nil)
	}
	raw, err := json.Marshal(body)
	require.NoError(c.t, err)
	return c.send(method, path, "application/json", bytes.NewReader(raw))
}

func (c *client) upload(userID, filename string, content []byte) (int, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if userID != "" {
		require.NoError(c.t, mw.WriteField("userId", userID))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(c.t, err)
	_, err = part.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	return c.send(http.MethodPost, "/api/upload", mw.FormDataContentType(), &buf)
}

// signupAndLogin registers email and stores the session token on c.
func (c *client) signupAndLogin(email string) string {
	c.t.Helper()

	code, body := c.json(http.MethodPost, "/api/signup", map[string]string{"email": email, "password": testPassword})
	require.Equal(c.t, http.StatusCreated, code, body)

	code, body = c.json(http.MethodPost, "/api/login", map[string]any{"email": email, "password": testPassword})
	require.Equal(c.t, http.StatusOK, code, body)
	c.token = body["token"].(string)
	return body["userId"].(string)
}
