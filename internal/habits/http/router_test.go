package http_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/habits/internal/habits/filestore"
	habitshttp "github.com/aussiebroadwan/habits/internal/habits/http"
	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/internal/habits/store/drivers/sqlite"
	"github.com/aussiebroadwan/habits/pkg/cryptox"
	"github.com/aussiebroadwan/habits/pkg/httpx"
	"github.com/aussiebroadwan/habits/pkg/jwtx"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	router   *habitshttp.Router
	sessions *jwtx.SessionIssuer
	files    *filestore.Store
}

type fixtureOption func(*habitshttp.RouterOptions, *habitshttp.Router)

func withRequireAuth() fixtureOption {
	return func(o *habitshttp.RouterOptions, _ *habitshttp.Router) { o.RequireAuth = true }
}

func withAuthLimit(cfg httpx.RateLimitConfig) fixtureOption {
	return func(_ *habitshttp.RouterOptions, r *habitshttp.Router) {
		if r != nil {
			r.RateLimits.Auth = cfg
		}
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	files, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	sessions, err := jwtx.NewSessionIssuer(jwtx.SessionOptions{
		Secret: []byte(strings.Repeat("k", 32)),
		Issuer: "habits-test",
	})
	require.NoError(t, err)

	clock := service.Clock{Now: func() time.Time { return testNow }, Location: time.UTC}

	ro := habitshttp.RouterOptions{
		Verifier:     sessions,
		BuildVersion: "test",
		Store:        st,
		Files:        files,
		Logger:       slogx.Discard(),
	}
	for _, o := range opts {
		o(&ro, nil)
	}

	r := habitshttp.NewRouter(ro)
	r.UserService = &service.UserService{
		Store:    st,
		Hasher:   cryptox.NewPasswordHasher("pepper"),
		Sessions: sessions,
		Clock:    clock,
	}
	r.HabitService = &service.HabitService{Store: st, Clock: clock}
	r.ForumService = &service.ForumService{Store: st, Clock: clock}
	r.UploadService = &service.UploadService{Store: st, Files: files, Clock: clock, MaxBytes: 64}
	r.MaxUploadBytes = 64

	generous := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	r.RateLimits = habitshttp.RateLimits{Auth: generous, Write: generous, Read: generous, Upload: generous}
	for _, o := range opts {
		o(&ro, r)
	}
	r.ApplyRoutes()

	return &fixture{router: r, sessions: sessions, files: files}
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

func (f *fixture) do(t *testing.T, req request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var body io.Reader
	switch b := req.body.(type) {
	case nil:
	case string:
		body = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	r.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (f *fixture) signup(t *testing.T, email string) string {
	t.Helper()
	w, body := f.do(t, request{method: http.MethodPost, path: "/api/signup", body: map[string]string{
		"email": email, "password": "correct horse",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["userId"].(string)
}

func requireFailure(t *testing.T, w *httptest.ResponseRecorder, body map[string]any, code int) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
	require.Equal(t, false, body["success"])
	require.NotEmpty(t, body["message"])
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	userID := f.signup(t, "Alice@Example.com")

	w, body := f.do(t, request{method: http.MethodPost, path: "/api/signup", body: map[string]string{
		"email": "alice@example.com", "password": "another one",
	}})
	requireFailure(t, w, body, http.StatusConflict)

	w, body = f.do(t, request{method: http.MethodPost, path: "/api/login", body: map[string]any{
		"email": "alice@example.com", "password": "wrong",
	}})
	requireFailure(t, w, body, http.StatusUnauthorized)

	w, body = f.do(t, request{method: http.MethodPost, path: "/api/login", body: map[string]any{
		"email": "alice@example.com", "password": "correct horse", "remember": true,
	}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, userID, body["userId"])
	require.Equal(t, true, body["remember"])

	claims, err := f.sessions.Verify(body["token"].(string))
	require.NoError(t, err)
	require.Equal(t, userID, claims.Subject)
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t)

	w, body := f.do(t, request{method: http.MethodPost, path: "/api/signup", body: `{"email":`})
	requireFailure(t, w, body, http.StatusBadRequest)

	w, body = f.do(t, request{method: http.MethodPost, path: "/api/signup", body: map[string]string{
		"email": "not-an-email", "password": "pw",
	}})
	requireFailure(t, w, body, http.StatusBadRequest)

	w, body = f.do(t, request{method: http.MethodPost, path: "/api/signup", body: map[string]string{
		"email": "bob@example.com",
	}})
	requireFailure(t, w, body, http.StatusBadRequest)
}

func TestHabitLifecycle(t *testing.T) {
	f := newFixture(t)
	userID := f.signup(t, "alice@example.com")

	w, body := f.do(t, request{method: http.MethodPost, path: "/api/habits", body: map[string]string{
		"userId": userID, "name": "Read",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	habitID := body["habit"].(map[string]any)["id"].(string)

	for _, day := range []string{"2024-03-13", "2024-03-14", ""} {
		w, body = f.do(t, request{method: http.MethodPost, path: "/api/habits/" + habitID + "/complete", body: map[string]string{
			"userId": userID, "date": day,
		}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	require.Equal(t, "2024-03-15", body["date"])

	w, body = f.do(t, request{method: http.MethodGet, path: "/api/habits?userId=" + userID})
	require.Equal(t, http.StatusOK, w.Code)
	habits := body["habits"].([]any)
	require.Len(t, habits, 1)
	habit := habits[0].(map[string]any)
	require.Equal(t, "Read", habit["name"])
	require.EqualValues(t, 3, habit["streak"])
	require.Equal(t, true, habit["completedToday"])

	w, body = f.do(t, request{method: http.MethodGet,
		path: "/api/habits/completions?userId=" + userID + "&startDate=2024-03-14&endDate=2024-03-31"})
	require.Equal(t, http.StatusOK, w.Code)
	completions := body["completions"].([]any)
	require.Len(t, completions, 2)
	first := completions[0].(map[string]any)
	require.Equal(t, habitID, first["habit_id"])
	require.Equal(t, "2024-03-14", first["completion_date"])

	w, _ = f.do(t, request{method: http.MethodDelete,
		path: "/api/habits/" + habitID + "/complete?userId=" + userID})
	require.Equal(t, http.StatusOK, w.Code)

	_, body = f.do(t, request{method: http.MethodGet, path: "/api/habits?userId=" + userID})
	habit = body["habits"].([]any)[0].(map[string]any)
	require.EqualValues(t, 2, habit["streak"])
	require.Equal(t, false, habit["completedToday"])

	w, _ = f.do(t, request{method: http.MethodDelete, path: "/api/habits/" + habitID + "?userId=" + userID})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = f.do(t, request{method: http.MethodDelete, path: "/api/habits/" + habitID + "?userId=" + userID})
	requireFailure(t, w, body, http.StatusNotFound)
}

func TestHabitRequestValidation(t *testing.T) {
	f := newFixture(t)
	userID := f.signup(t, "alice@example.com")

	w, body := f.do(t, request{method: http.MethodGet, path: "/api/habits"})
	requireFailure(t, w, body, http.StatusBadRequest)

	w, body = f.do(t, request{method: http.MethodGet,
		path: "/api/habits/completions?userId=" + userID + "&startDate=15-03-2024"})
	requireFailure(t, w, body, http.StatusBadRequest)

	w, body = f.do(t, request{method: http.MethodGet,
		path: "/api/habits/completions?userId=" + userID + "&startDate=2024-03-20&endDate=2024-03-01"})
	requireFailure(t, w, body, http.StatusBadRequest)

	w, body = f.do(t, request{method: http.MethodPost, path: "/api/habits/nope/complete", body: map[string]string{
		"userId": userID,
	}})
	requireFailure(t, w, body, http.StatusNotFound)
}

func TestHabitsForeignUserCannotTouch(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice@example.com")
	bob := f.signup(t, "bob@example.com")

	_, body := f.do(t, request{method: http.MethodPost, path: "/api/habits", body: map[string]string{
		"userId": alice, "name": "Run",
	}})
	habitID := body["habit"].(map[string]any)["id"].(string)

	w, body := f.do(t, request{method: http.MethodPost, path: "/api/habits/" + habitID + "/complete", body: map[string]string{
		"userId": bob,
	}})
	requireFailure(t, w, body, http.StatusNotFound)

	w, body = f.do(t, request{method: http.MethodDelete, path: "/api/habits/" + habitID + "?userId=" + bob})
	requireFailure(t, w, body, http.StatusNotFound)
}

func TestSessionTokenIdentity(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice@example.com")
	bob := f.signup(t, "bob@example.com")

	token, _, err := f.sessions.Issue(alice, false)
	require.NoError(t, err)

	// Subject fills in a missing userId.
	w, body := f.do(t, request{method: http.MethodPost, path: "/api/habits", token: token, body: map[string]string{
		"name": "Stretch",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body = f.do(t, request{method: http.MethodGet, path: "/api/habits", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, body["habits"], 1)

	w, body = f.do(t, request{method: http.MethodGet, path: "/api/habits?userId=" + bob, token: token})
	requireFailure(t, w, body, http.StatusForbidden)

	w, body = f.do(t, request{method: http.MethodGet, path: "/api/habits", token: "garbage"})
	requireFailure(t, w, body, http.StatusUnauthorized)
	require.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestRequireAuth(t *testing.T) {
	f := newFixture(t, withRequireAuth())
	alice := f.signup(t, "alice@example.com")

	w, body := f.do(t, request{method: http.MethodGet, path: "/api/habits?userId=" + alice})
	requireFailure(t, w, body, http.StatusUnauthorized)

	token, _, err := f.sessions.Issue(alice, false)
	require.NoError(t, err)
	w, _ = f.do(t, request{method: http.MethodGet, path: "/api/habits", token: token})
	require.Equal(t, http.StatusOK, w.Code)

	// The forum stays open to anonymous visitors.
	w, _ = f.do(t, request{method: http.MethodGet, path: "/api/threads"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestForum(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice@example.com")

	w, body := f.do(t, request{method: http.MethodPost, path: "/api/threads", body: map[string]string{
		"title": "Morning routines", "content": "What works for you?",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	anonID := body["anonId"].(string)
	require.NotEmpty(t, anonID)
	threadID := body["thread"].(map[string]any)["id"].(string)

	w, body = f.do(t, request{method: http.MethodPost, path: "/api/threads/" + threadID + "/posts",
		headers: map[string]string{habitshttp.AnonIDHeader: anonID},
		body:    map[string]string{"content": "Cold showers"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, anonID, body["anonId"])

	w, body = f.do(t, request{method: http.MethodPost, path: "/api/threads/" + threadID + "/posts",
		body: map[string]string{"content": "Journaling", "userId": alice},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Empty(t, body["anonId"])

	w, body = f.do(t, request{method: http.MethodGet, path: "/api/threads/" + threadID + "/posts"})
	require.Equal(t, http.StatusOK, w.Code)
	posts := body["posts"].([]any)
	require.Len(t, posts, 2)
	require.Equal(t, "Cold showers", posts[0].(map[string]any)["content"])
	require.Equal(t, alice, posts[1].(map[string]any)["user_id"])

	w, body = f.do(t, request{method: http.MethodGet, path: "/api/threads"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, body["threads"], 1)

	w, body = f.do(t, request{method: http.MethodGet, path: "/api/threads/missing/posts"})
	requireFailure(t, w, body, http.StatusNotFound)

	w, body = f.do(t, request{method: http.MethodPost, path: "/api/threads", body: map[string]string{"title": "empty"}})
	requireFailure(t, w, body, http.StatusBadRequest)
}

func multipartUpload(t *testing.T, userID, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if userID != "" {
		require.NoError(t, mw.WriteField("userId", userID))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (f *fixture) upload(t *testing.T, userID, filename string, content []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	buf, contentType := multipartUpload(t, userID, filename, content)
	r := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestUpload(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice@example.com")

	content := []byte("week one notes")
	w, body := f.upload(t, alice, "notes.txt", content)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	sum := sha256.Sum256(content)
	require.Equal(t, hex.EncodeToString(sum[:]), body["fileHash"])
	require.FileExists(t, f.files.Path(alice, "notes.txt"))

	w, body = f.do(t, request{method: http.MethodGet, path: "/api/uploads?userId=" + alice})
	require.Equal(t, http.StatusOK, w.Code)
	uploads := body["uploads"].([]any)
	require.Len(t, uploads, 1)
	require.Equal(t, "notes.txt", uploads[0].(map[string]any)["filename"])
}

func TestUploadRejections(t *testing.T) {
	f := newFixture(t)
	alice := f.signup(t, "alice@example.com")

	w, body := f.upload(t, alice, ".env", []byte("SECRET=1"))
	requireFailure(t, w, body, http.StatusBadRequest)

	w, body = f.upload(t, alice, "big.bin", bytes.Repeat([]byte("x"), 100))
	requireFailure(t, w, body, http.StatusRequestEntityTooLarge)

	w, body = f.upload(t, alice, "", nil)
	requireFailure(t, w, body, http.StatusBadRequest)

	w, body = f.upload(t, "", "notes.txt", []byte("hi"))
	requireFailure(t, w, body, http.StatusBadRequest)

	w, body = f.upload(t, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", "notes.txt", []byte("hi"))
	requireFailure(t, w, body, http.StatusNotFound)

	w, body = f.do(t, request{method: http.MethodPost, path: "/api/upload", body: `{"not":"multipart"}`})
	requireFailure(t, w, body, http.StatusBadRequest)
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(t, withAuthLimit(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}))

	creds := map[string]string{"email": "nobody@example.com", "password": "pw"}
	w, _ := f.do(t, request{method: http.MethodPost, path: "/api/login", body: creds})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := f.do(t, request{method: http.MethodPost, path: "/api/login", body: creds})
	requireFailure(t, w, body, http.StatusTooManyRequests)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestHealthProbes(t *testing.T) {
	f := newFixture(t)

	w, body := f.do(t, request{method: http.MethodGet, path: "/livez"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "test", body["version"])

	w, body = f.do(t, request{method: http.MethodGet, path: "/readyz"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", body["checks"].(map[string]any)["database"])
}

func TestReadyzReportsClosedStore(t *testing.T) {
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	h := habitshttp.ReadyzHandler(time.Now(), "test", st, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil).WithContext(context.Background()))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	f := newFixture(t)

	w, _ := f.do(t, request{method: http.MethodGet, path: "/livez", headers: map[string]string{"X-Request-ID": "abc"}})
	require.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}
