package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/getlocalbuddy/backend/internal/auth"
	"github.com/getlocalbuddy/backend/internal/cache"
	"github.com/getlocalbuddy/backend/internal/config"
	"github.com/getlocalbuddy/backend/internal/domain/post"
	"github.com/getlocalbuddy/backend/internal/domain/user"
	apphttp "github.com/getlocalbuddy/backend/internal/http"
	"github.com/getlocalbuddy/backend/internal/repo/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		AllowedOrigins:      []string{"http://localhost:5173"},
		AvatarTemplate:      "https://i.pravatar.cc/150?u={id}",
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		RateLimitPerMinute:  0,
	}
}

type testApp struct {
	router *gin.Engine
	store  *memory.Store
}

func setupRouter(t *testing.T, cfg config.Config) testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore(cfg.AvatarTemplate)
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))

	r := apphttp.NewRouter(log, cfg, apphttp.Dependencies{
		Users:  store,
		Posts:  store.Posts(),
		Ready:  store,
		Cache:  cache.New(time.Minute),
		Tokens: auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute),
	})

	return testApp{router: r, store: store}
}

func (a testApp) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a testApp) register(t *testing.T, email, password string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/register", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		UserID string `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.UserID)

	return resp.UserID
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Error
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	app := setupRouter(t, testConfig())

	app.register(t, "ana@example.com", "pw-one")

	w := app.do(t, http.MethodPost, "/api/register", map[string]string{"email": "ANA@example.com", "password": "pw-two"}, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already exists.", errorOf(t, w))
}

func TestRegister_MissingPasswordCreatesNothing(t *testing.T) {
	app := setupRouter(t, testConfig())

	w := app.do(t, http.MethodPost, "/api/register", map[string]string{"email": "ana@example.com"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPost, "/api/login", map[string]string{"email": "ana@example.com", "password": "anything"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found.", errorOf(t, w))
}

func TestRegister_RequiresJSONContentType(t *testing.T) {
	app := setupRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	req.Header.Set("Content-Type", "text/plain")

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestLogin_ReturnsProfileAndUsableToken(t *testing.T) {
	app := setupRouter(t, testConfig())
	id := app.register(t, "ana@example.com", "correct-horse")

	w := app.do(t, http.MethodPost, "/api/login", map[string]string{"email": "ana@example.com", "password": "correct-horse"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "$2a$")

	var resp struct {
		Message     string       `json:"message"`
		User        user.Profile `json:"user"`
		AccessToken string       `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful.", resp.Message)
	assert.Equal(t, id, resp.User.ID)
	assert.Equal(t, "ana", resp.User.Name)
	assert.Equal(t, "https://i.pravatar.cc/150?u="+id, resp.User.Avatar)

	me := app.do(t, http.MethodGet, "/api/me", nil, map[string]string{"Authorization": "Bearer " + resp.AccessToken})
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())

	var profile user.Profile
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &profile))
	assert.Equal(t, id, profile.ID)

	anon := app.do(t, http.MethodGet, "/api/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, anon.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	app := setupRouter(t, testConfig())
	app.register(t, "ana@example.com", "correct-horse")

	w := app.do(t, http.MethodPost, "/api/login", map[string]string{"email": "ana@example.com", "password": "battery-staple"}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid password.", errorOf(t, w))
}

func TestLogin_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerMinute = 2
	app := setupRouter(t, cfg)

	body := map[string]string{"email": "nobody@example.com", "password": "x"}

	for i := 0; i < 2; i++ {
		w := app.do(t, http.MethodPost, "/api/login", body, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	w := app.do(t, http.MethodPost, "/api/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestPosts_CreateRequiresAuthor(t *testing.T) {
	app := setupRouter(t, testConfig())

	w := app.do(t, http.MethodPost, "/api/posts", map[string]string{"content": "hello"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: authorId.", errorOf(t, w))
}

func TestPosts_UnknownAuthor(t *testing.T) {
	app := setupRouter(t, testConfig())

	w := app.do(t, http.MethodPost, "/api/posts", map[string]string{
		"content":  "hello",
		"authorId": "0b5c3f0e-7c1a-4a57-9d55-6a3f3c2b1a00",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unknown author.", errorOf(t, w))
}

func TestPosts_ListedNewestFirstWithAuthor(t *testing.T) {
	app := setupRouter(t, testConfig())
	authorID := app.register(t, "ana@example.com", "pw")

	empty := app.do(t, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())

	for _, content := range []string{"first", "second", "third"} {
		w := app.do(t, http.MethodPost, "/api/posts", map[string]string{"content": content, "authorId": authorID}, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := app.do(t, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []post.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 3)

	assert.Equal(t, "third", posts[0].Content)
	assert.Equal(t, "second", posts[1].Content)
	assert.Equal(t, "first", posts[2].Content)

	for _, p := range posts {
		assert.Equal(t, authorID, p.Author.ID)
		assert.Equal(t, "ana", p.Author.Name)
		assert.Equal(t, "https://i.pravatar.cc/150?u="+authorID, p.Author.Avatar)
		assert.Equal(t, 0, p.Likes)
	}
}

func TestProfileUpdate_ReflectedInListing(t *testing.T) {
	app := setupRouter(t, testConfig())
	authorID := app.register(t, "ana@example.com", "pw")

	w := app.do(t, http.MethodPost, "/api/posts", map[string]string{"content": "hi", "authorId": authorID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// warm the listing cache
	w = app.do(t, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPut, "/api/users/"+authorID, map[string]string{"name": "Ana Lima", "city": "Porto"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var profile user.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Ana Lima", profile.Name)
	assert.Equal(t, "Porto", profile.City)

	w = app.do(t, http.MethodGet, "/api/posts", nil, nil)
	var posts []post.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, "Ana Lima", posts[0].Author.Name)

	w = app.do(t, http.MethodGet, "/api/users/"+authorID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/users/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth_StatusSurvivesLostDatabase(t *testing.T) {
	app := setupRouter(t, testConfig())
	app.store.Disconnect()

	w := app.do(t, http.MethodGet, "/api/status", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"getlocalbuddy-backend"}`, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = app.do(t, http.MethodGet, "/api/posts", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), memory.ErrUnavailable.Error())
}

func TestCORS_ThroughRouter(t *testing.T) {
	app := setupRouter(t, testConfig())

	w := app.do(t, http.MethodGet, "/api/posts", nil, map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Origin not allowed.", errorOf(t, w))
	assert.Contains(t, w.Body.String(), `"requestId":"`+w.Header().Get("X-Request-Id")+`"`)

	w = app.do(t, http.MethodGet, "/api/posts", nil, map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = app.do(t, http.MethodOptions, "/api/register", nil, map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	app := setupRouter(t, testConfig())

	w := app.do(t, http.MethodGet, "/api/nope", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found.", errorOf(t, w))
}
