package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dfryer1193/sitepress/auth"
	"github.com/dfryer1193/sitepress/blog/application"
	"github.com/dfryer1193/sitepress/blog/domain"
	"github.com/dfryer1193/sitepress/blog/persistence"
	"github.com/dfryer1193/sitepress/internal/config"
	"github.com/dfryer1193/sitepress/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIdentityProvider struct {
	login string
}

func (f *fakeIdentityProvider) AuthCodeURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (f *fakeIdentityProvider) Identify(ctx context.Context, code string) (*auth.Profile, error) {
	return &auth.Profile{Login: f.login, Name: "Someone"}, nil
}

// spyStore records whether any storage method ran
type spyStore struct {
	calls int
}

func (s *spyStore) List(ctx context.Context) ([]domain.PostMeta, error) {
	s.calls++
	return nil, nil
}

func (s *spyStore) Get(ctx context.Context, slug string) (*domain.Post, error) {
	s.calls++
	return &domain.Post{Slug: slug}, nil
}

func (s *spyStore) Create(ctx context.Context, in domain.PostInput) (string, error) {
	s.calls++
	return domain.Slugify(in.Title), nil
}

func (s *spyStore) Update(ctx context.Context, slug string, in domain.PostInput) error {
	s.calls++
	return nil
}

func (s *spyStore) Delete(ctx context.Context, slug string) error {
	s.calls++
	return nil
}

func (s *spyStore) Name() string {
	return "spy"
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			LocalPassword:     "abc123",
			SessionSecret:     "test-session-secret",
			AdminUsername:     "octocat",
			ProbeURL:          "http://127.0.0.1:1",
			AdminRedirectPath: "/admin",
			LoginPath:         "/login",
		},
	}
}

func setupRouter(t *testing.T, cfg *config.Config, store domain.PostStore, identity auth.IdentityProvider) *gin.Engine {
	t.Helper()
	if store == nil {
		store = persistence.NewLocalPostStore(t.TempDir(), "Francisco Beron")
	}

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))

	service := application.NewPostService(store, application.NewMarkdownRenderer(""))
	NewApi(router, service, auth.NewGate(cfg.Auth, identity), cfg)
	return router
}

func doRequest(router *gin.Engine, method string, path string, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func login(t *testing.T, router *gin.Engine) *http.Cookie {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/auth/local", `{"password":"abc123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookie := findCookie(w, middleware.SessionCookie)
	require.NotNil(t, cookie)
	return cookie
}

const postBody = `{"title":"Hello, World!","excerpt":"First","category":"tech","content":"# Hi\n\nBody"}`

func TestLocalLoginAuthorizesUpdate(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, nil)
	cookie := login(t, router)

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(auth.SessionTTL.Seconds()), cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.False(t, cookie.Secure)

	w := doRequest(router, http.MethodPost, "/posts", postBody, cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"slug":"hello-world"}`, w.Body.String())

	w = doRequest(router, http.MethodPut, "/posts/hello-world",
		`{"title":"Hello again","excerpt":"Second","category":"tech","content":"Updated"}`, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/posts/hello-world", "")
	require.Equal(t, http.StatusOK, w.Code)

	var post domain.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, "Hello again", post.Title)
	assert.Equal(t, "Updated", post.Content)
	assert.Equal(t, "Francisco Beron", post.Author)
}

func TestLocalLogin(t *testing.T) {
	tests := []struct {
		name     string
		password string
		body     string
		status   int
		expected string
	}{
		{
			name:     "Wrong password",
			password: "abc123",
			body:     `{"password":"nope"}`,
			status:   http.StatusUnauthorized,
			expected: `{"error":"Invalid password"}`,
		},
		{
			name:     "Not configured",
			password: "",
			body:     `{"password":"abc123"}`,
			status:   http.StatusInternalServerError,
			expected: `{"error":"Local auth not configured"}`,
		},
		{
			name:     "Not configured with malformed body",
			password: "",
			body:     `not json`,
			status:   http.StatusInternalServerError,
			expected: `{"error":"Local auth not configured"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Auth.LocalPassword = tt.password
			router := setupRouter(t, cfg, nil, nil)

			w := doRequest(router, http.MethodPost, "/auth/local", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.expected, w.Body.String())
			assert.Nil(t, findCookie(w, middleware.SessionCookie))
		})
	}
}

func TestProductionCookieIsSecure(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	router := setupRouter(t, cfg, nil, nil)

	cookie := login(t, router)
	assert.True(t, cookie.Secure)
}

func TestMutationsRequireSession(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/posts", postBody},
		{http.MethodPut, "/posts/hello-world", postBody},
		{http.MethodDelete, "/posts/hello-world", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			store := &spyStore{}
			router := setupRouter(t, testConfig(), store, nil)

			w := doRequest(router, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

			w = doRequest(router, tt.method, tt.path, tt.body, &http.Cookie{Name: middleware.SessionCookie, Value: "forged"})
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			assert.Zero(t, store.calls, "store must not be reached without a session")
		})
	}
}

func TestBearerTokenAuthorizes(t *testing.T) {
	store := &spyStore{}
	router := setupRouter(t, testConfig(), store, nil)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/posts/hello-world", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.calls)
}

func TestPostErrors(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, nil)
	cookie := login(t, router)

	w := doRequest(router, http.MethodPost, "/posts", postBody, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"Get missing", http.MethodGet, "/posts/missing", "", http.StatusNotFound},
		{"Render missing", http.MethodGet, "/posts/missing/html", "", http.StatusNotFound},
		{"Create missing field", http.MethodPost, "/posts", `{"title":"T","excerpt":"E","category":"C"}`, http.StatusBadRequest},
		{"Create malformed body", http.MethodPost, "/posts", `{`, http.StatusBadRequest},
		{"Create duplicate", http.MethodPost, "/posts", postBody, http.StatusConflict},
		{"Update missing", http.MethodPut, "/posts/missing", postBody, http.StatusNotFound},
		{"Update missing field", http.MethodPut, "/posts/hello-world", `{"title":"T"}`, http.StatusBadRequest},
		{"Delete missing", http.MethodDelete, "/posts/missing", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.method, tt.path, tt.body, cookie)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestMissingFieldMessage(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, nil)
	cookie := login(t, router)

	w := doRequest(router, http.MethodPost, "/posts", `{"title":"T","excerpt":"E","category":"C"}`, cookie)
	assert.JSONEq(t, `{"error":"content is required"}`, w.Body.String())
}

func TestListAndDelete(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, nil)
	cookie := login(t, router)

	for _, body := range []string{
		`{"title":"Older","excerpt":"E","category":"tech","content":"C","date":"2023-12-31"}`,
		`{"title":"Newest","excerpt":"E","category":"tech","content":"C","date":"2024-06-15"}`,
		`{"title":"Middle","excerpt":"E","category":"tech","content":"C","date":"2024-01-01"}`,
	} {
		w := doRequest(router, http.MethodPost, "/posts", body, cookie)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doRequest(router, http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, w.Code)

	var posts []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 3)
	assert.Equal(t, "newest", posts[0]["slug"])
	assert.Equal(t, "middle", posts[1]["slug"])
	assert.Equal(t, "older", posts[2]["slug"])
	assert.NotContains(t, posts[0], "content")

	w = doRequest(router, http.MethodDelete, "/posts/middle", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/posts/middle", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Post not found"}`, w.Body.String())
}

func TestGetPostHTML(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, nil)
	cookie := login(t, router)

	w := doRequest(router, http.MethodPost, "/posts", postBody, cookie)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodGet, "/posts/hello-world/html", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Hello, World!", body["title"])
	assert.Contains(t, body["contentHtml"], `<h1 id="hi">Hi</h1>`)
}

func TestProbe(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.Auth.ProbeURL = upstream.URL
	router := setupRouter(t, cfg, nil, nil)

	w := doRequest(router, http.MethodGet, "/auth/probe", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"online":true,"method":"github"}`, w.Body.String())

	upstream.Close()
	w = doRequest(router, http.MethodGet, "/auth/probe", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"online":false,"method":"local"}`, w.Body.String())
}

func TestGithubLoginNotConfigured(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, nil)

	w := doRequest(router, http.MethodGet, "/auth/github/login", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"github login not configured"}`, w.Body.String())
}

func githubCallback(t *testing.T, router *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	w := doRequest(router, http.MethodGet, "/auth/github/login", "")
	require.Equal(t, http.StatusFound, w.Code)

	state := findCookie(w, "oauth-state")
	require.NotNil(t, state)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state.Value, location.Query().Get("state"))

	return doRequest(router, http.MethodGet, "/auth/github/callback?code=abc&state="+state.Value, "", state)
}

func TestGithubLoginAdmin(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, &fakeIdentityProvider{login: "octocat"})

	w := githubCallback(t, router)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	cookie := findCookie(w, middleware.SessionCookie)
	require.NotNil(t, cookie)

	w = doRequest(router, http.MethodGet, "/auth/session", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	var session auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "octocat", session.Subject)
	assert.Equal(t, "Someone", session.Name)
}

func TestGithubLoginNotAdmin(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, &fakeIdentityProvider{login: "mallory"})

	w := githubCallback(t, router)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?error=AccessDenied", w.Header().Get("Location"))
	assert.Nil(t, findCookie(w, middleware.SessionCookie))
}

func TestGithubCallbackStateMismatch(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, &fakeIdentityProvider{login: "octocat"})

	w := doRequest(router, http.MethodGet, "/auth/github/callback?code=abc&state=forged", "",
		&http.Cookie{Name: "oauth-state", Value: "expected"})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?error=OAuthCallback", w.Header().Get("Location"))
	assert.Nil(t, findCookie(w, middleware.SessionCookie))
}

func TestSessionAndLogout(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, nil)

	w := doRequest(router, http.MethodGet, "/auth/session", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	cookie := login(t, router)
	w = doRequest(router, http.MethodGet, "/auth/session", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sub":"local-admin"`)

	w = doRequest(router, http.MethodPost, "/auth/logout", "", cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	cleared := findCookie(w, middleware.SessionCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestHealth(t *testing.T) {
	router := setupRouter(t, testConfig(), nil, nil)

	w := doRequest(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","backend":"local"}`, w.Body.String())
}
