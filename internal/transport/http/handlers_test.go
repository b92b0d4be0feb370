package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parentrant/parentrant/internal/admin"
	"github.com/parentrant/parentrant/internal/authz"
	"github.com/parentrant/parentrant/internal/config"
	"github.com/parentrant/parentrant/internal/devtools"
	"github.com/parentrant/parentrant/internal/forum"
	"github.com/parentrant/parentrant/internal/identity"
	"github.com/parentrant/parentrant/internal/session"
)

const (
	adminEmail    = "admin@parentrant.test"
	adminPassword = "correct horse"
)

type fakePosts struct {
	mu      sync.Mutex
	posts   map[string]*forum.Post
	deleted []string
}

func (f *fakePosts) Create(_ context.Context, p *forum.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.posts[p.ID] = &cp
	return nil
}

func (f *fakePosts) GetByID(_ context.Context, id string) (*forum.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, forum.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) List(context.Context, forum.ListFilter) ([]*forum.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*forum.Post, 0, len(f.posts))
	for _, p := range f.posts {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePosts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return forum.ErrPostNotFound
	}
	delete(f.posts, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePosts) IncrementLikes(_ context.Context, id string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return 0, forum.ErrPostNotFound
	}
	p.Likes++
	return p.Likes, nil
}

type fakeComments struct{}

func (fakeComments) Create(context.Context, *forum.Comment) error { return nil }

func (fakeComments) ListByPost(context.Context, string) ([]*forum.Comment, error) {
	return []*forum.Comment{}, nil
}

type fakeBans struct {
	banned map[string]bool
}

func (f fakeBans) IsBanned(_ context.Context, ip string) (bool, error) { return f.banned[ip], nil }
func (f fakeBans) Ban(context.Context, *forum.BannedIP) error           { return nil }
func (f fakeBans) Unban(context.Context, string) error                  { return nil }
func (f fakeBans) List(context.Context) ([]*forum.BannedIP, error)      { return nil, nil }

type testServer struct {
	router http.Handler
	posts  *fakePosts
}

func newTestServer(t *testing.T, env config.Environment, bannedIPs ...string) *testServer {
	t.Helper()

	posts := &fakePosts{posts: map[string]*forum.Post{}}
	bans := fakeBans{banned: map[string]bool{}}
	for _, ip := range bannedIPs {
		bans.banned[ip] = true
	}
	repos := forum.Repositories{Posts: posts, Comments: fakeComments{}, Bans: bans}

	whitelist := authz.NewWhitelist([]string{adminEmail})
	bypass := session.NewBypass(whitelist, adminPassword, env.IsProduction())
	gate := authz.NewAdminGate(authz.NewRelaxationPolicy(env, false), bypass, identity.Anonymous, whitelist)

	h := NewHandler(Deps{
		Forum: forum.NewService(repos, nil, nil),
		Admin: admin.NewService(admin.Options{
			Gate:        gate,
			Bypass:      bypass,
			Repos:       repos,
			Environment: env,
		}),
		Dev:  devtools.NewService(devtools.Options{Environment: env}),
		Gate: gate,
		AdminFS: fstest.MapFS{
			"index.html":    {Data: []byte("<html>dashboard</html>")},
			"assets/app.js": {Data: []byte("console.log('admin')")},
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testServer{
		router: NewRouter(h, NewRateLimiter(ctx, 1000, 1000), RouterConfig{}),
		posts:  posts,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedPost(t *testing.T) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, s.posts.Create(context.Background(), &forum.Post{ID: id, Content: "hello"}))
	return id
}

func (s *testServer) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func bypassCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) admin.Result {
	t.Helper()
	var res admin.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

// TestPurpose: Validates that privileged admin endpoints refuse callers without credentials.
// Scope: HTTP Handler
// Security: Unauthenticated callers must get the generic Unauthorized result with no side effects
// Expected: 401 with {success:false, message:"Unauthorized"}; the post still exists.
// Test Case ID: HTTP-01
func TestAdminDeletePost_Unauthorized(t *testing.T) {
	s := newTestServer(t, config.Production)
	id := s.seedPost(t)

	rec := s.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/posts/"+id, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	res := decodeResult(t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, admin.MsgUnauthorized, res.Message)
	assert.Empty(t, s.posts.deleted)
}

// TestPurpose: Validates the production login, privileged call, logout round trip.
// Scope: HTTP Handler
// Security: Only a whitelisted email with the configured password obtains the bypass cookie
// Expected: Login sets a 7-day httpOnly cookie, the cookie unlocks deletion, logout clears it.
// Test Case ID: HTTP-02
func TestAdminLogin_BypassRoundTrip(t *testing.T) {
	s := newTestServer(t, config.Production)
	id := s.seedPost(t)

	rec := s.login(t, adminEmail, adminPassword)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResult(t, rec).Success)

	cookie := bypassCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "true", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, 604800, cookie.MaxAge)
	assert.Equal(t, "/", cookie.Path)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/posts/"+id, nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	rec = s.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{id}, s.posts.deleted)

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	cleared := bypassCookie(t, rec)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	// Without the cookie the next call is denied again.
	id = s.seedPost(t)
	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/posts/"+id, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestPurpose: Validates that bad login attempts share one message and never set a cookie.
// Scope: HTTP Handler
// Security: Prevents admin email enumeration through distinct errors
// Expected: Wrong email and wrong password return the same message; no Set-Cookie.
// Test Case ID: HTTP-03
func TestAdminLogin_GenericFailure(t *testing.T) {
	s := newTestServer(t, config.Production)

	badEmail := s.login(t, "nobody@parentrant.test", adminPassword)
	badPassword := s.login(t, adminEmail, "wrong")

	for _, rec := range []*httptest.ResponseRecorder{badEmail, badPassword} {
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, bypassCookie(t, rec))
	}
	assert.Equal(t, decodeResult(t, badEmail).Message, decodeResult(t, badPassword).Message)
	assert.Equal(t, session.ErrInvalidCredentials.Error(), decodeResult(t, badEmail).Message)
}

func TestAdminLogin_MalformedBody(t *testing.T) {
	s := newTestServer(t, config.Production)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, bypassCookie(t, rec))
}

// TestPurpose: Validates the admin page guards.
// Scope: HTTP Handler
// Security: The dashboard is only served to callers who pass the gate
// Expected: Denied callers are redirected to /admin/login; granted callers are sent from the login page to /admin.
// Test Case ID: HTTP-04
func TestAdminPages_Guard(t *testing.T) {
	s := newTestServer(t, config.Production)
	grant := &http.Cookie{Name: session.CookieName, Value: "true"}

	t.Run("dashboard denied", func(t *testing.T) {
		for _, path := range []string{"/admin", "/admin/reports"} {
			rec := s.do(httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusFound, rec.Code, path)
			assert.Equal(t, "/admin/login", rec.Header().Get("Location"), path)
		}
	})

	t.Run("login page for anonymous", func(t *testing.T) {
		rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "dashboard")
	})

	t.Run("login page for granted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
		req.AddCookie(grant)
		rec := s.do(req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin", rec.Header().Get("Location"))
	})

	t.Run("dashboard granted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/reports", nil)
		req.AddCookie(grant)
		rec := s.do(req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "dashboard")
	})

	t.Run("wrong cookie value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "TRUE"})
		rec := s.do(req)
		assert.Equal(t, http.StatusFound, rec.Code)
	})

	t.Run("assets are public", func(t *testing.T) {
		rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/assets/app.js", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "console.log")
	})
}

func TestAdminSession(t *testing.T) {
	s := newTestServer(t, config.Production)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/admin/session", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"granted":false}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/session", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "true"})
	rec = s.do(req)
	assert.JSONEq(t, `{"granted":true}`, rec.Body.String())
}

// TestPurpose: Validates that a banned address cannot post.
// Scope: HTTP Handler
// Security: The ban list is keyed by the first X-Forwarded-For entry
// Expected: 403 with the banned message; no post is stored.
// Test Case ID: HTTP-05
func TestCreatePost_BannedAddress(t *testing.T) {
	s := newTestServer(t, config.Production, "203.0.113.9")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"content":"hi"}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := s.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), forum.BannedMessage)
	assert.Empty(t, s.posts.posts)
}

func TestCreatePost(t *testing.T) {
	s := newTestServer(t, config.Production)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"content":"今天作业好多"}`))
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	rec := s.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var post forum.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, forum.DefaultPostNickname, post.Nickname)
	assert.Equal(t, forum.CategoryOther, post.Category)
	assert.Empty(t, post.IPAddress, "the author address is never echoed")

	stored, err := s.posts.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.7", stored.IPAddress)
}

func TestCreatePost_Validation(t *testing.T) {
	s := newTestServer(t, config.Production)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"content":"<b></b>"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.posts.posts)
}

func TestGetPost_NotFound(t *testing.T) {
	s := newTestServer(t, config.Production)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+id, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
	}
}

func TestLikePost(t *testing.T) {
	s := newTestServer(t, config.Production)
	id := s.seedPost(t)

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/v1/posts/"+id+"/like", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"likes":1}`, rec.Body.String())
}

func TestListPosts_InvalidLimit(t *testing.T) {
	s := newTestServer(t, config.Production)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/v1/posts?limit=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestPurpose: Validates that development tools are closed outside development.
// Scope: HTTP Handler
// Security: Diagnostics and the ban bypass must not be reachable in production
// Expected: 403 with a restricted result and no cookie.
// Test Case ID: HTTP-06
func TestDevRoutes_RestrictedInProduction(t *testing.T) {
	s := newTestServer(t, config.Production)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/v1/dev/bypass", `{"enabled":true}`},
		{http.MethodGet, "/api/v1/dev/info", ""},
		{http.MethodGet, "/api/v1/dev/health", ""},
		{http.MethodGet, "/api/v1/dev/tables", ""},
		{http.MethodPost, "/api/v1/dev/cli", `{"command":"help"}`},
	} {
		rec := s.do(httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
		assert.Equal(t, http.StatusForbidden, rec.Code, tc.path)
		assert.Empty(t, rec.Result().Cookies(), tc.path)
	}
}

func TestDevBypass_SkipsBanCheckInDevelopment(t *testing.T) {
	s := newTestServer(t, config.Development, "203.0.113.9")

	rec := s.do(httptest.NewRequest(http.MethodPost, "/api/v1/dev/bypass", strings.NewReader(`{"enabled":true}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", strings.NewReader(`{"content":"hi"}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.AddCookie(&http.Cookie{Name: devtools.BanBypassCookie, Value: "true"})
	rec = s.do(req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, config.Production)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestGetIPAddress(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"first forwarded entry", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "9.9.9.9:1", "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3"}, "9.9.9.9:1", "3.3.3.3"},
		{"remote addr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote addr without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getIPAddress(r))
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimitMiddleware(NewRateLimiter(ctx, 0.001, 1))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
