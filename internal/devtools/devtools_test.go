package devtools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parentrant/parentrant/internal/config"
	"github.com/parentrant/parentrant/internal/identity"
	"github.com/parentrant/parentrant/internal/store/postgres"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) (time.Duration, error) { return 3 * time.Millisecond, f.err }

func (f fakeDB) TableCounts(context.Context) ([]postgres.TableCount, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []postgres.TableCount{{Name: "posts", Count: 7}}, nil
}

type fakeBucket struct{ err error }

func (f fakeBucket) Ping(context.Context) error { return f.err }
func (f fakeBucket) Bucket() string             { return "post-images" }

func newService(t *testing.T, env config.Environment) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parent-rant.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"site":{"name":"ParentRant"},"security":{"adminEmails":["a@x.com"],"adminPassword":"hunter2"}}`), 0o600))
	app, err := config.LoadAppConfig(path)
	require.NoError(t, err)

	s := NewService(Options{
		Environment:   env,
		AppConfig:     app,
		AppConfigPath: path,
		DB:            fakeDB{},
		Stats:         fakeDB{},
		Bucket:        fakeBucket{},
	})
	s.lookupEnv = func(key string) (string, bool) {
		if key == "SUPABASE_SERVICE_ROLE_KEY" {
			return "", false
		}
		return "set", true
	}
	return s
}

// TestPurpose: Validates that dev tools are unavailable outside development.
// Scope: Unit Test
// Security: Debug functionality exposed in production (CWE-489)
// Expected: Every operation returns a restricted result in production and test; no cookie is written.
// Test Case ID: DEV-01
func TestDevtools_RestrictedOutsideDevelopment(t *testing.T) {
	for _, env := range []config.Environment{config.Production, config.Test} {
		s := newService(t, env)
		ctx := context.Background()
		rec := httptest.NewRecorder()

		results := []Result{
			s.SetBanBypass(rec, true),
			s.Info(ctx, RequestInfo{}),
			s.Health(ctx),
			s.TableStats(ctx),
		}
		for _, r := range results {
			assert.False(t, r.Success)
			assert.Equal(t, MsgRestricted, r.Message)
		}
		assert.Equal(t, MsgCLIRestricted, s.Run(ctx, "help", RequestInfo{}).Message)
		assert.Empty(t, rec.Result().Cookies())

		creds := identity.NewCredentials(nil, &http.Cookie{Name: BanBypassCookie, Value: "true"})
		assert.False(t, s.HasBanBypass(creds))
	}
}

func TestDevtools_BanBypassCookie(t *testing.T) {
	s := newService(t, config.Development)

	rec := httptest.NewRecorder()
	require.True(t, s.SetBanBypass(rec, true).Success)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, BanBypassCookie, cookies[0].Name)
	assert.Equal(t, "true", cookies[0].Value)
	assert.True(t, s.HasBanBypass(identity.NewCredentials(nil, cookies[0])))

	rec = httptest.NewRecorder()
	require.True(t, s.SetBanBypass(rec, false).Success)
	assert.Less(t, rec.Result().Cookies()[0].MaxAge, 0)
}

func TestDevtools_InfoHidesSensitiveHeaders(t *testing.T) {
	s := newService(t, config.Development)
	header := http.Header{}
	header.Set("Authorization", "Bearer x")
	header.Set("Cookie", "a=b")
	header.Set("Apikey", "k")
	header.Set("User-Agent", "test")
	header.Set("Accept", "*/*")

	r := s.Info(context.Background(), RequestInfo{
		Credentials: identity.NewCredentials(header, &http.Cookie{Name: "sb-x-auth-token", Value: "secret"}),
		UserAgent:   "test",
	})

	require.True(t, r.Success)
	info := r.Data.(Info)
	assert.Equal(t, []string{"Accept", "User-Agent"}, info.Headers)
	assert.Equal(t, []string{"sb-x-auth-token"}, info.Cookies)
	assert.Equal(t, "unknown", info.ClientIP)
	assert.Equal(t, "Connected", info.DBStatus)
	assert.Equal(t, "development", info.Environment)
}

func TestDevtools_Health(t *testing.T) {
	s := newService(t, config.Development)
	s.bucket = fakeBucket{err: errors.New("Bucket not found")}

	r := s.Health(context.Background())
	require.True(t, r.Success)
	checks := r.Data.([]Check)
	require.Len(t, checks, 4)

	assert.Equal(t, "ok", checks[0].Status)
	assert.Equal(t, "warning", checks[1].Status)
	assert.Equal(t, "ok", checks[2].Status)
	assert.Equal(t, "error", checks[3].Status)
	assert.Contains(t, checks[3].Message, "SUPABASE_SERVICE_ROLE_KEY")
}

func TestDevtools_Run(t *testing.T) {
	s := newService(t, config.Development)
	ctx := context.Background()

	assert.True(t, s.Run(ctx, "help", RequestInfo{}).Success)
	assert.True(t, s.Run(ctx, "clean", RequestInfo{}).Success)
	assert.True(t, s.Run(ctx, "  HEALTH ", RequestInfo{}).Success)
	assert.True(t, s.Run(ctx, "info", RequestInfo{}).Success)

	r := s.Run(ctx, "db stats", RequestInfo{})
	require.True(t, r.Success)
	assert.Equal(t, []postgres.TableCount{{Name: "posts", Count: 7}}, r.Data)

	r = s.Run(ctx, "config get site.name", RequestInfo{})
	require.True(t, r.Success)
	assert.Equal(t, "ParentRant", r.Data)

	for _, cmd := range []string{"", "db", "config", "config get", "config set a b", "sjs 1+1", "backup"} {
		assert.False(t, s.Run(ctx, cmd, RequestInfo{}).Success, cmd)
	}
}

// TestPurpose: Validates that the dev console never reveals the admin password.
// Scope: Unit Test
// Security: Sensitive information exposure (CWE-200)
// Expected: "config list" and "config get security.adminPassword" return "[REDACTED]".
// Test Case ID: DEV-02
func TestDevtools_ConfigRedactsPassword(t *testing.T) {
	s := newService(t, config.Development)
	ctx := context.Background()

	r := s.Run(ctx, "config list", RequestInfo{})
	require.True(t, r.Success)
	sec := r.Data.(map[string]any)["security"].(map[string]any)
	assert.Equal(t, "[REDACTED]", sec["adminPassword"])

	r = s.Run(ctx, "config get security.adminPassword", RequestInfo{})
	require.True(t, r.Success)
	assert.Equal(t, "[REDACTED]", r.Data)
}
