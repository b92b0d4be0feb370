//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseURL = getEnv("PARENTRANT_API_URL", "http://127.0.0.1:8080")
	apiBase = baseURL + "/api/v1"
)

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

type TestClient struct {
	httpClient *http.Client
}

func NewTestClient() *TestClient {
	jar, _ := cookiejar.New(nil)
	return &TestClient{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *TestClient) Do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

type result struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response) result {
	t.Helper()
	defer resp.Body.Close()
	var r result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	return r
}

// TestE2E_AdminBypassSession runs against a server started with APP_ENV=production
// and a config file whitelisting PARENTRANT_ADMIN_EMAIL.
func TestE2E_AdminBypassSession(t *testing.T) {
	email := os.Getenv("PARENTRANT_ADMIN_EMAIL")
	password := os.Getenv("PARENTRANT_ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("PARENTRANT_ADMIN_EMAIL and PARENTRANT_ADMIN_PASSWORD are required")
	}

	client := NewTestClient()

	t.Run("anonymous caller is denied", func(t *testing.T) {
		resp, err := client.Do(http.MethodGet, apiBase+"/admin/banned-ips", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Unauthorized", decode(t, resp).Message)

		resp, err = client.Do(http.MethodGet, baseURL+"/admin", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		resp, err := client.Do(http.MethodPost, apiBase+"/admin/login", map[string]string{
			"email":    email,
			"password": password + "x",
		})
		require.NoError(t, err)
		assert.False(t, decode(t, resp).Success)
	})

	t.Run("login grants access", func(t *testing.T) {
		resp, err := client.Do(http.MethodPost, apiBase+"/admin/login", map[string]string{
			"email":    email,
			"password": password,
		})
		require.NoError(t, err)
		require.True(t, decode(t, resp).Success)

		resp, err = client.Do(http.MethodGet, apiBase+"/admin/banned-ips", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decode(t, resp).Success)

		resp, err = client.Do(http.MethodGet, baseURL+"/admin/login", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/admin", resp.Header.Get("Location"))
	})

	t.Run("logout revokes access", func(t *testing.T) {
		resp, err := client.Do(http.MethodPost, apiBase+"/admin/logout", nil)
		require.NoError(t, err)
		assert.True(t, decode(t, resp).Success)

		resp, err = client.Do(http.MethodGet, apiBase+"/admin/banned-ips", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestE2E_ForumPost(t *testing.T) {
	client := NewTestClient()

	resp, err := client.Do(http.MethodPost, apiBase+"/posts", map[string]string{
		"content":  "e2e: 今天的作业又是十页",
		"category": "homework",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	resp.Body.Close()
	require.NotEmpty(t, post.ID)

	resp, err = client.Do(http.MethodPost, apiBase+"/posts/"+post.ID+"/like", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Do(http.MethodGet, apiBase+"/posts/"+post.ID, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
