// Copyright 2026 The ParentRant Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GoTrueClient resolves identities through the provider's "get current user"
// endpoint (GET /auth/v1/user).
type GoTrueClient struct {
	baseURL    string
	anonKey    string
	cookieName string
	httpClient *http.Client
}

// GoTrueOption configures a GoTrueClient.
type GoTrueOption func(*GoTrueClient)

// WithCookieName overrides the auth cookie name derived from the project URL.
func WithCookieName(name string) GoTrueOption {
	return func(c *GoTrueClient) {
		if name != "" {
			c.cookieName = name
		}
	}
}

// WithHTTPClient sets the HTTP client used to reach the provider.
func WithHTTPClient(hc *http.Client) GoTrueOption {
	return func(c *GoTrueClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewGoTrueClient creates a client for the provider at baseURL.
func NewGoTrueClient(baseURL, anonKey string, opts ...GoTrueOption) *GoTrueClient {
	c := &GoTrueClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		cookieName: DefaultCookieName(baseURL),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CookieName returns the auth cookie name the client reads.
func (c *GoTrueClient) CookieName() string {
	return c.cookieName
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Resolve implements Resolver.
func (c *GoTrueClient) Resolve(ctx context.Context, creds Credentials) (*Identity, error) {
	token := AccessToken(creds, c.cookieName)
	if token == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		// expired or revoked session
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", ErrProviderUnavailable, err)
	}
	if user.ID == "" {
		return nil, nil
	}

	return &Identity{ID: user.ID, Email: user.Email}, nil
}
