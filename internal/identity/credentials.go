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
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Credentials is the credential context of one inbound request: its headers
// and cookies. It is a read-only snapshot.
type Credentials struct {
	header  http.Header
	cookies []*http.Cookie
}

// CredentialsFromRequest snapshots the credential context of r.
func CredentialsFromRequest(r *http.Request) Credentials {
	return Credentials{header: r.Header.Clone(), cookies: r.Cookies()}
}

// NewCredentials builds credentials from explicit headers and cookies.
func NewCredentials(header http.Header, cookies ...*http.Cookie) Credentials {
	if header == nil {
		header = http.Header{}
	}
	return Credentials{header: header, cookies: cookies}
}

// Cookie returns the value of the named cookie and whether it was present.
func (c Credentials) Cookie(name string) (string, bool) {
	for _, ck := range c.cookies {
		if ck.Name == name {
			return ck.Value, true
		}
	}
	return "", false
}

// CookieNames lists the names of all cookies sent with the request.
func (c Credentials) CookieNames() []string {
	names := make([]string, 0, len(c.cookies))
	for _, ck := range c.cookies {
		names = append(names, ck.Name)
	}
	return names
}

// Header returns the first value of the named header.
func (c Credentials) Header(key string) string {
	if c.header == nil {
		return ""
	}
	return c.header.Get(key)
}

// HeaderNames lists the canonical names of all request headers.
func (c Credentials) HeaderNames() []string {
	names := make([]string, 0, len(c.header))
	for k := range c.header {
		names = append(names, k)
	}
	return names
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func (c Credentials) BearerToken() string {
	auth := c.Header("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

type credentialsKey struct{}

// WithCredentials returns a copy of ctx carrying creds.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFromContext returns the credentials stored by WithCredentials.
// A context without credentials yields empty credentials.
func CredentialsFromContext(ctx context.Context) Credentials {
	if creds, ok := ctx.Value(credentialsKey{}).(Credentials); ok {
		return creds
	}
	return Credentials{}
}

// DefaultCookieName derives the provider's auth cookie name from the project
// URL: https://abcd.supabase.co -> sb-abcd-auth-token.
func DefaultCookieName(projectURL string) string {
	u, err := url.Parse(projectURL)
	if err != nil || u.Hostname() == "" {
		return "sb-auth-token"
	}
	ref := strings.SplitN(u.Hostname(), ".", 2)[0]
	return "sb-" + ref + "-auth-token"
}

// AccessToken extracts the provider access token from creds. The bearer
// header wins over the auth cookie. The cookie may be split into numbered
// chunks (name.0, name.1, ...) and may hold a "base64-" prefixed JSON session.
func AccessToken(creds Credentials, cookieName string) string {
	if token := creds.BearerToken(); token != "" {
		return token
	}
	if cookieName == "" {
		return ""
	}

	raw, ok := creds.Cookie(cookieName)
	if !ok {
		var b strings.Builder
		for i := 0; ; i++ {
			chunk, ok := creds.Cookie(cookieName + "." + strconv.Itoa(i))
			if !ok {
				break
			}
			b.WriteString(chunk)
		}
		raw = b.String()
	}
	return tokenFromCookieValue(raw)
}

func tokenFromCookieValue(raw string) string {
	if raw == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(raw, "base64-"); ok {
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(rest, "="))
		if err != nil {
			if decoded, err = base64.StdEncoding.DecodeString(rest); err != nil {
				return ""
			}
		}
		raw = string(decoded)
	}
	if strings.HasPrefix(raw, "%") {
		if unescaped, err := url.QueryUnescape(raw); err == nil {
			raw = unescaped
		}
	}

	switch {
	case strings.HasPrefix(raw, "{"):
		var session struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return ""
		}
		return session.AccessToken
	case strings.HasPrefix(raw, "["):
		var parts []*string
		if err := json.Unmarshal([]byte(raw), &parts); err != nil || len(parts) == 0 || parts[0] == nil {
			return ""
		}
		return *parts[0]
	default:
		return raw
	}
}
