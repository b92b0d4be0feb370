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

// Package session manages the admin bypass session: a cookie issued after a
// successful email + static password login that grants admin access without
// an identity provider session.
//
// The admin password is compared as a plain string against configuration.
// This is a static-password scheme for a small, low-stakes admin surface.
// It is not a hashed credential store and must not be used as one.
package session

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/parentrant/parentrant/internal/identity"
)

const (
	// CookieName is the name of the bypass session cookie.
	CookieName = "admin_bypass_session"

	// grantValue is the only cookie value that grants access.
	grantValue = "true"

	// MaxAge is the lifetime of an issued bypass cookie.
	MaxAge = 7 * 24 * time.Hour
)

// Domain errors
var (
	ErrMissingCredentials = errors.New("请输入账号和密码")
	ErrInvalidCredentials = errors.New("账号或密码错误")
)

// Whitelist reports whether an email belongs to the admin whitelist.
type Whitelist interface {
	Contains(email string) bool
}

// Bypass issues, checks and revokes the bypass session cookie.
type Bypass struct {
	whitelist Whitelist
	password  string
	secure    bool
}

// NewBypass creates a bypass session manager. secure marks issued cookies
// Secure and must be true in production.
func NewBypass(whitelist Whitelist, password string, secure bool) *Bypass {
	return &Bypass{
		whitelist: whitelist,
		password:  password,
		secure:    secure,
	}
}

// HasGrant reports whether creds carry a bypass cookie whose value is
// exactly "true".
func (b *Bypass) HasGrant(creds identity.Credentials) bool {
	value, ok := creds.Cookie(CookieName)
	return ok && value == grantValue
}

// Login verifies email and password and, on success, writes the bypass
// cookie to w. It is the only code path that issues the cookie.
//
// A wrong email and a wrong password yield the same ErrInvalidCredentials.
func (b *Bypass) Login(w http.ResponseWriter, email, password string) error {
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	emailOK := b.whitelist != nil && b.whitelist.Contains(email)
	passwordOK := b.password != "" &&
		subtle.ConstantTimeCompare([]byte(password), []byte(b.password)) == 1
	if !emailOK || !passwordOK {
		return ErrInvalidCredentials
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    grantValue,
		Path:     "/",
		MaxAge:   int(MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout deletes the bypass cookie. It is unconditional and idempotent.
func (b *Bypass) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
