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

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims are the claims the provider puts into access tokens.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenVerifier resolves identities by verifying the provider's access token
// locally with the project JWT secret, without a network round trip.
type TokenVerifier struct {
	secret     []byte
	cookieName string
	audience   string
}

// NewTokenVerifier creates a verifier for HS256 tokens signed with secret.
func NewTokenVerifier(secret, cookieName string) *TokenVerifier {
	return &TokenVerifier{
		secret:     []byte(secret),
		cookieName: cookieName,
		audience:   "authenticated",
	}
}

// Resolve implements Resolver. Any invalid, expired or foreign token is
// treated as anonymous.
func (v *TokenVerifier) Resolve(_ context.Context, creds Credentials) (*Identity, error) {
	raw := AccessToken(creds, v.cookieName)
	if raw == "" || len(v.secret) == 0 {
		return nil, nil
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || claims.Subject == "" {
		return nil, nil
	}

	return &Identity{ID: claims.Subject, Email: claims.Email}, nil
}
