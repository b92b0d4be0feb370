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

// Package identity resolves the caller's identity from the managed identity
// provider. An absent identity is a normal outcome, not an error.
package identity

import (
	"context"
	"errors"
)

// ErrProviderUnavailable is returned when the identity provider could not
// answer (transport failure, unexpected status, malformed response).
var ErrProviderUnavailable = errors.New("identity provider unavailable")

// Identity is the principal returned by the identity provider for one request.
// It is resolved fresh per request and never cached.
type Identity struct {
	ID    string
	Email string
}

// Resolver resolves the identity carried by a request's credentials.
//
// Resolve returns (nil, nil) when the caller is anonymous, including when
// credentials are missing, malformed or rejected by the provider. A non-nil
// error means the provider itself failed.
type Resolver interface {
	Resolve(ctx context.Context, creds Credentials) (*Identity, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, creds Credentials) (*Identity, error)

func (f ResolverFunc) Resolve(ctx context.Context, creds Credentials) (*Identity, error) {
	return f(ctx, creds)
}

// Anonymous is a Resolver that never finds an identity.
var Anonymous Resolver = ResolverFunc(func(context.Context, Credentials) (*Identity, error) {
	return nil, nil
})
