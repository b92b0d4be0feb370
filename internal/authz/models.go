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

// Package authz implements the admin authorization gate: a binary
// GRANTED/DENIED decision over the caller's credentials, recomputed on
// every call.
package authz

import (
	"context"

	"github.com/parentrant/parentrant/internal/identity"
)

// Verdict is the outcome of a single Authorizer.
type Verdict int

const (
	// Indeterminate passes the decision to the next authorizer in the chain.
	Indeterminate Verdict = iota
	Granted
	Denied
)

func (v Verdict) String() string {
	switch v {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "indeterminate"
	}
}

// Authorizer is one link of the gate's chain.
type Authorizer interface {
	// Name identifies the authorizer in logs and metrics.
	Name() string
	// Evaluate returns Granted or Denied to end the chain, or Indeterminate.
	Evaluate(ctx context.Context, creds identity.Credentials) Verdict
}

// Decision is the result of one gate evaluation.
type Decision struct {
	Granted bool
	// Authorizer names the authorizer that ended the chain, or "default"
	// when the chain was exhausted.
	Authorizer string
	// Identity is the identity resolved during evaluation, if any.
	Identity *identity.Identity
}

type identityKey struct{}

// identityRecorder lets the identity authorizer hand the resolved identity
// back to the gate without a second provider call.
type identityRecorder struct {
	identity *identity.Identity
}

func recordIdentity(ctx context.Context, id *identity.Identity) {
	if rec, ok := ctx.Value(identityKey{}).(*identityRecorder); ok {
		rec.identity = id
	}
}
