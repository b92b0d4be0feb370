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

package authz

import (
	"context"

	"github.com/parentrant/parentrant/internal/config"
	"github.com/parentrant/parentrant/internal/identity"
)

// RelaxationPolicy decides whether the gate is relaxed for local
// development. A relaxed gate grants every caller.
//
// The policy holds only when it is enabled, the process runs in the
// development environment and the binary was not built with the
// "norelax" tag. It never holds in production or test.
type RelaxationPolicy struct {
	env     config.Environment
	enabled bool
}

// NewRelaxationPolicy creates the policy for env.
func NewRelaxationPolicy(env config.Environment, enabled bool) RelaxationPolicy {
	return RelaxationPolicy{env: env, enabled: enabled}
}

// Relaxed reports whether the gate is relaxed.
func (p RelaxationPolicy) Relaxed() bool {
	return relaxationCompiled && p.enabled && p.env.IsDevelopment()
}

// RelaxationAuthorizer grants every caller while the policy holds.
type RelaxationAuthorizer struct {
	Policy RelaxationPolicy
}

func (a RelaxationAuthorizer) Name() string { return "relaxation" }

func (a RelaxationAuthorizer) Evaluate(context.Context, identity.Credentials) Verdict {
	if a.Policy.Relaxed() {
		return Granted
	}
	return Indeterminate
}
