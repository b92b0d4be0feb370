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
	"log/slog"

	"github.com/parentrant/parentrant/internal/identity"
	"github.com/parentrant/parentrant/internal/observability/logger"
)

// GrantChecker reports whether credentials carry a bypass grant.
type GrantChecker interface {
	HasGrant(creds identity.Credentials) bool
}

// BypassAuthorizer grants callers holding a bypass session.
type BypassAuthorizer struct {
	Checker GrantChecker
}

func (a BypassAuthorizer) Name() string { return "bypass" }

func (a BypassAuthorizer) Evaluate(_ context.Context, creds identity.Credentials) Verdict {
	if a.Checker != nil && a.Checker.HasGrant(creds) {
		return Granted
	}
	return Indeterminate
}

// IdentityAuthorizer resolves the caller's identity and grants whitelisted
// emails. It always ends the chain: anonymous callers, non-whitelisted
// emails and identity provider failures are Denied.
type IdentityAuthorizer struct {
	Resolver  identity.Resolver
	Whitelist *Whitelist
	Logger    *slog.Logger
}

func (a IdentityAuthorizer) Name() string { return "identity" }

func (a IdentityAuthorizer) Evaluate(ctx context.Context, creds identity.Credentials) Verdict {
	log := a.Logger
	if log == nil {
		log = slog.Default()
	}
	if a.Resolver == nil {
		return Denied
	}

	id, err := a.Resolver.Resolve(ctx, creds)
	if err != nil {
		log.WarnContext(ctx, "identity resolution failed, denying",
			logger.Component("authz"),
			logger.Error(err),
		)
		return Denied
	}
	if id == nil {
		return Denied
	}
	recordIdentity(ctx, id)

	if a.Whitelist.Contains(id.Email) {
		return Granted
	}

	log.InfoContext(ctx, "identity not in admin whitelist",
		logger.Component("authz"),
		logger.UserID(id.ID),
		logger.Email(id.Email),
	)
	return Denied
}
