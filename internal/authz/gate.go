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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/parentrant/parentrant/internal/identity"
	"github.com/parentrant/parentrant/internal/observability/logger"
	"github.com/parentrant/parentrant/internal/observability/metrics"
)

// Gate evaluates an ordered chain of authorizers. The first Granted or
// Denied verdict wins; an exhausted chain is DENIED.
//
// A Gate holds no per-request state and is safe for concurrent use.
type Gate struct {
	chain     []Authorizer
	logger    *slog.Logger
	tracer    trace.Tracer
	decisions metric.Int64Counter
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMeter records decisions on a counter created from m.
func WithMeter(m *metrics.Meter) Option {
	return func(g *Gate) {
		if m != nil {
			g.decisions = m.MustCounter(metrics.GateDecisions, "Admin gate decisions by outcome")
		}
	}
}

// WithTracer sets the tracer used for gate spans.
func WithTracer(t trace.Tracer) Option {
	return func(g *Gate) {
		if t != nil {
			g.tracer = t
		}
	}
}

// NewGate creates a gate over chain, evaluated in order.
func NewGate(chain []Authorizer, opts ...Option) *Gate {
	g := &Gate{
		chain:     chain,
		logger:    slog.Default(),
		tracer:    otel.Tracer("github.com/parentrant/parentrant/internal/authz"),
		decisions: metrics.Noop().MustCounter(metrics.GateDecisions, ""),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewAdminGate creates the admin gate: relaxation first, then the bypass
// session, then identity + whitelist.
func NewAdminGate(
	policy RelaxationPolicy,
	bypass GrantChecker,
	resolver identity.Resolver,
	whitelist *Whitelist,
	opts ...Option,
) *Gate {
	g := NewGate(nil, opts...)
	g.chain = []Authorizer{
		RelaxationAuthorizer{Policy: policy},
		BypassAuthorizer{Checker: bypass},
		IdentityAuthorizer{Resolver: resolver, Whitelist: whitelist, Logger: g.logger},
	}
	return g
}

// Evaluate runs the chain over creds. It never returns an error and never
// caches: every call re-reads the credentials.
func (g *Gate) Evaluate(ctx context.Context, creds identity.Credentials) Decision {
	ctx, span := g.tracer.Start(ctx, "authz.Gate.Evaluate")
	defer span.End()

	rec := &identityRecorder{}
	ctx = context.WithValue(ctx, identityKey{}, rec)

	decision := Decision{Authorizer: "default"}
	for _, a := range g.chain {
		v := a.Evaluate(ctx, creds)
		if v == Indeterminate {
			continue
		}
		decision.Granted = v == Granted
		decision.Authorizer = a.Name()
		break
	}
	decision.Identity = rec.identity

	span.SetAttributes(
		attribute.Bool("authz.granted", decision.Granted),
		attribute.String("authz.authorizer", decision.Authorizer),
	)
	g.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", logger.DecisionValue(decision.Granted)),
		attribute.String("authorizer", decision.Authorizer),
	))
	g.logger.DebugContext(ctx, "admin gate evaluated",
		logger.Decision(decision.Granted),
		logger.Authorizer(decision.Authorizer),
	)

	return decision
}

// Allow evaluates the credentials stored in ctx by identity.WithCredentials.
func (g *Gate) Allow(ctx context.Context) bool {
	return g.Evaluate(ctx, identity.CredentialsFromContext(ctx)).Granted
}
