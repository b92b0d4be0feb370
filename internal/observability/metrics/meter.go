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

package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric names emitted by the server.
const (
	GateDecisions   = "parentrant.authz.decisions"
	AdminLogins     = "parentrant.admin.logins"
	PostsCreated    = "parentrant.forum.posts_created"
	BannedPostTries = "parentrant.forum.banned_post_attempts"
)

// Config holds metrics configuration
type Config struct {
	Enabled     bool
	ServiceName string
}

// Meter wraps OpenTelemetry meter
type Meter struct {
	meter metric.Meter
}

// New creates a new meter instance
func New(ctx context.Context, cfg Config) (*Meter, error) {
	if !cfg.Enabled {
		return Noop(), nil
	}

	// Get meter from global meter provider; exporters are configured through
	// the standard OTEL_* environment variables.
	return &Meter{meter: otel.Meter(cfg.ServiceName)}, nil
}

// Noop returns a meter whose instruments discard every measurement.
func Noop() *Meter {
	return &Meter{meter: noop.NewMeterProvider().Meter("noop")}
}

// GetMeter returns the underlying meter
func (m *Meter) GetMeter() metric.Meter {
	return m.meter
}

// CreateCounter creates a new counter metric
func (m *Meter) CreateCounter(name, description string) (metric.Int64Counter, error) {
	counter, err := m.meter.Int64Counter(
		name,
		metric.WithDescription(description),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return counter, nil
}

// MustCounter is CreateCounter that falls back to a no-op counter on error.
func (m *Meter) MustCounter(name, description string) metric.Int64Counter {
	counter, err := m.CreateCounter(name, description)
	if err != nil {
		counter, _ = noop.NewMeterProvider().Meter("noop").Int64Counter(name)
	}
	return counter
}

// CreateHistogram creates a new histogram metric
func (m *Meter) CreateHistogram(name, description, unit string) (metric.Float64Histogram, error) {
	histogram, err := m.meter.Float64Histogram(
		name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", name, err)
	}
	return histogram, nil
}
