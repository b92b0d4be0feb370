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

package config

import "strings"

// Environment classifies the runtime environment of the process.
// It is read once at start and constant for the process lifetime.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	Production  Environment = "production"
)

// ParseEnvironment parses an environment name (case-insensitive).
// Unknown or empty values resolve to Production so that a typo never
// unlocks development-only behavior.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return Development
	case "test":
		return Test
	default:
		return Production
	}
}

// IsProduction reports whether the process runs in production.
func (e Environment) IsProduction() bool {
	return e == Production
}

// IsDevelopment reports whether the process runs in local development.
func (e Environment) IsDevelopment() bool {
	return e == Development
}

func (e Environment) String() string {
	return string(e)
}
