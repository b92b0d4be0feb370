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

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrAdminExists and ErrAdminNotFound are returned by the whitelist editors.
var (
	ErrAdminExists   = errors.New("email is already an admin")
	ErrAdminNotFound = errors.New("email is not in the admin list")
)

// AppConfig is the application configuration file (parent-rant.config.json).
// The server reads it once at start; edits made afterwards are not picked up
// until restart.
type AppConfig struct {
	Site     SiteConfig     `json:"site"`
	Security SecurityConfig `json:"security"`

	raw map[string]any
}

// SiteConfig holds presentation settings of the site.
type SiteConfig struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SecurityConfig holds the admin whitelist and the static admin password.
//
// AdminPassword is compared in plaintext. It protects a small, low-stakes
// admin surface and must not be treated as a secret-critical credential.
type SecurityConfig struct {
	AdminEmails   []string `json:"adminEmails"`
	AdminPassword string   `json:"adminPassword"`
}

// EmptyAppConfig is used when the configuration file cannot be read.
// Its whitelist is empty and its admin password is empty.
func EmptyAppConfig() *AppConfig {
	return &AppConfig{raw: map[string]any{}}
}

// LoadAppConfig reads and parses the application configuration file.
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read app config: %w", err)
	}
	return ParseAppConfig(data)
}

// ParseAppConfig parses the application configuration from JSON.
func ParseAppConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg.raw); err != nil {
		return nil, fmt.Errorf("failed to parse app config: %w", err)
	}
	return &cfg, nil
}

// AdminEmails returns a copy of the configured whitelist.
func (c *AppConfig) AdminEmails() []string {
	out := make([]string, len(c.Security.AdminEmails))
	copy(out, c.Security.AdminEmails)
	return out
}

// Lookup resolves a dotted key path (e.g. "site.name") against the raw file.
// The admin password is never returned.
func (c *AppConfig) Lookup(keyPath string) (any, bool) {
	var val any = c.Redacted()
	for _, key := range strings.Split(keyPath, ".") {
		m, ok := val.(map[string]any)
		if !ok {
			return nil, false
		}
		if val, ok = m[key]; !ok {
			return nil, false
		}
	}
	return val, true
}

// Redacted returns the raw configuration with the admin password masked.
func (c *AppConfig) Redacted() map[string]any {
	out := cloneMap(c.raw)
	if sec, ok := out["security"].(map[string]any); ok {
		if _, ok := sec["adminPassword"]; ok {
			sec["adminPassword"] = "[REDACTED]"
		}
	}
	return out
}

// AddAdmin appends email to the whitelist stored at path.
func AddAdmin(path, email string) error {
	return updateAdminEmails(path, func(emails []string) ([]string, error) {
		for _, e := range emails {
			if e == email {
				return nil, ErrAdminExists
			}
		}
		return append(emails, email), nil
	})
}

// RemoveAdmin removes email from the whitelist stored at path.
func RemoveAdmin(path, email string) error {
	return updateAdminEmails(path, func(emails []string) ([]string, error) {
		out := make([]string, 0, len(emails))
		for _, e := range emails {
			if e != email {
				out = append(out, e)
			}
		}
		if len(out) == len(emails) {
			return nil, ErrAdminNotFound
		}
		return out, nil
	})
}

// updateAdminEmails rewrites security.adminEmails, keeping every other key.
func updateAdminEmails(path string, fn func([]string) ([]string, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read app config: %w", err)
	}
	cfg, err := ParseAppConfig(data)
	if err != nil {
		return err
	}

	emails, err := fn(cfg.AdminEmails())
	if err != nil {
		return err
	}

	raw := cfg.raw
	if raw == nil {
		raw = map[string]any{}
	}
	sec, ok := raw["security"].(map[string]any)
	if !ok {
		sec = map[string]any{}
		raw["security"] = sec
	}
	sec["adminEmails"] = emails

	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode app config: %w", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write app config: %w", err)
	}
	return nil
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if m, ok := v.(map[string]any); ok {
			out[k] = cloneMap(m)
			continue
		}
		out[k] = v
	}
	return out
}
