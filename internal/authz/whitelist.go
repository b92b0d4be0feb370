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

// Whitelist is the admin whitelist: an immutable set of emails.
//
// Matching is exact. It is case-sensitive and does not trim whitespace,
// so "Admin@x.com" and " admin@x.com" do not match "admin@x.com".
type Whitelist struct {
	emails map[string]struct{}
}

// NewWhitelist builds a whitelist from emails. Empty entries are ignored.
func NewWhitelist(emails []string) *Whitelist {
	w := &Whitelist{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e != "" {
			w.emails[e] = struct{}{}
		}
	}
	return w
}

// Contains reports whether email is whitelisted. It is false for "".
func (w *Whitelist) Contains(email string) bool {
	if w == nil || email == "" {
		return false
	}
	_, ok := w.emails[email]
	return ok
}

// Len returns the number of whitelisted emails.
func (w *Whitelist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.emails)
}
