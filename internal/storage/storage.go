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

// Package storage is a client for the managed object storage bucket that
// holds post images.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ListLimit is the maximum number of files returned by List.
const ListLimit = 100

var (
	ErrNotConfigured = errors.New("storage is not configured")
	ErrInvalidName   = errors.New("invalid file name")
)

// StatusError is returned when the storage service rejects a request.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storage: %s (status %d)", e.Message, e.StatusCode)
}

// File is an object in the bucket.
type File struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	PublicURL string         `json:"publicUrl"`
}

// Client talks to the storage REST API of one bucket.
type Client struct {
	baseURL    string
	key        string
	bucket     string
	httpClient *http.Client
}

// NewClient creates a storage client. key is the service role key.
func NewClient(baseURL, key, bucket string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		bucket:     bucket,
		httpClient: httpClient,
	}
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	SortBy struct {
		Column string `json:"column"`
		Order  string `json:"order"`
	} `json:"sortBy"`
}

// List returns up to ListLimit files of the bucket root, newest first, with
// their public URLs.
func (c *Client) List(ctx context.Context) ([]File, error) {
	body := listRequest{Limit: ListLimit}
	body.SortBy.Column = "created_at"
	body.SortBy.Order = "desc"

	var files []File
	if err := c.do(ctx, http.MethodPost, "/storage/v1/object/list/"+url.PathEscape(c.bucket), body, &files); err != nil {
		return nil, err
	}
	for i := range files {
		files[i].PublicURL = c.PublicURL(files[i].Name)
	}
	return files, nil
}

// Delete removes a file from the bucket root.
func (c *Client) Delete(ctx context.Context, name string) error {
	if name == "" || strings.Contains(name, "..") {
		return ErrInvalidName
	}
	body := map[string][]string{"prefixes": {name}}
	return c.do(ctx, http.MethodDelete, "/storage/v1/object/"+url.PathEscape(c.bucket), body, nil)
}

// PublicURL returns the public URL of a file.
func (c *Client) PublicURL(name string) string {
	return c.baseURL + "/storage/v1/object/public/" + url.PathEscape(c.bucket) + "/" + url.PathEscape(name)
}

// Ping checks that the bucket exists and is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/storage/v1/bucket/"+url.PathEscape(c.bucket), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.baseURL == "" || c.key == "" {
		return ErrNotConfigured
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode storage request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build storage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("apikey", c.key)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read storage response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode storage response: %w", err)
		}
	}
	return nil
}

func errorMessage(body []byte, fallback string) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return fallback
}
