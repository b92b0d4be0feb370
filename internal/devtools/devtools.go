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

// Package devtools provides diagnostics for local development. Every
// operation is refused unless the process runs in the development
// environment. It is independent of the admin gate.
package devtools

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/parentrant/parentrant/internal/config"
	"github.com/parentrant/parentrant/internal/identity"
	"github.com/parentrant/parentrant/internal/store/postgres"
)

// BanBypassCookie skips the IP ban check on new posts in development.
const BanBypassCookie = "x-dev-bypass"

// MsgRestricted is returned by every operation outside development.
const MsgRestricted = "Production environment restricted"

// RequiredEnv lists the environment variables checked by Health.
var RequiredEnv = []string{"SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_SERVICE_ROLE_KEY"}

// Result is the outcome of a dev operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Pinger checks the database.
type Pinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// TableStats counts table rows.
type TableStats interface {
	TableCounts(ctx context.Context) ([]postgres.TableCount, error)
}

// Bucket checks the image bucket.
type Bucket interface {
	Ping(ctx context.Context) error
	Bucket() string
}

// Service provides the development tools
type Service struct {
	env           config.Environment
	app           *config.AppConfig
	appConfigPath string
	db            Pinger
	stats         TableStats
	bucket        Bucket
	started       time.Time
	lookupEnv     func(string) (string, bool)
}

// Options holds the collaborators of a Service.
type Options struct {
	Environment   config.Environment
	AppConfig     *config.AppConfig
	AppConfigPath string
	DB            Pinger
	Stats         TableStats
	Bucket        Bucket
}

// NewService creates a new dev tools service
func NewService(opts Options) *Service {
	app := opts.AppConfig
	if app == nil {
		app = config.EmptyAppConfig()
	}
	return &Service{
		env:           opts.Environment,
		app:           app,
		appConfigPath: opts.AppConfigPath,
		db:            opts.DB,
		stats:         opts.Stats,
		bucket:        opts.Bucket,
		started:       time.Now(),
		lookupEnv:     os.LookupEnv,
	}
}

// Enabled reports whether dev tools are available.
func (s *Service) Enabled() bool {
	return s.env.IsDevelopment()
}

func restricted() Result {
	return Result{Message: MsgRestricted}
}

// HasBanBypass reports whether creds skip the IP ban check.
func (s *Service) HasBanBypass(creds identity.Credentials) bool {
	if !s.Enabled() {
		return false
	}
	v, ok := creds.Cookie(BanBypassCookie)
	return ok && v == "true"
}

// SetBanBypass sets or clears the ban bypass cookie.
func (s *Service) SetBanBypass(w http.ResponseWriter, enabled bool) Result {
	if !s.Enabled() {
		return restricted()
	}
	c := &http.Cookie{Name: BanBypassCookie, Path: "/", HttpOnly: true}
	if enabled {
		c.Value = "true"
	} else {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
	return Result{Success: true}
}

// RequestInfo describes the calling request.
type RequestInfo struct {
	Credentials identity.Credentials
	ClientIP    string
	UserAgent   string
}

// Info is the server diagnostics snapshot.
type Info struct {
	ServerTime  time.Time `json:"serverTime"`
	Environment string    `json:"env"`
	GoVersion   string    `json:"goVersion"`
	Platform    string    `json:"platform"`
	Arch        string    `json:"arch"`
	CPUs        int       `json:"cpus"`
	Goroutines  int       `json:"goroutines"`
	Memory      Memory    `json:"memory"`
	Uptime      string    `json:"uptime"`
	BypassMode  bool      `json:"bypassMode"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
	DBStatus    string    `json:"dbStatus"`
	DBLatency   string    `json:"dbLatency"`
	Cookies     []string  `json:"cookies"`
	Headers     []string  `json:"headers"`
}

// Memory summarises the Go heap.
type Memory struct {
	HeapAlloc string `json:"heapAlloc"`
	Sys       string `json:"sys"`
	NumGC     uint32 `json:"numGC"`
}

// Info returns server diagnostics.
func (s *Service) Info(ctx context.Context, req RequestInfo) Result {
	if !s.Enabled() {
		return restricted()
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	info := Info{
		ServerTime:  time.Now().UTC(),
		Environment: s.env.String(),
		GoVersion:   runtime.Version(),
		Platform:    runtime.GOOS,
		Arch:        runtime.GOARCH,
		CPUs:        runtime.NumCPU(),
		Goroutines:  runtime.NumGoroutine(),
		Memory: Memory{
			HeapAlloc: megabytes(mem.HeapAlloc),
			Sys:       megabytes(mem.Sys),
			NumGC:     mem.NumGC,
		},
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		BypassMode: s.HasBanBypass(req.Credentials),
		ClientIP:   orUnknown(req.ClientIP),
		UserAgent:  req.UserAgent,
		Cookies:    req.Credentials.CookieNames(),
		Headers:    safeHeaderNames(req.Credentials.HeaderNames()),
		DBStatus:   "Not configured",
	}

	if s.db != nil {
		latency, err := s.db.Ping(ctx)
		if err != nil {
			info.DBStatus = "Error: " + err.Error()
		} else {
			info.DBStatus = "Connected"
			info.DBLatency = latency.Round(time.Millisecond).String()
		}
	}

	return Result{Success: true, Data: info}
}

// Check is one health check outcome.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health checks the database, the image bucket, the config file and the
// required environment variables.
func (s *Service) Health(ctx context.Context) Result {
	if !s.Enabled() {
		return restricted()
	}

	var checks []Check

	switch {
	case s.db == nil:
		checks = append(checks, Check{Name: "数据库连接", Status: "error", Message: "未配置"})
	default:
		if _, err := s.db.Ping(ctx); err != nil {
			checks = append(checks, Check{Name: "数据库连接", Status: "error", Message: err.Error()})
		} else {
			checks = append(checks, Check{Name: "数据库连接", Status: "ok", Message: "连接正常"})
		}
	}

	if s.bucket == nil {
		checks = append(checks, Check{Name: "存储桶", Status: "warning", Message: "未配置"})
	} else {
		name := "存储桶 (" + s.bucket.Bucket() + ")"
		if err := s.bucket.Ping(ctx); err != nil {
			checks = append(checks, Check{Name: name, Status: "warning", Message: err.Error()})
		} else {
			checks = append(checks, Check{Name: name, Status: "ok", Message: "桶还在"})
		}
	}

	if _, err := os.Stat(s.appConfigPath); err != nil {
		checks = append(checks, Check{Name: "配置文件", Status: "error", Message: "配置文件丢了！"})
	} else {
		checks = append(checks, Check{Name: "配置文件", Status: "ok", Message: s.appConfigPath + " 存在"})
	}

	var missing []string
	for _, key := range RequiredEnv {
		if v, ok := s.lookupEnv(key); !ok || v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		checks = append(checks, Check{Name: "环境变量", Status: "ok", Message: "全都在"})
	} else {
		checks = append(checks, Check{Name: "环境变量", Status: "error", Message: "少了: " + strings.Join(missing, ", ")})
	}

	return Result{Success: true, Data: checks}
}

// TableStats returns row counts of the main tables.
func (s *Service) TableStats(ctx context.Context) Result {
	if !s.Enabled() {
		return restricted()
	}
	if s.stats == nil {
		return Result{Message: "数据库未配置"}
	}
	counts, err := s.stats.TableCounts(ctx)
	if err != nil {
		return Result{Message: err.Error()}
	}
	return Result{Success: true, Data: counts}
}

func megabytes(b uint64) string {
	return strconv.FormatUint(b/1024/1024, 10) + "MB"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// safeHeaderNames drops header names that may carry credentials.
func safeHeaderNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		lower := strings.ToLower(n)
		if strings.Contains(lower, "auth") || strings.Contains(lower, "cookie") || strings.Contains(lower, "apikey") {
			continue
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
