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

package devtools

import (
	"context"
	"strings"
)

// MsgCLIRestricted is returned by Run outside development.
const MsgCLIRestricted = "生产环境禁行，别瞎搞"

var commandHelp = map[string]string{
	"help":             "显示这个帮手",
	"config list":      "列出所有配置 (密码已隐藏)",
	"config get <key>": "获取指定配置值 (支持 a.b.c 格式)",
	"db stats":         "数据库表统计",
	"health":           "全系统体检",
	"info":             "服务器运行信息",
	"clean":            "清理缓存",
}

// Run parses and executes one dev console command.
func (s *Service) Run(ctx context.Context, command string, req RequestInfo) Result {
	if !s.Enabled() {
		return Result{Message: MsgCLIRestricted}
	}

	args := strings.Fields(command)
	if len(args) == 0 {
		return Result{Message: "口令呢？输入 help 看看？"}
	}

	switch cmd := strings.ToLower(args[0]); cmd {
	case "help":
		return Result{Success: true, Message: "可用指令列表", Data: commandHelp}

	case "config":
		return s.runConfig(args[1:])

	case "db":
		if len(args) > 1 && args[1] == "stats" {
			return s.TableStats(ctx)
		}
		return Result{Message: "db 后面跟啥？(stats)"}

	case "health":
		return s.Health(ctx)

	case "info":
		return s.Info(ctx, req)

	case "clean":
		return Result{Success: true, Message: "已经打扫得一尘不染了"}

	default:
		return Result{Message: "不认识这个口令: " + cmd + "。输入 help 看看？"}
	}
}

func (s *Service) runConfig(args []string) Result {
	if len(args) == 0 {
		return Result{Message: "config 后面跟啥？(list/get)"}
	}
	switch strings.ToLower(args[0]) {
	case "list":
		return Result{Success: true, Data: s.app.Redacted()}
	case "get":
		if len(args) < 2 {
			return Result{Message: "key 呢？"}
		}
		val, ok := s.app.Lookup(args[1])
		if !ok {
			return Result{Message: "没有这个配置: " + args[1]}
		}
		return Result{Success: true, Data: val}
	default:
		return Result{Message: "config 后面跟啥？(list/get)"}
	}
}
