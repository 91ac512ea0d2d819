// Copyright (c) AliasEditor Authors.
// Licensed under the MIT License.

/*
Package main 提供别名编辑器插件的演示宿主。

# 概述

cmd/aliashost 以宿主身份驱动 aliasplugin.Plugin：加载插件、为 alias 产物
创建编辑器、通过控制句柄保存或重新加载，并在退出时卸载插件、释放全部实例。

# 主要能力

  - 子命令：open（打开、可选修改并保存）、serve（常驻运行）、version、help
  - serve 暴露 /health、/instances 与 /metrics（Prometheus）
  - 产物监听：watch.enabled 为 true 时轮询 alias.json，外部修改后重新加载未修改的实例
  - 优雅关闭：SIGINT/SIGTERM → 停止监听 → 关闭 HTTP → 卸载插件 → 关闭遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
