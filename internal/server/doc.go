// 版权所有 2026 AliasEditor Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 为演示宿主提供 HTTP 服务器生命周期管理与状态端点。

# 核心类型

  - Manager：封装 net/http.Server，提供非阻塞 Start、带超时的
    Shutdown 以及异步错误通道 Errors()。
  - NewHandler：注册 /health、/instances 与 /metrics 路由，
    状态数据来自 StatusSource（通常是 *aliasplugin.Plugin）。

# 主要能力

  - 非阻塞启动：Start 在后台 goroutine 中运行服务。
  - 优雅关闭：Shutdown 在 ServerConfig.ShutdownTimeout 内排空请求。
  - 健康检查：插件未处于 loaded 状态时 /health 返回 503。
*/
package server
