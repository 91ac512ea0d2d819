// Package tlsutil 提供集中式 TLS 配置，
// 供演示宿主的状态服务器与健康检查客户端使用（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
