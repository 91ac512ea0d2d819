// Package config 提供别名编辑器插件及演示宿主的配置管理功能。
//
// 支持从默认值、YAML 文件和环境变量分层加载配置，
// 并在加载结束时运行校验器。
package config
