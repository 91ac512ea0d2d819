// Package telemetry 封装宿主进程的 OpenTelemetry SDK 初始化，
// 为别名编辑器插件提供 TracerProvider 和 MeterProvider。
// 遥测禁用时使用 noop 实现，不连接任何外部服务。
package telemetry
