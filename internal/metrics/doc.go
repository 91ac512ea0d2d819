// 版权所有 2024 AliasEditor Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的编辑器实例生命周期指标采集能力。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto
自动注册机制，避免手动管理 Registry。所有指标按 namespace 隔离。

# 核心类型

  - Collector：指标收集器，持有实例数量 Gauge、创建/释放 Counter
    与 save/reload 耗时 Histogram。nil *Collector 的所有方法均为空操作。

# 主要能力

  - 实例指标：存活实例数、创建总数（按 editor_id）、释放总数（按 reason）。
  - 失败指标：创建失败总数，按错误码分组。
  - 操作指标：save / reload 调用总数与耗时，按 operation/status 分组。
  - 卸载指标：每次卸载释放的实例数分布。
*/
package metrics
