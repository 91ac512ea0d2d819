// Copyright 2026 AliasEditor Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供插件测试的共享工具和辅助函数。

# 概述

testutil 包为 registry、aliasplugin、editor/alias 等包的单元测试
提供统一的辅助能力，避免各包重复实现相似的测试基础设施。

# 核心能力

  - 上下文辅助: TestContext / CancelledContext，自动注册 Cleanup 防止泄漏
  - 异步断言: AssertEventuallyTrue，支持超时轮询等待条件满足
  - 编辑器替身: FakeEditor 记录 Save / Reload / Close 调用并支持错误注入
  - 文件夹型资源: WriteAliasDir / ReadAliasFile 构造 .alias 目录
  - 渲染上下文: FakeRenderContext 是不透明的宿主能力对象

# 使用示例

	ctx := testutil.TestContext(t)
	dir := testutil.WriteAliasDir(t, t.TempDir(), "MyAlias", "MyAlias", "i32")
	ed := testutil.NewFakeEditor("MyAlias")
*/
package testutil
