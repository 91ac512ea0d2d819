// Copyright (c) AliasEditor Authors.
// Licensed under the MIT License.

/*
Package types 提供编辑器插件与宿主之间共享的类型契约。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 registry、aliasplugin、
editor/alias 以及宿主程序提供统一的标识符、元数据、编辑器接口与错误码。

# 核心接口与类型

  - PluginID / EditorID / FileTypeID: 字符串标识符
  - PluginMetadata: 插件描述信息（标识、名称、版本、作者、描述）
  - FileTypeDefinition: 插件可打开的文件形态（含文件夹型标记文件）
  - EditorMetadata: 插件提供的编辑器及其支持的文件类型
  - RenderContext: 宿主传入的不透明渲染能力对象
  - PanelView: 可渲染面板
  - Editor: 底层编辑器对象（save / reload / dirty）
  - EditorInstance: 交给宿主的实例控制接口
  - EditorPlugin: 宿主发现并调用的插件入口
  - Error / ErrorCode: 结构化错误体系
*/
package types
