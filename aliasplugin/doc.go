// Package aliasplugin 实现别名编辑器插件的入口（Plugin Facade）。
//
// Plugin 向宿主暴露静态元数据、文件类型与编辑器声明，并负责创建编辑器实例：
// 先构造底层编辑器对象，再分配实例标识，最后在注册表锁内插入。宿主只拿到
// 共享的显示句柄与不持有所有权的控制句柄；OnUnload 会清空注册表，
// 无论宿主是否仍持有显示句柄，所有控制侧资源都会被释放。
//
// 基本用法：
//
//	plugin := aliasplugin.New(cfg.Plugin, aliasplugin.WithLogger(logger))
//	plugin.OnLoad(ctx)
//	view, inst, err := plugin.CreateEditor(ctx, aliasplugin.EditorID, "/x/MyAlias.alias", rc)
//	if err != nil {
//		return err
//	}
//	defer view.Release()
//	_ = inst.Save(ctx, rc)
//	released := plugin.OnUnload(ctx)
package aliasplugin
