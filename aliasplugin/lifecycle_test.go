package aliasplugin

import (
	"context"
	"errors"
	"testing"

	"github.com/BaSui01/aliaseditor/editor/alias"
	"github.com/BaSui01/aliaseditor/registry"
	"github.com/BaSui01/aliaseditor/testutil"
	"github.com/BaSui01/aliaseditor/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnUnload_ReleasesControlButKeepsHostDisplay(t *testing.T) {
	ff := newFakeFactory()
	p := newTestPlugin(t, WithEditorFactory(ff.build))
	ctx := context.Background()

	view, inst, err := p.CreateEditor(ctx, EditorID, "/x/A.alias", nil)
	require.NoError(t, err)
	ed := ff.editors["/x/A.alias"]
	ed.Touch()

	assert.Equal(t, 1, p.OnUnload(ctx))

	// 控制侧已释放
	assert.EqualValues(t, 1, ed.ReleaseControlCall.Load())
	assert.ErrorIs(t, inst.Save(ctx, nil), registry.ErrInstanceReleased)
	assert.ErrorIs(t, inst.Reload(ctx, nil), registry.ErrInstanceReleased)
	assert.True(t, types.IsErrorCode(inst.Save(ctx, nil), types.ErrInstanceReleased))
	assert.False(t, inst.IsDirty())
	assert.Equal(t, "/x/A.alias", inst.FilePath())
	assert.False(t, inst.(*InstanceHandle).Live())
	assert.EqualValues(t, 0, ed.SaveCalls.Load())

	// 宿主的显示句柄仍可渲染，最后一个持有者释放后面板关闭
	require.NotNil(t, view.Panel())
	assert.EqualValues(t, 0, ed.CloseCalls.Load())
	view.Release()
	assert.EqualValues(t, 1, ed.CloseCalls.Load())
	assert.Nil(t, view.Panel())
}

func TestOnUnload_ClosesPanelWhenHostAlreadyReleased(t *testing.T) {
	ff := newFakeFactory()
	p := newTestPlugin(t, WithEditorFactory(ff.build))
	ctx := context.Background()

	view, _, err := p.CreateEditor(ctx, EditorID, "/x/A.alias", nil)
	require.NoError(t, err)
	view.Release()
	view.Release()

	ed := ff.editors["/x/A.alias"]
	assert.EqualValues(t, 0, ed.CloseCalls.Load(), "registry still holds a reference")

	p.OnUnload(ctx)
	assert.EqualValues(t, 1, ed.CloseCalls.Load())
}

func TestOnUnload_RealEditorClosesFile(t *testing.T) {
	dir := testutil.WriteAliasDir(t, t.TempDir(), "A", "A", "i32")
	p := newTestPlugin(t)
	ctx := context.Background()

	view, inst, err := p.CreateEditor(ctx, EditorID, dir, nil)
	require.NoError(t, err)
	ed := view.Panel().(*alias.Editor)

	p.OnUnload(ctx)
	assert.ErrorIs(t, ed.Save(ctx, nil), alias.ErrControlReleased)
	assert.ErrorIs(t, inst.Save(ctx, nil), registry.ErrInstanceReleased)
	assert.False(t, ed.Closed())

	view.Release()
	assert.True(t, ed.Closed())
}

func TestHandle_PropagatesEditorErrorUnchanged(t *testing.T) {
	ff := newFakeFactory()
	p := newTestPlugin(t, WithEditorFactory(ff.build))
	ctx := context.Background()

	_, inst, err := p.CreateEditor(ctx, EditorID, "/x/A.alias", nil)
	require.NoError(t, err)

	saveErr := errors.New("save failed")
	reloadErr := errors.New("reload failed")
	ff.editors["/x/A.alias"].SaveErr = saveErr
	ff.editors["/x/A.alias"].ReloadErr = reloadErr

	assert.Same(t, saveErr, inst.Save(ctx, nil))
	assert.Same(t, reloadErr, inst.Reload(ctx, nil))
}

func TestPlugin_InstanceAndRelease(t *testing.T) {
	ff := newFakeFactory()
	p := newTestPlugin(t, WithEditorFactory(ff.build))
	ctx := context.Background()

	_, a, err := p.CreateEditor(ctx, EditorID, "/a", nil)
	require.NoError(t, err)
	_, _, err = p.CreateEditor(ctx, EditorID, "/b", nil)
	require.NoError(t, err)
	assert.Equal(t, []registry.Identity{0, 1}, p.Identities())

	h, ok := p.Instance(1)
	require.True(t, ok)
	assert.Equal(t, "/b", h.FilePath())
	assert.Equal(t, registry.Identity(1), h.Identity())

	_, ok = p.Instance(7)
	assert.False(t, ok)

	assert.True(t, p.Release(0))
	assert.False(t, p.Release(0))
	assert.ErrorIs(t, a.Save(ctx, nil), registry.ErrInstanceReleased)
	assert.EqualValues(t, 1, ff.editors["/a"].ReleaseControlCall.Load())
	assert.Equal(t, []registry.Identity{1}, p.Identities())
	assert.Equal(t, 1, p.OnUnload(ctx))
}

func TestPlugin_SaveAll(t *testing.T) {
	ff := newFakeFactory()
	p := newTestPlugin(t, WithEditorFactory(ff.build))
	ctx := context.Background()

	for _, path := range []string{"/a", "/b", "/c"} {
		_, _, err := p.CreateEditor(ctx, EditorID, path, nil)
		require.NoError(t, err)
	}
	ff.editors["/a"].Touch()
	ff.editors["/c"].Touch()
	boom := errors.New("read-only")
	ff.editors["/c"].SaveErr = boom

	saved, err := p.SaveAll(ctx, nil)
	assert.Equal(t, 1, saved)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "instance 2")

	assert.EqualValues(t, 1, ff.editors["/a"].SaveCalls.Load())
	assert.EqualValues(t, 0, ff.editors["/b"].SaveCalls.Load(), "clean instances are skipped")
	assert.True(t, ff.editors["/c"].IsDirty())
}

func TestPlugin_SaveAll_Empty(t *testing.T) {
	p := newTestPlugin(t)
	saved, err := p.SaveAll(context.Background(), nil)
	assert.Equal(t, 0, saved)
	assert.NoError(t, err)
}

func TestPlugin_ReloadPath(t *testing.T) {
	dir := testutil.WriteAliasDir(t, t.TempDir(), "A", "A", "i32")
	p := newTestPlugin(t)
	ctx := context.Background()

	cleanView, cleanInst, err := p.CreateEditor(ctx, EditorID, dir, nil)
	require.NoError(t, err)
	dirtyView, _, err := p.CreateEditor(ctx, EditorID, dir, nil)
	require.NoError(t, err)
	dirtyView.Panel().(*alias.Editor).SetName("Local")

	testutil.WriteAliasFile(t, cleanInst.FilePath(), "A", "u128")

	n, err := p.ReloadPath(ctx, nil, cleanInst.FilePath())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "u128", cleanView.Panel().(*alias.Editor).Document().Target)
	assert.Equal(t, "Local", dirtyView.Panel().(*alias.Editor).Document().Name, "unsaved edits survive")

	n, err = p.ReloadPath(ctx, nil, "/elsewhere/alias.json")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPlugin_Status(t *testing.T) {
	ff := newFakeFactory()
	p := newTestPlugin(t, WithEditorFactory(ff.build))
	ctx := context.Background()
	p.OnLoad(ctx)

	_, _, err := p.CreateEditor(ctx, EditorID, "/a", nil)
	require.NoError(t, err)
	_, _, err = p.CreateEditor(ctx, EditorID, "/b", nil)
	require.NoError(t, err)
	ff.editors["/b"].Touch()

	st := p.Status()
	assert.Equal(t, "loaded", st.State)
	assert.Equal(t, p.SessionID(), st.SessionID)
	assert.Equal(t, Version, st.Version)
	require.Len(t, st.Instances, 2)
	assert.Equal(t, registry.Identity(0), st.Instances[0].Identity)
	assert.Equal(t, "/a", st.Instances[0].FilePath)
	assert.Equal(t, "/a", st.Instances[0].Title)
	assert.False(t, st.Instances[0].Dirty)
	assert.True(t, st.Instances[1].Dirty)

	p.OnUnload(ctx)
	st = p.Status()
	assert.Equal(t, "unloaded", st.State)
	assert.Empty(t, st.Instances)
}
