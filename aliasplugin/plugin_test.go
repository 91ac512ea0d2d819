package aliasplugin

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/BaSui01/aliaseditor/config"
	"github.com/BaSui01/aliaseditor/internal/metrics"
	"github.com/BaSui01/aliaseditor/testutil"
	"github.com/BaSui01/aliaseditor/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// --- helpers ---

var testNamespaceSeq atomic.Int64

func nextTestNamespace() string {
	return fmt.Sprintf("aliasplugin_test_%d", testNamespaceSeq.Add(1))
}

func newTestPlugin(t *testing.T, opts ...Option) *Plugin {
	t.Helper()
	base := []Option{WithLogger(zaptest.NewLogger(t))}
	return New(config.DefaultPluginConfig(), append(base, opts...)...)
}

// fakeFactory builds in-memory editors and remembers them by path.
type fakeFactory struct {
	editors map[string]*testutil.FakeEditor
	err     error

	lastRender  types.RenderContext
	lastSession string
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{editors: make(map[string]*testutil.FakeEditor)}
}

func (f *fakeFactory) build(ctx context.Context, path string, rc types.RenderContext) (types.Editor, error) {
	f.lastRender = rc
	f.lastSession = sessionFrom(ctx)
	if f.err != nil {
		return nil, f.err
	}
	ed := testutil.NewFakeEditor(path)
	f.editors[path] = ed
	return ed, nil
}

// --- metadata ---

func TestPlugin_Metadata(t *testing.T) {
	p := newTestPlugin(t)

	md := p.Metadata()
	assert.Equal(t, PluginID, md.ID)
	assert.Equal(t, "Alias Editor", md.Name)
	assert.Equal(t, Version, md.Version)
	assert.Equal(t, "Pulsar Team", md.Author)
	assert.NotEmpty(t, md.Description)
	assert.Equal(t, md, p.Metadata(), "metadata is static")
}

func TestPlugin_FileTypes(t *testing.T) {
	p := newTestPlugin(t)

	fts := p.FileTypes()
	require.Len(t, fts, 1)
	ft := fts[0]
	assert.Equal(t, FileTypeID, ft.ID)
	assert.Equal(t, "alias", ft.Extension)
	assert.Equal(t, types.StructureFolderBased, ft.Structure.Kind)
	assert.Equal(t, "alias.json", ft.Structure.MarkerFile)
	assert.Equal(t, []string{"Types"}, ft.Categories)
	assert.JSONEq(t, `{"name":"NewAlias","target":"i32"}`, string(ft.DefaultContent))
}

func TestPlugin_FileTypes_ConfiguredTemplate(t *testing.T) {
	cfg := config.DefaultPluginConfig()
	cfg.DefaultAliasName = "Handle"
	cfg.DefaultAliasTarget = "u64"
	p := New(cfg)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(p.FileTypes()[0].DefaultContent, &doc))
	assert.Equal(t, map[string]string{"name": "Handle", "target": "u64"}, doc)
}

func TestPlugin_FileTypes_InvalidTemplateFallsBack(t *testing.T) {
	p := New(config.PluginConfig{})
	assert.JSONEq(t, `{"name":"NewAlias","target":"i32"}`, string(p.FileTypes()[0].DefaultContent))
}

func TestPlugin_Editors(t *testing.T) {
	p := newTestPlugin(t)

	eds := p.Editors()
	require.Len(t, eds, 1)
	assert.Equal(t, EditorID, eds[0].ID)
	assert.True(t, eds[0].Supports(FileTypeID))

	// 每个编辑器支持的文件类型都已声明
	declared := map[types.FileTypeID]bool{}
	for _, ft := range p.FileTypes() {
		declared[ft.ID] = true
	}
	for _, ed := range eds {
		for _, ft := range ed.SupportedFileTypes {
			assert.True(t, declared[ft], "editor %s references undeclared file type %s", ed.ID, ft)
		}
	}
}

// --- state machine ---

func TestPlugin_StateTransitions(t *testing.T) {
	p := newTestPlugin(t)
	ctx := context.Background()

	assert.Equal(t, StateConstructed, p.State())
	initial := p.SessionID()
	require.NotEmpty(t, initial)

	p.OnLoad(ctx)
	assert.Equal(t, StateLoaded, p.State())
	first := p.SessionID()
	assert.NotEqual(t, initial, first)

	assert.Equal(t, 0, p.OnUnload(ctx))
	assert.Equal(t, StateUnloaded, p.State())
	assert.Equal(t, first, p.SessionID(), "unload keeps the session for its log line")

	p.OnLoad(ctx)
	assert.Equal(t, StateLoaded, p.State())
	assert.NotEqual(t, first, p.SessionID())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateConstructed, "constructed"},
		{StateLoaded, "loaded"},
		{StateUnloaded, "unloaded"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestPlugin_IdentitiesSurviveReload(t *testing.T) {
	ff := newFakeFactory()
	p := newTestPlugin(t, WithEditorFactory(ff.build))
	ctx := context.Background()

	p.OnLoad(ctx)
	_, a, err := p.CreateEditor(ctx, EditorID, "/a", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, p.OnUnload(ctx))

	p.OnLoad(ctx)
	_, b, err := p.CreateEditor(ctx, EditorID, "/b", nil)
	require.NoError(t, err)

	assert.Greater(t, b.(*InstanceHandle).Identity(), a.(*InstanceHandle).Identity(),
		"identities are never reused by the same plugin value")
}

func TestPlugin_WithCollector(t *testing.T) {
	c := metrics.NewCollector(nextTestNamespace(), zaptest.NewLogger(t))
	ff := newFakeFactory()
	p := newTestPlugin(t, WithCollector(c), WithEditorFactory(ff.build))
	ctx := context.Background()

	_, h, err := p.CreateEditor(ctx, EditorID, "/a", nil)
	require.NoError(t, err)
	require.NoError(t, h.Save(ctx, nil))
	_, _, err = p.CreateEditor(ctx, "nope", "/a", nil)
	require.Error(t, err)

	// 只验证不会 panic 且流程完整，具体数值由 metrics 包测试覆盖
	assert.Equal(t, 1, p.OnUnload(ctx))
}
