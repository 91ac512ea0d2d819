package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/BaSui01/aliaseditor/types"
)

// FakeRenderContext is an opaque stand-in for the host render context.
type FakeRenderContext struct {
	Name string
}

// FakeEditor is an in-memory types.Editor that counts calls and returns
// injected errors.
type FakeEditor struct {
	mu    sync.Mutex
	title string
	dirty bool

	SaveErr   error
	ReloadErr error
	CloseErr  error

	SaveCalls          atomic.Int32
	ReloadCalls        atomic.Int32
	CloseCalls         atomic.Int32
	ReleaseControlCall atomic.Int32

	// LastRender is the render context passed to the last Save or Reload.
	LastRender types.RenderContext
}

var (
	_ types.Editor          = (*FakeEditor)(nil)
	_ types.ControlReleaser = (*FakeEditor)(nil)
)

// NewFakeEditor creates a clean FakeEditor titled title.
func NewFakeEditor(title string) *FakeEditor {
	return &FakeEditor{title: title}
}

func (f *FakeEditor) PanelName() string { return "fake-editor" }

func (f *FakeEditor) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

// Touch marks the editor dirty.
func (f *FakeEditor) Touch() {
	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()
}

func (f *FakeEditor) IsDirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

func (f *FakeEditor) Save(ctx context.Context, rc types.RenderContext) error {
	f.SaveCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastRender = rc
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.dirty = false
	return nil
}

func (f *FakeEditor) Reload(ctx context.Context, rc types.RenderContext) error {
	f.ReloadCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastRender = rc
	if f.ReloadErr != nil {
		return f.ReloadErr
	}
	f.dirty = false
	return nil
}

// Close is called when the last display handle is released.
func (f *FakeEditor) Close() error {
	f.CloseCalls.Add(1)
	return f.CloseErr
}

// ReleaseControl is called when the registry drops the instance.
func (f *FakeEditor) ReleaseControl() error {
	f.ReleaseControlCall.Add(1)
	return nil
}
