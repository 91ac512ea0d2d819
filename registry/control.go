package registry

import (
	"context"
	"sync"
	"weak"

	"github.com/BaSui01/aliaseditor/types"
)

// Sentinel errors for the registry.
var (
	ErrInstanceReleased  error = types.NewError(types.ErrInstanceReleased, "editor instance released")
	ErrDuplicateIdentity error = types.NewError(types.ErrDuplicateIdentity, "identity already registered")
	ErrRegistryClosed    error = types.NewError(types.ErrPluginNotLoaded, "registry closed")
)

// Control is the exclusively owned wrapper exposing save, reload and
// dirty state for one editor. Only the Registry may release it.
type Control struct {
	mu       sync.Mutex
	editor   types.Editor
	path     string
	released bool
}

// NewControl binds editor to its resolved artifact path.
func NewControl(editor types.Editor, path string) *Control {
	return &Control{editor: editor, path: path}
}

// Handle returns a non-owning handle for the host.
func (c *Control) Handle() *ControlHandle {
	return &ControlHandle{ref: weak.Make(c), path: c.path}
}

// FilePath returns the artifact path bound at construction.
func (c *Control) FilePath() string {
	return c.path
}

// Released reports whether the control has been released.
func (c *Control) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

func (c *Control) save(ctx context.Context, rc types.RenderContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ErrInstanceReleased
	}
	return c.editor.Save(ctx, rc)
}

func (c *Control) reload(ctx context.Context, rc types.RenderContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ErrInstanceReleased
	}
	return c.editor.Reload(ctx, rc)
}

func (c *Control) isDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return false
	}
	return c.editor.IsDirty()
}

// release runs once; it waits for an in-flight save or reload to finish.
func (c *Control) release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil
	}
	c.released = true
	editor := c.editor
	c.editor = nil
	if r, ok := editor.(types.ControlReleaser); ok {
		return r.ReleaseControl()
	}
	return nil
}

// ControlHandle is the host's view of a Control. It holds only a weak
// reference, so it never keeps a dropped instance alive, and it exposes
// no operation that removes or releases anything.
type ControlHandle struct {
	ref  weak.Pointer[Control]
	path string
}

var _ types.EditorInstance = (*ControlHandle)(nil)

func (h *ControlHandle) control() (*Control, error) {
	c := h.ref.Value()
	if c == nil {
		return nil, ErrInstanceReleased
	}
	return c, nil
}

// FilePath returns the resolved artifact path. It stays valid after release.
func (h *ControlHandle) FilePath() string {
	return h.path
}

// Save delegates to the editor; its error is returned unchanged.
func (h *ControlHandle) Save(ctx context.Context, rc types.RenderContext) error {
	c, err := h.control()
	if err != nil {
		return err
	}
	return c.save(ctx, rc)
}

// Reload delegates to the editor; its error is returned unchanged.
func (h *ControlHandle) Reload(ctx context.Context, rc types.RenderContext) error {
	c, err := h.control()
	if err != nil {
		return err
	}
	return c.reload(ctx, rc)
}

// IsDirty reports unsaved changes. Released instances report false.
func (h *ControlHandle) IsDirty() bool {
	c, err := h.control()
	if err != nil {
		return false
	}
	return c.isDirty()
}

// Live reports whether the instance behind the handle is still owned by
// a registry.
func (h *ControlHandle) Live() bool {
	c := h.ref.Value()
	return c != nil && !c.Released()
}
