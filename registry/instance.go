package registry

import (
	"errors"
	"time"
)

// Instance is the resource bundle for one live editor.
type Instance struct {
	id        Identity
	display   *DisplayHandle
	control   *Control
	createdAt time.Time
}

// NewInstance bundles the registry-side display reference and the control
// wrapper under id. Both must already be fully constructed.
func NewInstance(id Identity, display *DisplayHandle, control *Control) *Instance {
	return &Instance{
		id:        id,
		display:   display,
		control:   control,
		createdAt: time.Now(),
	}
}

// ID returns the instance identity.
func (i *Instance) ID() Identity { return i.id }

// RetainDisplay returns a new display handle owned by the caller. The
// registry's own reference is never exposed.
func (i *Instance) RetainDisplay() *DisplayHandle { return i.display.Retain() }

// Handle returns a non-owning control handle.
func (i *Instance) Handle() *ControlHandle { return i.control.Handle() }

// FilePath returns the resolved artifact path.
func (i *Instance) FilePath() string { return i.control.FilePath() }

// CreatedAt returns when the instance was bundled.
func (i *Instance) CreatedAt() time.Time { return i.createdAt }

// release drops the control wrapper and the registry's display reference.
func (i *Instance) release() error {
	err := i.control.release()
	i.display.Release()
	return errors.Join(err, i.display.CloseErr())
}
