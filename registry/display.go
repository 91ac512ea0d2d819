package registry

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/BaSui01/aliaseditor/types"
)

// sharedPanel is the panel plus the reference count shared by every
// DisplayHandle pointing at it.
type sharedPanel struct {
	panel     types.PanelView
	refs      atomic.Int64
	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

func (s *sharedPanel) close() {
	s.closeOnce.Do(func() {
		if c, ok := s.panel.(io.Closer); ok {
			s.closeErr = c.Close()
		}
		s.closed.Store(true)
	})
}

// DisplayHandle is one holder's reference on a shared panel. Each holder
// releases its own handle; the panel closes when the last one does.
type DisplayHandle struct {
	shared   *sharedPanel
	released atomic.Bool
}

var _ types.DisplayView = (*DisplayHandle)(nil)

// NewDisplayHandle wraps panel with a reference count of one.
func NewDisplayHandle(panel types.PanelView) *DisplayHandle {
	s := &sharedPanel{panel: panel}
	s.refs.Store(1)
	return &DisplayHandle{shared: s}
}

// Retain returns a new handle on the same panel. It returns nil if h has
// already been released or the panel's last reference is gone.
func (h *DisplayHandle) Retain() *DisplayHandle {
	if h.released.Load() {
		return nil
	}
	for {
		n := h.shared.refs.Load()
		if n <= 0 {
			return nil
		}
		if h.shared.refs.CompareAndSwap(n, n+1) {
			return &DisplayHandle{shared: h.shared}
		}
	}
}

// Release drops this handle's reference. Extra calls are no-ops.
func (h *DisplayHandle) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	if h.shared.refs.Add(-1) == 0 {
		h.shared.close()
	}
}

// Panel returns the panel, or nil once this handle is released.
func (h *DisplayHandle) Panel() types.PanelView {
	if h.released.Load() {
		return nil
	}
	return h.shared.panel
}

// Refs reports the number of live handles on the panel.
func (h *DisplayHandle) Refs() int64 {
	return h.shared.refs.Load()
}

// Closed reports whether the panel has been closed.
func (h *DisplayHandle) Closed() bool {
	return h.shared.closed.Load()
}

// CloseErr returns the error from closing the panel, if any.
func (h *DisplayHandle) CloseErr() error {
	if !h.Closed() {
		return nil
	}
	return h.shared.closeErr
}
