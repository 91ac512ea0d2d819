package types

import "context"

// RenderContext is the host's rendering capability. Plugins forward it to
// the editor object without examining it.
type RenderContext any

// PanelView is a renderable panel.
type PanelView interface {
	// PanelName is a stable panel kind name, e.g. "alias-editor".
	PanelName() string
	// Title is the text shown on the panel tab.
	Title() string
}

// Editor is the underlying editor object a plugin wraps. Implementations
// do their own I/O; callers never hold a plugin lock across these calls.
type Editor interface {
	PanelView
	Save(ctx context.Context, rc RenderContext) error
	Reload(ctx context.Context, rc RenderContext) error
	IsDirty() bool
}

// DisplayView is the host's shared handle on a panel.
type DisplayView interface {
	Panel() PanelView
	// Release drops the caller's reference. The panel is closed once
	// every holder has released it.
	Release()
}

// EditorInstance is the control surface handed to the host. It never
// carries ownership: nothing reachable through it can destroy or retain
// the plugin-side instance.
type EditorInstance interface {
	FilePath() string
	Save(ctx context.Context, rc RenderContext) error
	Reload(ctx context.Context, rc RenderContext) error
	IsDirty() bool
}

// ControlReleaser is implemented by editors holding resources that belong
// to the control side (open file handles, locks). The plugin calls
// ReleaseControl exactly once when it drops the instance, even if hosts
// still hold display handles on the panel.
type ControlReleaser interface {
	ReleaseControl() error
}
