package aliasplugin

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/BaSui01/aliaseditor/config"
	"github.com/BaSui01/aliaseditor/editor/alias"
	"github.com/BaSui01/aliaseditor/internal/metrics"
	"github.com/BaSui01/aliaseditor/registry"
	"github.com/BaSui01/aliaseditor/types"
	"github.com/google/uuid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Static descriptors exposed to the host.
const (
	PluginID   types.PluginID   = "com.pulsar.alias-editor"
	EditorID   types.EditorID   = "alias-editor"
	FileTypeID types.FileTypeID = "alias"

	// Version is the plugin version reported by Metadata.
	Version = "0.1.0"

	tracerName = "github.com/BaSui01/aliaseditor/aliasplugin"
)

// State 插件生命周期状态
type State int

const (
	StateConstructed State = iota
	StateLoaded
	StateUnloaded
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateLoaded:
		return "loaded"
	case StateUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// EditorFactory builds the underlying editor object for a resolved path.
// It runs before any identity is allocated and outside every plugin lock.
type EditorFactory func(ctx context.Context, path string, rc types.RenderContext) (types.Editor, error)

// Plugin is the alias editor plugin. The zero value is not usable; call New.
type Plugin struct {
	registry  *registry.Registry
	allocator registry.Allocator
	factory   EditorFactory
	template  alias.Document

	logger    *zap.Logger
	collector *metrics.Collector
	tracer    trace.Tracer

	// mu guards state and session only; it is never held across a call
	// into the registry or an editor.
	mu      sync.Mutex
	state   State
	session string
}

var _ types.EditorPlugin = (*Plugin)(nil)

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the plugin logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithCollector records lifecycle metrics into c.
func WithCollector(c *metrics.Collector) Option {
	return func(p *Plugin) { p.collector = c }
}

// WithTracerProvider sets the provider spans are created from. The global
// provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Plugin) {
		if tp != nil {
			p.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithEditorFactory replaces the alias editor constructor.
func WithEditorFactory(f EditorFactory) Option {
	return func(p *Plugin) {
		if f != nil {
			p.factory = f
		}
	}
}

// New creates a plugin with an empty registry and the identity counter at zero.
func New(cfg config.PluginConfig, opts ...Option) *Plugin {
	p := &Plugin{
		template: alias.Document{Name: cfg.DefaultAliasName, Target: cfg.DefaultAliasTarget},
		logger:   zap.NewNop(),
		state:    StateConstructed,
		session:  uuid.NewString(),
	}
	if p.template.Validate() != nil {
		p.template = alias.DefaultDocument()
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}

	base := p.logger
	p.logger = base.With(zap.String("component", "alias_plugin"))
	p.registry = registry.New(base)
	if p.factory == nil {
		p.factory = aliasFactory(cfg.CreateMissing, p.template, base)
	}
	return p
}

func aliasFactory(createMissing bool, tmpl alias.Document, logger *zap.Logger) EditorFactory {
	return func(ctx context.Context, path string, rc types.RenderContext) (types.Editor, error) {
		ed, err := alias.Open(ctx, path, rc,
			alias.WithCreateMissing(createMissing),
			alias.WithTemplate(tmpl),
			alias.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return ed, nil
	}
}

// Metadata returns the plugin descriptor.
func (p *Plugin) Metadata() types.PluginMetadata {
	return types.PluginMetadata{
		ID:          PluginID,
		Name:        "Alias Editor",
		Version:     Version,
		Author:      "Pulsar Team",
		Description: "Visual block-based editor for creating type aliases",
	}
}

// FileTypes declares the folder-based alias type.
func (p *Plugin) FileTypes() []types.FileTypeDefinition {
	// Document 只含字符串字段，Marshal 不会失败
	content, _ := json.Marshal(p.template)
	return []types.FileTypeDefinition{
		{
			ID:          FileTypeID,
			Extension:   "alias",
			DisplayName: "Type Alias",
			Icon:        "code",
			Color:       0x3F51B5,
			Structure: types.FileStructure{
				Kind:       types.StructureFolderBased,
				MarkerFile: alias.MarkerFile,
			},
			DefaultContent: content,
			Categories:     []string{"Types"},
		},
	}
}

// Editors declares the single alias editor.
func (p *Plugin) Editors() []types.EditorMetadata {
	return []types.EditorMetadata{
		{
			ID:                 EditorID,
			DisplayName:        "Alias Editor",
			SupportedFileTypes: []types.FileTypeID{FileTypeID},
		},
	}
}

// State returns the current lifecycle state.
func (p *Plugin) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SessionID returns the current load session. A fresh one is generated on
// every OnLoad.
func (p *Plugin) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *Plugin) declares(id types.EditorID) bool {
	for _, m := range p.Editors() {
		if m.ID == id {
			return true
		}
	}
	return false
}
