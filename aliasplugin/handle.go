package aliasplugin

import (
	"context"
	"time"

	"github.com/BaSui01/aliaseditor/internal/ctxkeys"
	"github.com/BaSui01/aliaseditor/internal/metrics"
	"github.com/BaSui01/aliaseditor/registry"
	"github.com/BaSui01/aliaseditor/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InstanceHandle is the control handle given to the host. It adds tracing,
// metrics and context fields around registry.ControlHandle and, like it,
// exposes nothing that can remove or retain the instance.
type InstanceHandle struct {
	control *registry.ControlHandle
	id      registry.Identity
	session string

	tracer    trace.Tracer
	collector *metrics.Collector
	logger    *zap.Logger
}

var _ types.EditorInstance = (*InstanceHandle)(nil)

func (p *Plugin) newHandle(inst *registry.Instance, session string) *InstanceHandle {
	return &InstanceHandle{
		control:   inst.Handle(),
		id:        inst.ID(),
		session:   session,
		tracer:    p.tracer,
		collector: p.collector,
		logger:    p.logger,
	}
}

// Identity returns the identity the instance was registered under.
func (h *InstanceHandle) Identity() registry.Identity { return h.id }

// FilePath returns the resolved artifact path.
func (h *InstanceHandle) FilePath() string { return h.control.FilePath() }

// IsDirty reports unsaved changes; false once the instance is released.
func (h *InstanceHandle) IsDirty() bool { return h.control.IsDirty() }

// Live reports whether the plugin still owns the instance.
func (h *InstanceHandle) Live() bool { return h.control.Live() }

// Save delegates to the editor. The editor's error is returned as is.
func (h *InstanceHandle) Save(ctx context.Context, rc types.RenderContext) error {
	return h.run(ctx, "save", func(ctx context.Context) error {
		return h.control.Save(ctx, rc)
	})
}

// Reload delegates to the editor. The editor's error is returned as is.
func (h *InstanceHandle) Reload(ctx context.Context, rc types.RenderContext) error {
	return h.run(ctx, "reload", func(ctx context.Context) error {
		return h.control.Reload(ctx, rc)
	})
}

func (h *InstanceHandle) run(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx = ctxkeys.WithSessionID(ctx, h.session)
	ctx = ctxkeys.WithInstanceID(ctx, h.id.String())
	ctx, span := h.tracer.Start(ctx, "aliasplugin."+op, trace.WithAttributes(
		attribute.String("instance.identity", h.id.String()),
		attribute.String("file.path", h.control.FilePath()),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	h.collector.RecordOperation(op, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.Warn("editor operation failed",
			zap.String("operation", op),
			zap.Stringer("identity", h.id),
			zap.String("file_path", h.control.FilePath()),
			zap.Error(err))
	}
	return err
}
