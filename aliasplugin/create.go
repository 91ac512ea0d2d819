package aliasplugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BaSui01/aliaseditor/editor/alias"
	"github.com/BaSui01/aliaseditor/internal/ctxkeys"
	"github.com/BaSui01/aliaseditor/registry"
	"github.com/BaSui01/aliaseditor/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ResolvePath returns the artifact path for filePath: a directory maps to
// its marker file, anything else (including paths that do not exist yet)
// is returned unchanged.
func ResolvePath(filePath string) string {
	if info, err := os.Stat(filePath); err == nil && info.IsDir() {
		return filepath.Join(filePath, alias.MarkerFile)
	}
	return filePath
}

// CreateEditor builds an editor for filePath and registers it.
//
// The host receives its own display reference, which it must Release, and
// a control handle that never owns the instance. An undeclared editorID
// fails with EDITOR_NOT_FOUND before anything is built or allocated; a
// construction failure is reported as EDITOR_CONSTRUCTION, also without
// allocating an identity. After OnUnload, and until the next OnLoad,
// creation fails with PLUGIN_NOT_LOADED; a create racing with OnUnload is
// either released by it or rejected at registration.
func (p *Plugin) CreateEditor(ctx context.Context, editorID types.EditorID, filePath string, rc types.RenderContext) (types.DisplayView, types.EditorInstance, error) {
	ctx, span := p.tracer.Start(ctx, "aliasplugin.CreateEditor", trace.WithAttributes(
		attribute.String("editor.id", string(editorID)),
		attribute.String("file.path", filePath),
	))
	defer span.End()
	start := time.Now()

	if !p.declares(editorID) {
		err := types.NewEditorNotFound(editorID)
		p.failCreate(span, err)
		return nil, nil, err
	}

	if p.State() == StateUnloaded {
		err := types.NewError(types.ErrPluginNotLoaded, "plugin is unloaded").WithEditorID(editorID)
		p.failCreate(span, err)
		return nil, nil, err
	}

	path := ResolvePath(filePath)
	session := p.SessionID()

	// 在分配标识与加锁之前完成编辑器构造
	ed, err := p.factory(ctxkeys.WithSessionID(ctx, session), path, rc)
	if err != nil {
		cerr := types.NewError(types.ErrEditorConstruction, "failed to construct editor").
			WithEditorID(editorID).
			WithCause(err)
		p.failCreate(span, cerr, zap.String("file_path", path))
		return nil, nil, cerr
	}

	id := p.allocator.Next()
	display := registry.NewDisplayHandle(ed)
	hostView := display.Retain()
	inst := registry.NewInstance(id, display, registry.NewControl(ed, path))

	if err := p.registry.Insert(inst); err != nil {
		hostView.Release()
		display.Release()
		if r, ok := ed.(types.ControlReleaser); ok {
			_ = r.ReleaseControl()
		}
		if !errors.Is(err, registry.ErrRegistryClosed) {
			p.logger.Error("instance registration failed",
				zap.Stringer("identity", id),
				zap.Error(err))
		}
		p.failCreate(span, err, zap.Stringer("identity", id))
		return nil, nil, err
	}

	p.collector.RecordInstanceCreated(string(editorID), time.Since(start))
	span.SetAttributes(
		attribute.String("instance.identity", id.String()),
		attribute.String("file.resolved_path", path),
	)
	p.logger.Info("editor instance created",
		zap.Stringer("identity", id),
		zap.String("editor_id", string(editorID)),
		zap.String("file_path", path),
		zap.String("session_id", session),
	)

	return hostView, p.newHandle(inst, session), nil
}

func (p *Plugin) failCreate(span trace.Span, err error, fields ...zap.Field) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.collector.RecordCreateFailure(string(types.GetErrorCode(err)))

	fields = append(fields, zap.Error(err))
	p.logger.Warn("create editor failed", fields...)
}
