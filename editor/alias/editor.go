package alias

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/BaSui01/aliaseditor/internal/ctxkeys"
	"github.com/BaSui01/aliaseditor/types"
	"go.uber.org/zap"
)

// PanelName is the panel kind reported to the host.
const PanelName = "alias-editor"

// ErrControlReleased is returned by Save and Reload after ReleaseControl.
var ErrControlReleased = errors.New("alias editor control released")

// Editor is the alias editor object.
type Editor struct {
	mu     sync.RWMutex
	path   string
	file   *os.File
	doc    Document
	saved  Document
	closed bool
	logger *zap.Logger
}

var (
	_ types.Editor          = (*Editor)(nil)
	_ types.ControlReleaser = (*Editor)(nil)
	_ io.Closer             = (*Editor)(nil)
)

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	createMissing bool
	template      Document
	logger        *zap.Logger
}

// WithCreateMissing makes Open materialize a missing artifact from the
// template instead of failing.
func WithCreateMissing(create bool) Option {
	return func(o *openOptions) { o.createMissing = create }
}

// WithTemplate sets the document written for a missing artifact.
func WithTemplate(d Document) Option {
	return func(o *openOptions) { o.template = d }
}

// WithLogger sets the editor logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *openOptions) { o.logger = logger }
}

// Open binds an editor to the alias document at path. The render context
// is accepted for parity with Save and Reload and is not inspected.
func Open(ctx context.Context, path string, rc types.RenderContext, opts ...Option) (*Editor, error) {
	o := openOptions{template: DefaultDocument()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && o.createMissing:
		if f, err = createFromTemplate(path, o.template); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("open alias %s: %w", path, err)
	}

	doc, err := readDocument(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read alias %s: %w", path, err)
	}

	e := &Editor{
		path:   path,
		file:   f,
		doc:    doc,
		saved:  doc,
		logger: o.logger.With(zap.String("component", "alias_editor"), zap.String("file_path", path)),
	}
	e.logger.Debug("alias editor opened", zap.String("alias", doc.Name))
	return e, nil
}

func createFromTemplate(path string, tmpl Document) (*os.File, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	data, err := tmpl.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create alias folder: %w", err)
	}

	tmp, err := writeTemp(path, data, 0o644)
	if err != nil {
		return nil, fmt.Errorf("write alias template: %w", err)
	}
	defer os.Remove(tmp)
	// Link 在目标已存在时失败，不会覆盖并发创建的文件
	if err := os.Link(tmp, path); err != nil {
		return nil, fmt.Errorf("create alias %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("create alias %s: %w", path, err)
	}
	return f, nil
}

// writeTemp writes data to a synced temp file next to path and returns its
// name. Same directory so the later rename or link stays on one filesystem.
func writeTemp(path string, data []byte, perm os.FileMode) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	name := f.Name()
	fail := func(err error) (string, error) {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Chmod(perm); err != nil {
		return fail(err)
	}
	if _, err := f.Write(data); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

func readDocument(f *os.File) (Document, error) {
	info, err := f.Stat()
	if err != nil {
		return Document{}, err
	}
	data, err := io.ReadAll(io.NewSectionReader(f, 0, info.Size()))
	if err != nil {
		return Document{}, err
	}
	return ParseDocument(data)
}

// PanelName implements types.PanelView.
func (e *Editor) PanelName() string { return PanelName }

// Title returns the alias name.
func (e *Editor) Title() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Name
}

// Path returns the artifact path the editor is bound to.
func (e *Editor) Path() string { return e.path }

// Document returns the current, possibly unsaved, document.
func (e *Editor) Document() Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc
}

// SetName renames the alias.
func (e *Editor) SetName(name string) {
	e.mu.Lock()
	e.doc.Name = name
	e.mu.Unlock()
}

// SetTarget changes the aliased type.
func (e *Editor) SetTarget(target string) {
	e.mu.Lock()
	e.doc.Target = target
	e.mu.Unlock()
}

// IsDirty reports whether the document differs from what is on disk.
func (e *Editor) IsDirty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc != e.saved
}

// Save replaces the artifact atomically: the document goes to a synced temp
// file in the same folder which is then renamed over the artifact. Readers
// see either the old or the new content, and a failed save leaves the old
// file intact.
func (e *Editor) Save(ctx context.Context, rc types.RenderContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return ErrControlReleased
	}
	if err := e.doc.Validate(); err != nil {
		return err
	}
	data, err := e.doc.Marshal()
	if err != nil {
		return err
	}
	perm := os.FileMode(0o644)
	if info, err := e.file.Stat(); err == nil {
		perm = info.Mode().Perm()
	}
	tmp, err := writeTemp(e.path, data, perm)
	if err != nil {
		return fmt.Errorf("write alias: %w", err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace alias: %w", err)
	}
	e.saved = e.doc

	// 旧句柄指向被替换掉的文件，切换到新文件
	f, err := os.OpenFile(e.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("reopen alias %s: %w", e.path, err)
	}
	old := e.file
	e.file = f
	if err := old.Close(); err != nil {
		e.logger.Warn("close previous alias handle", zap.Error(err))
	}

	e.logWith(ctx).Info("alias saved", zap.String("alias", e.doc.Name))
	return nil
}

// Reload discards unsaved edits and re-reads the artifact.
func (e *Editor) Reload(ctx context.Context, rc types.RenderContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return ErrControlReleased
	}
	// 重新打开路径，外部工具以 rename 方式替换文件时旧句柄会读到过期内容
	f, err := os.OpenFile(e.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("reload alias %s: %w", e.path, err)
	}
	doc, err := readDocument(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("reload alias %s: %w", e.path, err)
	}
	old := e.file
	e.file = f
	e.doc = doc
	e.saved = doc
	if err := old.Close(); err != nil {
		e.logger.Warn("close previous alias handle", zap.Error(err))
	}

	e.logWith(ctx).Info("alias reloaded", zap.String("alias", doc.Name))
	return nil
}

// ReleaseControl closes the artifact file. Later calls are no-ops.
func (e *Editor) ReleaseControl() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	return err
}

// Close marks the panel closed once no host renders it anymore.
func (e *Editor) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// Closed reports whether the panel was closed.
func (e *Editor) Closed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.closed
}

func (e *Editor) logWith(ctx context.Context) *zap.Logger {
	l := e.logger
	if id, ok := ctxkeys.SessionID(ctx); ok {
		l = l.With(zap.String("session_id", id))
	}
	if id, ok := ctxkeys.InstanceID(ctx); ok {
		l = l.With(zap.String("identity", id))
	}
	return l
}
