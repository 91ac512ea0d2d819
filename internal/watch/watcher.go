// 别名产物变更监听器。
//
// 通过 fsnotify 监听 alias.json 所在目录，收到通知或轮询间隔到期时比较
// 修改时间与大小，发现外部修改时触发回调，由宿主决定是否重新加载对应的编辑器实例。
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// --- 事件类型定义 ---

// Op 文件操作类型
type Op int

const (
	// OpCreate 文件出现
	OpCreate Op = iota
	// OpWrite 文件内容被修改
	OpWrite
	// OpRemove 文件被删除
	OpRemove
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	default:
		return "UNKNOWN"
	}
}

// Event is a change detected on a watched path.
type Event struct {
	Path      string    `json:"path"`
	Op        Op        `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

type fileState struct {
	modTime time.Time
	size    int64
}

// --- 监听器 ---

// Watcher tracks a set of artifact files. Callbacks run on the goroutine
// that called Run or Check, one event at a time.
type Watcher struct {
	mu sync.Mutex

	interval  time.Duration
	states    map[string]*fileState // nil 表示当前不存在
	callbacks []func(Event)
	running   bool

	logger *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the poll interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher with no paths.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		interval: time.Second,
		states:   make(map[string]*fileState),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(zap.String("component", "artifact_watcher"))
	return w
}

// OnChange registers a callback.
func (w *Watcher) OnChange(cb func(Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Add starts tracking path. The current state is recorded so only later
// changes produce events. Adding a tracked path is a no-op.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	st, err := stat(abs)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.states[abs]; ok {
		return nil
	}
	w.states[abs] = st
	w.logger.Debug("watching artifact", zap.String("path", abs))
	return nil
}

// Remove stops tracking path.
func (w *Watcher) Remove(path string) error {
	abs, _ := filepath.Abs(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.states[abs]; !ok {
		return fmt.Errorf("path not watched: %s", path)
	}
	delete(w.states, abs)
	return nil
}

// Paths returns the tracked paths in lexical order.
func (w *Watcher) Paths() []string {
	w.mu.Lock()
	paths := make([]string, 0, len(w.states))
	for p := range w.states {
		paths = append(paths, p)
	}
	w.mu.Unlock()

	sort.Strings(paths)
	return paths
}

// Run watches until ctx is done. Directories of the paths tracked when Run
// starts are registered with fsnotify; paths added later, and platforms
// where fsnotify is unavailable, fall back to polling at the interval.
// It returns an error if the watcher is already running.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	var (
		fsEvents <-chan fsnotify.Event
		fsErrors <-chan error
	)
	if fsw, err := w.notifier(); err != nil {
		w.logger.Warn("fsnotify unavailable, polling only", zap.Error(err))
	} else {
		defer fsw.Close()
		fsEvents, fsErrors = fsw.Events, fsw.Errors
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("artifact watcher started",
		zap.Strings("paths", w.Paths()),
		zap.Duration("interval", w.interval),
		zap.Bool("fsnotify", fsEvents != nil))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("artifact watcher stopped")
			return nil
		case <-ticker.C:
			w.Check()
		case evt, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if w.tracked(evt.Name) {
				w.Check()
			}
		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			w.logger.Warn("fsnotify error", zap.Error(err))
		}
	}
}

// notifier 为每个被监听文件的父目录注册 fsnotify，监听目录可以覆盖 rename 替换
func (w *Watcher) notifier() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs := make(map[string]struct{})
	for _, p := range w.Paths() {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("watch directory failed", zap.String("dir", dir), zap.Error(err))
		}
	}
	return fsw, nil
}

func (w *Watcher) tracked(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.states[filepath.Clean(path)]
	return ok
}

// Check polls every path once and dispatches the resulting events. The
// watcher lock is released before callbacks run.
func (w *Watcher) Check() []Event {
	events := w.scan()
	if len(events) == 0 {
		return nil
	}

	w.mu.Lock()
	callbacks := make([]func(Event), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, evt := range events {
		w.logger.Debug("dispatching artifact event",
			zap.String("path", evt.Path),
			zap.Stringer("op", evt.Op))
		for _, cb := range callbacks {
			cb(evt)
		}
	}
	return events
}

func (w *Watcher) scan() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	var events []Event
	for path, prev := range w.states {
		cur, err := stat(path)
		if err != nil {
			w.logger.Warn("stat artifact failed", zap.String("path", path), zap.Error(err))
			continue
		}

		switch {
		case prev == nil && cur != nil:
			events = append(events, Event{Path: path, Op: OpCreate, Timestamp: now})
		case prev != nil && cur == nil:
			events = append(events, Event{Path: path, Op: OpRemove, Timestamp: now})
		case prev != nil && cur != nil && (!cur.modTime.Equal(prev.modTime) || cur.size != prev.size):
			events = append(events, Event{Path: path, Op: OpWrite, Timestamp: now})
		default:
			continue
		}
		w.states[path] = cur
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}

// stat returns nil state for a missing file.
func stat(path string) (*fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &fileState{modTime: info.ModTime(), size: info.Size()}, nil
}
