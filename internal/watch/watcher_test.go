package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, path, content string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func newTestWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	return New(append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

// --- constructor / paths ---

func TestNew_Defaults(t *testing.T) {
	w := New()
	assert.Equal(t, time.Second, w.interval)
	assert.Empty(t, w.Paths())
}

func TestWithInterval_IgnoresNonPositive(t *testing.T) {
	assert.Equal(t, time.Second, New(WithInterval(0)).interval)
	assert.Equal(t, 50*time.Millisecond, New(WithInterval(50*time.Millisecond)).interval)
}

func TestWatcher_AddRemove(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	writeFile(t, a, "{}", time.Now())

	w := newTestWatcher(t)
	require.NoError(t, w.Add(a))
	require.NoError(t, w.Add(a), "duplicate add is a no-op")
	require.NoError(t, w.Add(b), "missing files can be watched for creation")
	assert.Equal(t, []string{a, b}, w.Paths())

	require.NoError(t, w.Remove(a))
	assert.Equal(t, []string{b}, w.Paths())
	assert.Error(t, w.Remove(a))
}

// --- change detection ---

func TestWatcher_Check_DetectsWriteCreateRemove(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "alias.json")
	later := filepath.Join(dir, "later.json")
	base := time.Now().Add(-time.Hour)
	writeFile(t, existing, `{"name":"A"}`, base)

	w := newTestWatcher(t)
	require.NoError(t, w.Add(existing))
	require.NoError(t, w.Add(later))

	var got []Event
	w.OnChange(func(e Event) { got = append(got, e) })

	assert.Empty(t, w.Check(), "no change since Add")

	writeFile(t, existing, `{"name":"B"}`, base.Add(time.Minute))
	events := w.Check()
	require.Len(t, events, 1)
	assert.Equal(t, OpWrite, events[0].Op)
	assert.Equal(t, existing, events[0].Path)

	writeFile(t, later, "{}", base)
	events = w.Check()
	require.Len(t, events, 1)
	assert.Equal(t, OpCreate, events[0].Op)

	require.NoError(t, os.Remove(existing))
	events = w.Check()
	require.Len(t, events, 1)
	assert.Equal(t, OpRemove, events[0].Op)

	assert.Empty(t, w.Check())
	assert.Len(t, got, 3, "callbacks see every dispatched event")
}

func TestWatcher_Check_SizeChangeWithSameModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alias.json")
	mod := time.Now().Add(-time.Hour)
	writeFile(t, path, "{}", mod)

	w := newTestWatcher(t)
	require.NoError(t, w.Add(path))

	writeFile(t, path, `{"name":"longer"}`, mod)
	events := w.Check()
	require.Len(t, events, 1)
	assert.Equal(t, OpWrite, events[0].Op)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "CREATE", OpCreate.String())
	assert.Equal(t, "WRITE", OpWrite.String())
	assert.Equal(t, "REMOVE", OpRemove.String())
	assert.Equal(t, "UNKNOWN", Op(9).String())
}

// --- run loop ---

func TestWatcher_Run(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alias.json")
	base := time.Now().Add(-time.Hour)
	writeFile(t, path, "{}", base)

	w := newTestWatcher(t, WithInterval(10*time.Millisecond))
	require.NoError(t, w.Add(path))

	var (
		mu  sync.Mutex
		ops []Op
	)
	w.OnChange(func(e Event) {
		mu.Lock()
		ops = append(ops, e.Op)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.running
	}, time.Second, 5*time.Millisecond)
	assert.Error(t, w.Run(ctx), "second Run is rejected")

	writeFile(t, path, `{"name":"x"}`, base.Add(time.Minute))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ops) >= 1 && ops[0] == OpWrite
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_Run_NotifiedBeforeInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alias.json")
	base := time.Now().Add(-time.Hour)
	writeFile(t, path, "{}", base)

	// 轮询间隔远大于等待时间，事件只能来自 fsnotify
	w := newTestWatcher(t, WithInterval(time.Hour))
	require.NoError(t, w.Add(path))

	got := make(chan Event, 8)
	w.OnChange(func(e Event) { got <- e })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.running
	}, time.Second, 5*time.Millisecond)
	// notifier 在 running 置位之后注册目录，留出时间
	time.Sleep(50 * time.Millisecond)

	writeFile(t, path, `{"name":"notified"}`, base.Add(time.Minute))
	select {
	case evt := <-got:
		assert.Equal(t, OpWrite, evt.Op)
		assert.Equal(t, path, evt.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestWatcher_Tracked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alias.json")
	w := newTestWatcher(t)
	require.NoError(t, w.Add(path))

	assert.True(t, w.tracked(path))
	assert.True(t, w.tracked(dir+"/./alias.json"))
	assert.False(t, w.tracked(filepath.Join(dir, "other.json")))
}
