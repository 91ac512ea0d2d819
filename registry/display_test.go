package registry

import (
	"errors"
	"testing"

	"github.com/BaSui01/aliaseditor/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayHandle_PanelClosesWhenLastHolderReleases(t *testing.T) {
	ed := testutil.NewFakeEditor("MyAlias")
	owner := NewDisplayHandle(ed)
	host := owner.Retain()
	require.NotNil(t, host)
	assert.Equal(t, int64(2), owner.Refs())

	owner.Release()
	assert.False(t, host.Closed())
	assert.Equal(t, "MyAlias", host.Panel().Title())
	assert.Equal(t, int32(0), ed.CloseCalls.Load())

	host.Release()
	assert.True(t, host.Closed())
	assert.Equal(t, int64(0), host.Refs())
	assert.Equal(t, int32(1), ed.CloseCalls.Load())
}

func TestDisplayHandle_DoubleReleaseDoesNotStealReferences(t *testing.T) {
	ed := testutil.NewFakeEditor("MyAlias")
	owner := NewDisplayHandle(ed)
	host := owner.Retain()

	host.Release()
	host.Release()
	host.Release()

	assert.Equal(t, int64(1), owner.Refs())
	assert.False(t, owner.Closed())
	assert.Nil(t, host.Panel())
	assert.Nil(t, host.Retain())
}

func TestDisplayHandle_CloseErr(t *testing.T) {
	ed := testutil.NewFakeEditor("MyAlias")
	ed.CloseErr = errors.New("close failed")
	h := NewDisplayHandle(ed)
	assert.NoError(t, h.CloseErr())

	h.Release()
	assert.EqualError(t, h.CloseErr(), "close failed")
}

type plainPanel struct{}

func (plainPanel) PanelName() string { return "plain" }
func (plainPanel) Title() string     { return "plain" }

func TestDisplayHandle_PanelWithoutCloser(t *testing.T) {
	h := NewDisplayHandle(plainPanel{})
	h.Release()
	assert.True(t, h.Closed())
	assert.NoError(t, h.CloseErr())
}

func TestDisplayHandle_RetainRefusesAfterLastRelease(t *testing.T) {
	ed := testutil.NewFakeEditor("A")
	owner := NewDisplayHandle(ed)
	// 与 owner 共享计数但自身未释放的视图，对应并发读取时拿到的旧指针
	stale := &DisplayHandle{shared: owner.shared}

	owner.Release()
	require.True(t, owner.Closed())

	assert.Nil(t, stale.Retain(), "a closed panel must not be revived")
	assert.Equal(t, int64(0), owner.Refs())
	assert.Equal(t, int32(1), ed.CloseCalls.Load())
}

func TestDisplayHandle_RetainRacingRelease(t *testing.T) {
	for i := 0; i < 1000; i++ {
		ed := testutil.NewFakeEditor("A")
		owner := NewDisplayHandle(ed)
		view := &DisplayHandle{shared: owner.shared}

		done := make(chan struct{})
		go func() {
			owner.Release()
			close(done)
		}()
		got := view.Retain()
		<-done

		if got == nil {
			assert.True(t, owner.Closed())
			continue
		}
		assert.False(t, got.Closed(), "retained handle observed a closed panel")
		assert.NotNil(t, got.Panel())
		got.Release()
		assert.True(t, got.Closed())
		assert.Equal(t, int32(1), ed.CloseCalls.Load())
	}
}
