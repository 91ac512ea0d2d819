package registry

import (
	"strconv"
	"sync/atomic"
)

// Identity is an opaque, process-unique editor instance identifier.
type Identity uint64

func (id Identity) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Allocator hands out strictly increasing identities starting at zero.
// The zero value is ready to use and safe for concurrent callers.
type Allocator struct {
	next atomic.Uint64
}

// Next returns an identity greater than every identity returned before.
func (a *Allocator) Next() Identity {
	return Identity(a.next.Add(1) - 1)
}

// Issued returns how many identities have been handed out.
func (a *Allocator) Issued() uint64 {
	return a.next.Load()
}
