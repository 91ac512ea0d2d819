// Package registry owns the editor instances a plugin hands to its host.
//
// An Instance bundles two views of one editor object: a ref-counted
// DisplayHandle the host may share for rendering, and a Control wrapper
// that only the Registry owns. Hosts receive a ControlHandle, which keeps
// a weak reference to the Control and can neither retain nor destroy it.
//
// Identities come from an Allocator and are strictly increasing. The
// Registry guards its map with a single mutex and never calls into an
// editor object while holding it: instances are built before Insert, and
// Clear and Remove detach entries under the lock and release them after.
//
// Usage:
//
//	alloc := &registry.Allocator{}
//	reg := registry.New(logger)
//	inst := registry.NewInstance(alloc.Next(), registry.NewDisplayHandle(ed), registry.NewControl(ed, path))
//	if err := reg.Insert(inst); err != nil { ... }
//	view, ctl := inst.RetainDisplay(), inst.Handle()
//	...
//	released := reg.Clear()
package registry
