package registry

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Registry is a thread-safe map from Identity to the Instance it owns.
type Registry struct {
	mu        sync.Mutex
	instances map[Identity]*Instance
	closed    bool // Close 之后拒绝 Insert，直到 Reopen
	logger    *zap.Logger
}

// New creates an empty Registry.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		instances: make(map[Identity]*Instance),
		logger:    logger.With(zap.String("component", "instance_registry")),
	}
}

// Insert stores inst under its identity. The lock is held for the map
// write only; inst must be fully built by the caller. A closed registry
// rejects the insert with ErrRegistryClosed.
func (r *Registry) Insert(inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("instance must not be nil")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRegistryClosed, inst.id)
	}
	if _, exists := r.instances[inst.id]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, inst.id)
	}
	r.instances[inst.id] = inst
	r.mu.Unlock()

	r.logger.Debug("instance registered",
		zap.Stringer("identity", inst.id),
		zap.String("file_path", inst.FilePath()))
	return nil
}

// Get returns the instance stored under id.
//
// Extension point: no plugin operation needs lookup today.
func (r *Registry) Get(id Identity) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	return inst, ok
}

// Remove detaches and releases the instance stored under id, reporting
// whether one was present.
//
// Extension point: creation is monotonic and only Clear runs at unload.
func (r *Registry) Remove(id Identity) bool {
	r.mu.Lock()
	inst, ok := r.instances[id]
	if ok {
		delete(r.instances, id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.releaseInstance(inst)
	return true
}

// Clear removes every instance and releases each one before returning.
// It returns the number removed; an empty registry yields zero.
func (r *Registry) Clear() int {
	return r.clear(false)
}

// Close clears the registry and rejects later inserts until Reopen. An
// insert racing with Close either lands before the detach and is released
// with the rest, or fails.
func (r *Registry) Close() int {
	return r.clear(true)
}

// Reopen accepts inserts again after Close.
func (r *Registry) Reopen() {
	r.mu.Lock()
	r.closed = false
	r.mu.Unlock()
}

// Closed reports whether the registry rejects inserts.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Registry) clear(closeAfter bool) int {
	r.mu.Lock()
	if closeAfter {
		r.closed = true
	}
	detached := make([]*Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		detached = append(detached, inst)
	}
	r.instances = make(map[Identity]*Instance)
	r.mu.Unlock()

	// Release in identity order so teardown is reproducible.
	sort.Slice(detached, func(i, j int) bool { return detached[i].id < detached[j].id })
	for _, inst := range detached {
		r.releaseInstance(inst)
	}
	return len(detached)
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// Identities returns the live identities in ascending order.
func (r *Registry) Identities() []Identity {
	r.mu.Lock()
	ids := make([]Identity, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Instances returns a snapshot of the live instances in identity order.
func (r *Registry) Instances() []*Instance {
	r.mu.Lock()
	out := make([]*Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, inst)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (r *Registry) releaseInstance(inst *Instance) {
	if err := inst.release(); err != nil {
		r.logger.Warn("instance release reported an error",
			zap.Stringer("identity", inst.id),
			zap.Error(err))
		return
	}
	r.logger.Debug("instance released", zap.Stringer("identity", inst.id))
}
