package aliasplugin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BaSui01/aliaseditor/registry"
	"github.com/BaSui01/aliaseditor/types"
	"github.com/google/uuid"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OnLoad marks the plugin loaded and starts a new session. Instances and
// the identity counter are left untouched.
func (p *Plugin) OnLoad(ctx context.Context) {
	p.mu.Lock()
	p.state = StateLoaded
	p.session = uuid.NewString()
	session := p.session
	p.registry.Reopen()
	p.mu.Unlock()

	p.logger.Info("alias editor plugin loaded",
		zap.String("session_id", session),
		zap.String("version", Version))
}

// OnUnload releases every instance and returns how many were released.
// Calling it on an empty registry returns zero. Until the next OnLoad,
// CreateEditor fails with PLUGIN_NOT_LOADED.
func (p *Plugin) OnUnload(ctx context.Context) int {
	_, span := p.tracer.Start(ctx, "aliasplugin.OnUnload")
	defer span.End()

	p.mu.Lock()
	p.state = StateUnloaded
	session := p.session
	p.mu.Unlock()

	released := p.registry.Close()

	p.collector.RecordUnload(released)
	span.SetAttributes(attribute.Int("instances.released", released))
	p.logger.Info("alias editor plugin unloaded",
		zap.Int("released", released),
		zap.String("session_id", session))
	return released
}

// InstanceCount returns the number of live instances.
func (p *Plugin) InstanceCount() int {
	return p.registry.Len()
}

// Identities returns the live identities in ascending order.
func (p *Plugin) Identities() []registry.Identity {
	return p.registry.Identities()
}

// Instance returns a new control handle for a live instance.
func (p *Plugin) Instance(id registry.Identity) (*InstanceHandle, bool) {
	inst, ok := p.registry.Get(id)
	if !ok {
		return nil, false
	}
	return p.newHandle(inst, p.SessionID()), true
}

// Release drops a single instance. Handles the host still holds start
// returning INSTANCE_RELEASED; display handles keep the panel alive.
func (p *Plugin) Release(id registry.Identity) bool {
	if !p.registry.Remove(id) {
		return false
	}
	p.collector.RecordInstancesReleased("explicit", 1)
	p.logger.Info("editor instance released", zap.Stringer("identity", id))
	return true
}

// SaveAll saves every dirty instance in identity order and returns how
// many were saved. Failures do not stop the loop and are joined.
func (p *Plugin) SaveAll(ctx context.Context, rc types.RenderContext) (int, error) {
	var (
		saved int
		errs  []error
	)
	for _, inst := range p.registry.Instances() {
		h := p.newHandle(inst, p.SessionID())
		if !h.IsDirty() {
			continue
		}
		if err := h.Save(ctx, rc); err != nil {
			errs = append(errs, fmt.Errorf("save instance %s: %w", inst.ID(), err))
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// ReloadPath reloads the clean instances bound to path, typically after
// the artifact changed on disk. Dirty instances are skipped so unsaved
// edits survive.
func (p *Plugin) ReloadPath(ctx context.Context, rc types.RenderContext, path string) (int, error) {
	var (
		reloaded int
		errs     []error
	)
	for _, inst := range p.registry.Instances() {
		if inst.FilePath() != path {
			continue
		}
		h := p.newHandle(inst, p.SessionID())
		if h.IsDirty() {
			p.logger.Info("skipping reload of dirty instance",
				zap.Stringer("identity", inst.ID()),
				zap.String("file_path", path))
			continue
		}
		if err := h.Reload(ctx, rc); err != nil {
			errs = append(errs, fmt.Errorf("reload instance %s: %w", inst.ID(), err))
			continue
		}
		reloaded++
	}
	return reloaded, errors.Join(errs...)
}

// InstanceStatus describes one live instance.
type InstanceStatus struct {
	Identity  registry.Identity `json:"identity"`
	FilePath  string            `json:"file_path"`
	Title     string            `json:"title"`
	Dirty     bool              `json:"dirty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Status is a point-in-time view of the plugin.
type Status struct {
	State     string           `json:"state"`
	SessionID string           `json:"session_id"`
	Version   string           `json:"version"`
	Instances []InstanceStatus `json:"instances"`
}

// Status snapshots the plugin state and its live instances.
func (p *Plugin) Status() Status {
	p.mu.Lock()
	st := Status{State: p.state.String(), SessionID: p.session, Version: Version}
	p.mu.Unlock()

	insts := p.registry.Instances()
	st.Instances = make([]InstanceStatus, 0, len(insts))
	for _, inst := range insts {
		st.Instances = append(st.Instances, InstanceStatus{
			Identity:  inst.ID(),
			FilePath:  inst.FilePath(),
			Title:     panelTitle(inst),
			Dirty:     inst.Handle().IsDirty(),
			CreatedAt: inst.CreatedAt(),
		})
	}
	return st
}

func panelTitle(inst *registry.Instance) string {
	d := inst.RetainDisplay()
	if d == nil {
		return ""
	}
	defer d.Release()
	if panel := d.Panel(); panel != nil {
		return panel.Title()
	}
	return ""
}
