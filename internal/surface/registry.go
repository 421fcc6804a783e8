// Package surface tracks live UI surfaces and applies A2UI messages to them.
//
// Each surface owns a component table, a data model and a style record.
// Messages for one surface are applied strictly in order under a per-surface
// lock; distinct surfaces share no state and may be processed in parallel.
package surface

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cexll/ideas-portal/internal/a2ui"
	"github.com/cexll/ideas-portal/internal/concurrency"
	"github.com/cexll/ideas-portal/internal/datamodel"
	"github.com/cexll/ideas-portal/internal/metrics"
)

// Surface is one named render target.
type Surface struct {
	ID     string
	Root   string
	Styles a2ui.Styles

	components map[string]a2ui.Component
	// order keeps first-definition order for snapshots
	order []string
	data  *datamodel.Model
}

func newSurface(m *a2ui.BeginRendering) *Surface {
	s := &Surface{
		ID:         m.SurfaceID,
		Root:       m.Root,
		components: map[string]a2ui.Component{},
		data:       datamodel.New(),
	}
	if m.Styles != nil {
		s.Styles = *m.Styles
	}
	return s
}

// Registry holds the live surfaces.
type Registry struct {
	mu       sync.RWMutex
	surfaces map[string]*Surface
	locks    *concurrency.Manager

	now   func() time.Time
	newID func() string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		surfaces: map[string]*Surface{},
		locks:    concurrency.NewManager(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// lock acquires the per-surface lock and returns the release func.
func (r *Registry) lock(ctx context.Context, id string) (func(), error) {
	if err := r.locks.Acquire(ctx, id); err != nil {
		return nil, fmt.Errorf("surface %q: %w", id, err)
	}
	return func() { r.locks.Release(id) }, nil
}

func (r *Registry) get(id string) (*Surface, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurface, id)
	}
	return s, nil
}

// Apply applies one message. A failing message leaves the surface as it
// was before the call.
func (r *Registry) Apply(ctx context.Context, m a2ui.Message) (err error) {
	id := a2ui.SurfaceOf(m)
	log := clog.FromContext(ctx).With("surface", id).With("kind", a2ui.KindOf(m))
	defer func() {
		metrics.MessageApplied(a2ui.KindOf(m), err)
		if err != nil {
			log.With("error", err).Warn("Rejected message")
		}
	}()

	release, err := r.lock(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	switch msg := m.(type) {
	case *a2ui.BeginRendering:
		r.mu.Lock()
		_, existed := r.surfaces[id]
		r.surfaces[id] = newSurface(msg)
		n := len(r.surfaces)
		r.mu.Unlock()
		metrics.SetLiveSurfaces(n)
		if existed {
			log.Info("Reset surface")
		} else {
			log.Info("Created surface")
		}
		return nil

	case *a2ui.SurfaceUpdate:
		s, err := r.get(id)
		if err != nil {
			return err
		}
		return s.upsert(msg.Components)

	case *a2ui.DataModelUpdate:
		s, err := r.get(id)
		if err != nil {
			return err
		}
		s.data.Apply(msg.Path, msg.Contents)
		return nil
	}
	return fmt.Errorf("%w: unhandled message %T", a2ui.ErrInvalidMessage, m)
}

// upsert adds or replaces component definitions. The update is rejected as a
// whole when the resulting graph would contain a cycle.
func (s *Surface) upsert(defs []a2ui.ComponentDef) error {
	next := maps.Clone(s.components)
	order := slices.Clone(s.order)
	for _, def := range defs {
		c, err := def.Component.Variant()
		if err != nil {
			return fmt.Errorf("component %q: %w", def.ID, err)
		}
		if _, ok := next[def.ID]; !ok {
			order = append(order, def.ID)
		}
		next[def.ID] = c
	}

	if cycle := findCycle(next); cycle != nil {
		return &CycleError{SurfaceID: s.ID, Path: cycle}
	}
	s.components = next
	s.order = order
	return nil
}

// ApplyBatch applies messages in order per surface, processing distinct
// surfaces concurrently. A failing message is skipped and the rest of its
// surface's messages still apply; all failures are joined in the result.
func (r *Registry) ApplyBatch(ctx context.Context, msgs []a2ui.Message) error {
	type indexed struct {
		pos int
		msg a2ui.Message
	}
	var order []string
	groups := map[string][]indexed{}
	for i, m := range msgs {
		id := a2ui.SurfaceOf(m)
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], indexed{i, m})
	}

	results := make([][]error, len(order))
	var g errgroup.Group
	for gi, id := range order {
		g.Go(func() error {
			for _, im := range groups[id] {
				if err := r.Apply(ctx, im.msg); err != nil {
					results[gi] = append(results[gi], fmt.Errorf("message %d: %w", im.pos, err))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs []error
	for _, res := range results {
		errs = append(errs, res...)
	}
	return errors.Join(errs...)
}

// SetValue writes a user-entered value into the surface's data model.
func (r *Registry) SetValue(ctx context.Context, surfaceID, path string, value any) error {
	release, err := r.lock(ctx, surfaceID)
	if err != nil {
		return err
	}
	defer release()

	s, err := r.get(surfaceID)
	if err != nil {
		return err
	}
	if err := s.data.Set(path, value); err != nil {
		return fmt.Errorf("surface %q: set %s: %w", surfaceID, path, err)
	}
	clog.FromContext(ctx).With("surface", surfaceID).With("path", path).Debug("Set data model value")
	return nil
}

// MergePayload merges a decoded tool payload into the data model at path.
// Array payloads replace the list at path.
func (r *Registry) MergePayload(ctx context.Context, surfaceID, path string, payload any) error {
	base, entries := datamodel.UpdateFor(path, payload)
	return r.Apply(ctx, &a2ui.DataModelUpdate{SurfaceID: surfaceID, Path: base, Contents: entries})
}

// Delete removes a surface.
func (r *Registry) Delete(ctx context.Context, surfaceID string) error {
	release, err := r.lock(ctx, surfaceID)
	if err != nil {
		return err
	}
	defer release()

	r.mu.Lock()
	_, ok := r.surfaces[surfaceID]
	delete(r.surfaces, surfaceID)
	n := len(r.surfaces)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSurface, surfaceID)
	}
	metrics.SetLiveSurfaces(n)
	clog.FromContext(ctx).With("surface", surfaceID).Info("Deleted surface")
	return nil
}

// Surfaces returns the ids of all live surfaces, sorted.
func (r *Registry) Surfaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := slices.Collect(maps.Keys(r.surfaces))
	slices.Sort(ids)
	return ids
}

// Snapshot is a point-in-time copy of a surface.
type Snapshot struct {
	SurfaceID  string              `json:"surfaceId" yaml:"surfaceId"`
	Root       string              `json:"root" yaml:"root"`
	Styles     a2ui.Styles         `json:"styles" yaml:"styles"`
	Components []a2ui.ComponentDef `json:"components" yaml:"components"`
	Data       map[string]any      `json:"data" yaml:"data"`
	DataDigest string              `json:"dataDigest" yaml:"dataDigest"`
}

// Snapshot copies the state of a surface.
func (r *Registry) Snapshot(ctx context.Context, surfaceID string) (*Snapshot, error) {
	release, err := r.lock(ctx, surfaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	s, err := r.get(surfaceID)
	if err != nil {
		return nil, err
	}
	digest, err := s.data.Digest()
	if err != nil {
		return nil, fmt.Errorf("surface %q: %w", surfaceID, err)
	}
	snap := &Snapshot{
		SurfaceID:  s.ID,
		Root:       s.Root,
		Styles:     s.Styles,
		Components: make([]a2ui.ComponentDef, 0, len(s.order)),
		Data:       s.data.Snapshot(),
		DataDigest: digest,
	}
	for _, id := range s.order {
		snap.Components = append(snap.Components, a2ui.Def(id, s.components[id]))
	}
	return snap, nil
}

// Messages returns a message sequence that recreates the snapshot on an
// empty registry.
func (s *Snapshot) Messages() []a2ui.Message {
	styles := s.Styles
	return []a2ui.Message{
		&a2ui.BeginRendering{SurfaceID: s.SurfaceID, Root: s.Root, Styles: &styles},
		&a2ui.SurfaceUpdate{SurfaceID: s.SurfaceID, Components: s.Components},
		&a2ui.DataModelUpdate{SurfaceID: s.SurfaceID, Path: "/", Contents: datamodel.EntriesFromPayload(s.Data)},
	}
}
