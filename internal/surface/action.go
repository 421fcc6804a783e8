package surface

import (
	"context"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/cexll/ideas-portal/internal/a2ui"
	"github.com/cexll/ideas-portal/internal/datamodel"
	"github.com/cexll/ideas-portal/internal/metrics"
)

// ActionEvent is what the agent receives when a user triggers an action.
type ActionEvent struct {
	ID          string         `json:"id"`
	SurfaceID   string         `json:"surfaceId"`
	ComponentID string         `json:"componentId"`
	ActionName  string         `json:"actionName"`
	Context     []ContextValue `json:"context"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// ContextValue is one resolved action context entry.
type ContextValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Arguments returns the context as a map, suitable as tool arguments.
// Later keys win.
func (e *ActionEvent) Arguments() map[string]any {
	out := make(map[string]any, len(e.Context))
	for _, cv := range e.Context {
		out[cv.Key] = cv.Value
	}
	return out
}

// Trigger fires the action of a component. Context values resolve against
// scope, the data path of the triggered instance (datamodel.Root() outside
// templates). Paths that do not resolve yield "".
func (r *Registry) Trigger(ctx context.Context, surfaceID, componentID string, scope datamodel.Scope) (*ActionEvent, error) {
	release, err := r.lock(ctx, surfaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	s, err := r.get(surfaceID)
	if err != nil {
		return nil, err
	}
	c, ok := s.components[componentID]
	if !ok {
		return nil, fmt.Errorf("surface %q: %w: %q", surfaceID, ErrUnknownComponent, componentID)
	}
	button, ok := c.(*a2ui.Button)
	if !ok {
		return nil, fmt.Errorf("surface %q: component %q (%s): %w", surfaceID, componentID, c.Kind(), ErrNoAction)
	}

	log := clog.FromContext(ctx).With("surface", surfaceID).With("component", componentID)
	ev := &ActionEvent{
		ID:          r.newID(),
		SurfaceID:   surfaceID,
		ComponentID: componentID,
		ActionName:  button.Action.Name,
		Context:     make([]ContextValue, 0, len(button.Action.Context)),
		CreatedAt:   r.now().UTC(),
	}
	for _, entry := range button.Action.Context {
		if _, ok := s.data.Lookup(scope, entry.Value); !ok {
			log.With("key", entry.Key).With("path", scope.Abs(entry.Value.Path)).Debug("Unresolved action context path")
		}
		ev.Context = append(ev.Context, ContextValue{Key: entry.Key, Value: s.data.ResolveValue(scope, entry.Value)})
	}

	metrics.ActionDispatched(ev.ActionName)
	log.With("action", ev.ActionName).Info("Dispatched action")
	return ev, nil
}
