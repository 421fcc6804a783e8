package surface

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownSurface is returned when a message or query names a surface
	// that no beginRendering has created.
	ErrUnknownSurface = errors.New("unknown surface")
	// ErrCyclicComponentTree is returned when a component would contain
	// itself, directly or transitively.
	ErrCyclicComponentTree = errors.New("cyclic component tree")
	// ErrUnknownComponent is returned when an action targets a component id
	// the surface does not define.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrNoAction is returned when the triggered component carries no action.
	ErrNoAction = errors.New("component has no action")
)

// CycleError reports the component ids forming a cycle. The first and last
// ids are equal.
type CycleError struct {
	SurfaceID string
	Path      []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("surface %q: %v: %s", e.SurfaceID, ErrCyclicComponentTree, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCyclicComponentTree
}
