package surface

import (
	"slices"

	"github.com/cexll/ideas-portal/internal/a2ui"
)

// findCycle returns the first cycle in the component graph, or nil. Every
// child reference counts as an edge, template component ids included.
// References to undefined ids are not edges.
func findCycle(components map[string]a2ui.Component) []string {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(components))
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		state[id] = onStack
		stack = append(stack, id)
		for _, child := range components[id].ChildRefs() {
			if _, ok := components[child]; !ok {
				continue
			}
			switch state[child] {
			case onStack:
				start := slices.Index(stack, child)
				cycle := append(slices.Clone(stack[start:]), child)
				return cycle
			case unvisited:
				if c := visit(child); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	// deterministic start order keeps the reported path stable
	ids := make([]string, 0, len(components))
	for id := range components {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if state[id] == unvisited {
			if c := visit(id); c != nil {
				return c
			}
		}
	}
	return nil
}
