// Package metrics holds the Prometheus collectors shared by the renderer host
// and the tools server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "a2ui_messages_applied_total",
			Help: "Total number of A2UI messages applied to surfaces",
		},
		[]string{"kind", "outcome"},
	)

	actionsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "a2ui_actions_dispatched_total",
			Help: "Total number of user actions forwarded to the agent",
		},
		[]string{"action"},
	)

	toolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_tool_calls_total",
			Help: "Total number of GitHub tool invocations",
		},
		[]string{"tool", "outcome"},
	)

	liveSurfaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "a2ui_live_surfaces",
			Help: "Number of surfaces currently held by the registry",
		},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// MessageApplied records one message application.
func MessageApplied(kind string, err error) {
	messagesApplied.With(prometheus.Labels{"kind": kind, "outcome": outcome(err)}).Inc()
}

// ActionDispatched records one triggered action.
func ActionDispatched(name string) {
	actionsDispatched.With(prometheus.Labels{"action": name}).Inc()
}

// ToolCalled records one tool invocation. failed is true when the tool
// returned an error payload.
func ToolCalled(tool string, failed bool) {
	o := "ok"
	if failed {
		o = "error"
	}
	toolCalls.With(prometheus.Labels{"tool": tool, "outcome": o}).Inc()
}

// SetLiveSurfaces records the current number of surfaces.
func SetLiveSurfaces(n int) {
	liveSurfaces.Set(float64(n))
}
