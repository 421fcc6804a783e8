// Package web serves the surface registry over HTTP: agents post messages
// and tool payloads, renderers fetch resolved trees and post user actions,
// and the agent polls the resulting action events.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/cexll/ideas-portal/internal/a2ui"
	"github.com/cexll/ideas-portal/internal/datamodel"
	"github.com/cexll/ideas-portal/internal/eventstore"
	"github.com/cexll/ideas-portal/internal/prompt"
	"github.com/cexll/ideas-portal/internal/surface"
	"github.com/cexll/ideas-portal/internal/tools"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Options configures a Handler.
type Options struct {
	// BaseURL is the public root used in the system prompt.
	BaseURL string
	// SigningSecret enables action tokens when not empty.
	SigningSecret string
	// TokenTTL is the lifetime of issued action tokens.
	TokenTTL time.Duration
}

// Handler handles renderer and agent requests
type Handler struct {
	registry *surface.Registry
	events   *eventstore.Store
	tools    *tools.Toolset
	prompt   string
	tokens   *tokenIssuer
}

// NewHandler creates a new handler. The system prompt is built once here.
func NewHandler(registry *surface.Registry, events *eventstore.Store, toolset *tools.Toolset, opts Options) (*Handler, error) {
	p, err := prompt.BuildDefault(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("build system prompt: %w", err)
	}
	h := &Handler{registry: registry, events: events, tools: toolset, prompt: p}
	if opts.SigningSecret != "" {
		h.tokens = newTokenIssuer([]byte(opts.SigningSecret), opts.TokenTTL)
	}
	return h, nil
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/messages", h.handleMessages).Methods("POST")
	r.HandleFunc("/agent-responses", h.handleAgentResponse).Methods("POST")

	r.HandleFunc("/surfaces", h.handleListSurfaces).Methods("GET")
	r.HandleFunc("/surfaces/{id}", h.handleRender).Methods("GET")
	r.HandleFunc("/surfaces/{id}", h.handleDelete).Methods("DELETE")
	r.HandleFunc("/surfaces/{id}/snapshot", h.handleSnapshot).Methods("GET")
	r.HandleFunc("/surfaces/{id}/data", h.handleSetValue).Methods("PUT")
	r.HandleFunc("/surfaces/{id}/data", h.handleMergePayload).Methods("POST")
	r.HandleFunc("/surfaces/{id}/actions", h.handleAction).Methods("POST")

	r.HandleFunc("/events", h.handleEvents).Methods("GET")
	r.HandleFunc("/events/{seq:[0-9]+}", h.handleEvent).Methods("GET")
	r.HandleFunc("/events/{seq}/ack", h.handleAck).Methods("POST")
	r.HandleFunc("/events/{seq}/run", h.handleRunEvent).Methods("POST")

	r.HandleFunc("/tools/{name}", h.handleTool).Methods("POST")
	r.HandleFunc("/prompt", h.handlePrompt).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")
}

// BatchResult reports the outcome of applying a message list.
type BatchResult struct {
	Applied  int      `json:"applied"`
	Surfaces []string `json:"surfaces"`
	Errors   []string `json:"errors,omitempty"`
	// Text is the conversational part of an agent response.
	Text string `json:"text,omitempty"`
}

func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	msgs, err := decodeValidated(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.applyBatch(w, r, msgs, "")
}

func (h *Handler) handleAgentResponse(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a2ui.ParseAgentResponse(string(raw))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(resp.Raw) > 0 {
		if err := a2ui.ValidateJSON(resp.Raw); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	h.applyBatch(w, r, resp.Messages, resp.Text)
}

func (h *Handler) applyBatch(w http.ResponseWriter, r *http.Request, msgs []a2ui.Message, text string) {
	result := BatchResult{Applied: len(msgs), Surfaces: touched(msgs), Text: text}
	err := h.registry.ApplyBatch(r.Context(), msgs)
	if err == nil {
		writeJSON(w, http.StatusOK, result)
		return
	}

	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	for _, e := range errs {
		result.Errors = append(result.Errors, e.Error())
	}
	result.Applied -= len(errs)
	clog.FromContext(r.Context()).With("failed", len(errs)).Warn("Batch applied with errors")
	writeJSON(w, http.StatusUnprocessableEntity, result)
}

func (h *Handler) handleListSurfaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"surfaces": h.registry.Surfaces()})
}

// SurfaceResponse is a rendered surface plus the token its actions require.
type SurfaceResponse struct {
	Tree        *surface.Tree `json:"tree" yaml:"tree"`
	ActionToken string        `json:"actionToken,omitempty" yaml:"actionToken,omitempty"`
}

func (h *Handler) handleRender(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	tree, err := h.registry.Render(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	digest, err := tree.Digest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	etag := strconv.Quote(digest)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	resp := SurfaceResponse{Tree: tree}
	if h.tokens != nil {
		if resp.ActionToken, err = h.tokens.issue(id); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	if r.URL.Query().Get("format") == "yaml" {
		out, err := yaml.Marshal(resp)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.registry.Snapshot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if r.URL.Query().Get("format") == "messages" {
		out, err := a2ui.EncodeMessages(snap.Messages())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.registry.Delete(r.Context(), id); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if n := h.events.Supersede(id); n > 0 {
		clog.FromContext(r.Context()).With("surface", id).With("events", n).Info("Superseded pending events")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetValue(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path query parameter is required"))
		return
	}
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode value: %w", err))
		return
	}
	if err := h.registry.SetValue(r.Context(), mux.Vars(r)["id"], path, value); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MergeRequest merges a tool payload into a surface's data model.
type MergeRequest struct {
	Path    string `json:"path"`
	Payload any    `json:"payload"`
}

func (h *Handler) handleMergePayload(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Path == "" {
		req.Path = "/"
	}
	if err := h.registry.MergePayload(r.Context(), mux.Vars(r)["id"], req.Path, req.Payload); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActionRequest triggers the action of a rendered component. Scope is the
// node's scope from the rendered tree; empty means the data model root.
type ActionRequest struct {
	ComponentID string `json:"componentId"`
	Scope       string `json:"scope"`
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if h.tokens != nil {
		if err := h.tokens.verify(bearer(r), id); err != nil {
			clog.FromContext(r.Context()).With("surface", id).With("error", err).Warn("Rejected action token")
			writeError(w, http.StatusUnauthorized, err)
			return
		}
	}

	var req ActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ComponentID == "" {
		writeError(w, http.StatusBadRequest, errors.New("componentId is required"))
		return
	}
	ev, err := h.registry.Trigger(r.Context(), id, req.ComponentID, datamodel.At(req.Scope))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, h.events.Append(ev))
}

// EventsResponse lists action events after a sequence number.
type EventsResponse struct {
	Events  []eventstore.Entry `json:"events"`
	LastSeq int64              `json:"lastSeq"`
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	after, err := intParam(q.Get("after"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("after: %w", err))
		return
	}
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("limit: %w", err))
		return
	}

	var events []eventstore.Entry
	switch order := q.Get("order"); order {
	case "", "oldest":
		events = h.events.After(after, int(limit))
	case "newest":
		events = []eventstore.Entry{}
		for _, e := range h.events.List() {
			if e.Seq <= after || (limit > 0 && int64(len(events)) == limit) {
				break
			}
			events = append(events, e)
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("order: unknown value %q", order))
		return
	}
	writeJSON(w, http.StatusOK, EventsResponse{Events: events, LastSeq: h.events.LastSeq()})
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	seq, err := seqParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, ok := h.events.Get(seq)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("event %d not found", seq))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) handleAck(w http.ResponseWriter, r *http.Request) {
	seq, err := seqParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !h.events.Ack(seq) {
		writeError(w, http.StatusNotFound, fmt.Errorf("event %d not found", seq))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRunEvent runs the tool named by a pending event's action with the
// resolved context as arguments, then marks the event delivered. Actions
// that are not tools stay pending for the agent.
func (h *Handler) handleRunEvent(w http.ResponseWriter, r *http.Request) {
	seq, err := seqParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, ok := h.events.Get(seq)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("event %d not found", seq))
		return
	}
	if e.Status == eventstore.StatusSuperseded {
		writeError(w, http.StatusConflict, fmt.Errorf("event %d was superseded", seq))
		return
	}

	args, err := json.Marshal(e.Event.Arguments())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out, err := h.tools.Call(r.Context(), e.Event.ActionName, args)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("event %d: %w", seq, err))
		return
	}
	h.events.Ack(seq)
	clog.FromContext(r.Context()).With("seq", seq).With("tool", e.Event.ActionName).Info("Ran action as tool")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func (h *Handler) handleTool(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := h.tools.Call(r.Context(), mux.Vars(r)["name"], raw)
	switch {
	case errors.Is(err, tools.ErrUnknownTool):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func (h *Handler) handlePrompt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, h.prompt)
}

// touched returns the surface ids of msgs in first-seen order.
func touched(msgs []a2ui.Message) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, m := range msgs {
		id := a2ui.SurfaceOf(m)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func decodeValidated(raw []byte) ([]a2ui.Message, error) {
	if err := a2ui.ValidateJSON(raw); err != nil {
		return nil, err
	}
	return a2ui.DecodeMessages(raw)
}

func seqParam(r *http.Request) (int64, error) {
	seq, err := strconv.ParseInt(mux.Vars(r)["seq"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("seq: %w", err)
	}
	return seq, nil
}

func intParam(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("want a non-negative integer, got %q", s)
	}
	return n, nil
}
