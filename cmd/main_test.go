package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cexll/ideas-portal/internal/eventstore"
	"github.com/cexll/ideas-portal/internal/surface"
	"github.com/cexll/ideas-portal/internal/tools"
	"github.com/cexll/ideas-portal/internal/web"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("GITHUB_REPO", "owner/repo")
	t.Setenv("PUBLIC_BASE_URL", "http://localhost:8000")
	t.Setenv("ACTION_SIGNING_SECRET", "")

	prev := loadDotEnv
	loadDotEnv = func(...string) error { return nil }
	t.Cleanup(func() { loadDotEnv = prev })
}

func TestRun_StartsServerWithValidConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "4321")

	var servedAddr string
	var servedHandler http.Handler

	serve := func(addr string, handler http.Handler) error {
		servedAddr = addr
		servedHandler = handler
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, serve); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}

	if servedAddr != ":4321" {
		t.Fatalf("serve addr = %q, want :4321", servedAddr)
	}
	if servedHandler == nil {
		t.Fatalf("serve handler is nil")
	}

	// Smoke test a couple of routes to ensure router wiring is intact.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	servedHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/health status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	servedHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/ status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"service":"ideas-portal"`) {
		t.Fatalf("root body = %q, want service payload", body)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/surfaces", nil)
	servedHandler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/surfaces status = %d, want 200", rec.Code)
	}
}

func TestRun_ReturnsErrorWhenServeFails(t *testing.T) {
	setRequiredEnv(t)

	expected := errors.New("listen failed")
	err := run(context.Background(), func(string, http.Handler) error {
		return expected
	})

	if err == nil {
		t.Fatalf("run() error = nil, want %v", expected)
	}
	if !errors.Is(err, expected) {
		t.Fatalf("run() error = %v, want to wrap %v", err, expected)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GITHUB_REPO", "not-a-repo")

	err := run(context.Background(), func(string, http.Handler) error {
		t.Fatal("serve should not be called when configuration fails")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "failed to load configuration") {
		t.Fatalf("run() error = %v, want configuration failure", err)
	}
}

func TestRun_StartsWithoutGitHubSettings(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_REPO", "")

	called := false
	err := run(context.Background(), func(string, http.Handler) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("run() returned error: %v", err)
	}
	if !called {
		t.Fatal("serve was not called")
	}
}

func TestRun_WebHandlerError(t *testing.T) {
	setRequiredEnv(t)

	prevWebHandler := newWebHandler
	defer func() { newWebHandler = prevWebHandler }()
	newWebHandler = func(*surface.Registry, *eventstore.Store, *tools.Toolset, web.Options) (*web.Handler, error) {
		return nil, errors.New("inject failure")
	}

	err := run(context.Background(), func(string, http.Handler) error {
		t.Fatalf("serve should not be called on web handler failure")
		return nil
	})
	if err == nil {
		t.Fatal("run() error = nil, want web handler failure")
	}
	if !strings.Contains(err.Error(), "failed to initialize web handler") {
		t.Fatalf("error = %v, want web handler failure", err)
	}
}
