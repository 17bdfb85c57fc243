package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storyreel/internal/api"
	"storyreel/internal/compositor"
	"storyreel/internal/logging"
	"storyreel/internal/project"
	"storyreel/internal/testsupport"
)

type stubComposer struct {
	mu       sync.Mutex
	running  bool
	status   compositor.Status
	requests []compositor.Request
}

func (s *stubComposer) Compose(_ context.Context, req compositor.Request) (compositor.Result, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return compositor.Result{JobID: "job-1", SceneCount: len(req.Scenes)}, nil
}

func (s *stubComposer) Status() compositor.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *stubComposer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *stubComposer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newTestServer(t *testing.T, token string, composer *stubComposer) (*httptest.Server, *project.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	router := api.NewRouter(api.ServerConfig{
		Token:     token,
		Store:     store,
		Composer:  composer,
		Logger:    logging.NewNop(),
		StartTime: time.Now(),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, store
}

func TestHealthRequiresNoAuth(t *testing.T) {
	server, _ := newTestServer(t, "secret", &stubComposer{})

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("health status %q", body.Status)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	server, _ := newTestServer(t, "secret", &stubComposer{})

	resp, err := http.Get(server.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	server, _ := newTestServer(t, "secret", &stubComposer{})

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestNoTokenLeavesAPIOpen(t *testing.T) {
	server, _ := newTestServer(t, "", &stubComposer{})

	resp, err := http.Get(server.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestProjectLifecycle(t *testing.T) {
	server, store := newTestServer(t, "", &stubComposer{})

	body, _ := json.Marshal(api.CreateProjectRequest{Title: "Winter Story", Aspect: "9:16"})
	resp, err := http.Post(server.URL+"/projects", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /projects: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var created api.ProjectResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == 0 || created.Aspect != "9:16" {
		t.Fatalf("created %+v", created)
	}

	testsupport.NewReadyScene(t, store, created.ID, 1, 4)

	listResp, err := http.Get(server.URL + "/projects")
	if err != nil {
		t.Fatalf("GET /projects: %v", err)
	}
	defer listResp.Body.Close()
	var list api.ProjectsResponse
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Projects) != 1 || list.Projects[0].Title != "Winter Story" {
		t.Fatalf("list %+v", list)
	}

	scenesResp, err := http.Get(fmt.Sprintf("%s/projects/%d/scenes", server.URL, created.ID))
	if err != nil {
		t.Fatalf("GET scenes: %v", err)
	}
	defer scenesResp.Body.Close()
	var scenes api.ScenesResponse
	if err := json.NewDecoder(scenesResp.Body).Decode(&scenes); err != nil {
		t.Fatalf("decode scenes: %v", err)
	}
	if len(scenes.Scenes) != 1 || !scenes.Scenes[0].Eligible {
		t.Fatalf("scenes %+v", scenes)
	}
}

func TestGetUnknownProjectReturns404(t *testing.T) {
	server, _ := newTestServer(t, "", &stubComposer{})

	resp, err := http.Get(server.URL + "/projects/99")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestComposeAccepted(t *testing.T) {
	composer := &stubComposer{}
	server, store := newTestServer(t, "", composer)

	p := testsupport.NewProject(t, store, "Compose Me", "")
	testsupport.NewReadyScene(t, store, p.ID, 1, 4)

	resp, err := http.Post(fmt.Sprintf("%s/projects/%d/compose", server.URL, p.ID), "application/json", nil)
	if err != nil {
		t.Fatalf("POST compose: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var body api.ComposeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Accepted || body.Scenes != 1 {
		t.Fatalf("body %+v", body)
	}

	deadline := time.After(time.Second)
	for composer.requestCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("composer never invoked")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestComposeConflictsWhileRunning(t *testing.T) {
	composer := &stubComposer{running: true}
	server, store := newTestServer(t, "", composer)

	p := testsupport.NewProject(t, store, "Busy", "")
	testsupport.NewReadyScene(t, store, p.ID, 1, 4)

	resp, err := http.Post(fmt.Sprintf("%s/projects/%d/compose", server.URL, p.ID), "application/json", nil)
	if err != nil {
		t.Fatalf("POST compose: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestComposeRejectsEmptyProject(t *testing.T) {
	server, store := newTestServer(t, "", &stubComposer{})

	p := testsupport.NewProject(t, store, "Empty", "")

	resp, err := http.Post(fmt.Sprintf("%s/projects/%d/compose", server.URL, p.ID), "application/json", nil)
	if err != nil {
		t.Fatalf("POST compose: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}
