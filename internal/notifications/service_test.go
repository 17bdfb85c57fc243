package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := &config.Config{}
	svc := notifications.NewService(cfg)
	if err := svc.CompositionCompleted(context.Background(), "Example", "/out/example.mp4"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func newTestService(url string) notifications.Service {
	return notifications.NewService(&config.Config{
		Notifications: config.Notifications{
			NtfyTopic:      url,
			RequestTimeout: 2,
			Compositions:   true,
			Errors:         true,
		},
	})
}

func TestCompositionStartedPayload(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	svc := newTestService(server.URL)
	if err := svc.CompositionStarted(context.Background(), "Winter Story", 4); err != nil {
		t.Fatalf("CompositionStarted: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got))
	}
	if got[0].title != "Storyreel - Composition Started" {
		t.Errorf("title = %q", got[0].title)
	}
	if got[0].body != "Composing Winter Story (4 scenes)" {
		t.Errorf("body = %q", got[0].body)
	}
	if got[0].tags != "storyreel,compose,started" {
		t.Errorf("tags = %q", got[0].tags)
	}
}

func TestCompositionCompletedIncludesOutputPath(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	svc := newTestService(server.URL)
	if err := svc.CompositionCompleted(context.Background(), "Winter Story", "/library/Winter_Story.mp4"); err != nil {
		t.Fatalf("CompositionCompleted: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got))
	}
	if !strings.Contains(got[0].body, "File: /library/Winter_Story.mp4") {
		t.Errorf("body missing file path: %q", got[0].body)
	}
	if got[0].priority != "high" {
		t.Errorf("priority = %q, want high", got[0].priority)
	}
}

func TestCompositionEventsRespectToggles(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)
	defer server.Close()

	svc := notifications.NewService(&config.Config{
		Notifications: config.Notifications{
			NtfyTopic:      server.URL,
			RequestTimeout: 2,
			Compositions:   false,
			Errors:         false,
		},
	})

	if err := svc.CompositionStarted(context.Background(), "x", 1); err != nil {
		t.Fatalf("CompositionStarted: %v", err)
	}
	if err := svc.CompositionFailed(context.Background(), "x", "boom"); err != nil {
		t.Fatalf("CompositionFailed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no requests with toggles off, got %d", len(got))
	}

	// Test notifications bypass the toggles.
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected test notification to send, got %d requests", len(got))
	}
}

func TestSendSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic rejected", http.StatusForbidden)
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	err := svc.CompositionFailed(context.Background(), "Winter Story", "recorder failure")
	if err == nil {
		t.Fatal("expected error from 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error %q does not mention status", err)
	}
}
