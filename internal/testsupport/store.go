package testsupport

import (
	"context"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/project"
	"storyreel/internal/scene"
)

// MustOpenStore opens a project.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *project.Store {
	t.Helper()

	store, err := project.Open(cfg)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProject creates a project for tests using the provided store.
func NewProject(t testing.TB, store *project.Store, title, aspect string) *project.Project {
	t.Helper()

	p, err := store.Create(context.Background(), title, aspect)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return p
}

// NewReadyScene appends a composition-ready scene to a test project.
func NewReadyScene(t testing.TB, store *project.Store, projectID int64, seq int, planned float64) *scene.Scene {
	t.Helper()

	sc, err := store.AddScene(context.Background(), scene.Scene{
		ProjectID:      projectID,
		Sequence:       seq,
		Title:          "scene",
		Narration:      "narration",
		ImageRef:       "image.png",
		ImageStatus:    scene.AssetReady,
		AudioRef:       "audio.mp3",
		AudioStatus:    scene.AssetReady,
		PlannedSeconds: planned,
	})
	if err != nil {
		t.Fatalf("store.AddScene: %v", err)
	}
	return sc
}
