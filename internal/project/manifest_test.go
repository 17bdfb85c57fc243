package project_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/project"
	"storyreel/internal/scene"
	"storyreel/internal/testsupport"
)

const tomlManifest = `title = "Winter Story"
aspect = "9:16"

[[scenes]]
title = "Dawn"
narration = "The sun rose over the valley."
image = "/assets/dawn.png"
audio = "/assets/dawn.mp3"
seconds = 4.0

[[scenes]]
title = "Noon"
narration = "By noon the snow had melted."
image = "/assets/noon.png"
`

const yamlManifest = `title: Winter Story
scenes:
  - title: Dawn
    narration: The sun rose over the valley.
    image: /assets/dawn.png
    audio: /assets/dawn.mp3
    seconds: 4
`

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifestTOML(t *testing.T) {
	m, err := project.LoadManifest(writeManifest(t, "story.toml", tomlManifest))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Title != "Winter Story" || m.Aspect != "9:16" {
		t.Fatalf("manifest header %+v", m)
	}
	if len(m.Scenes) != 2 {
		t.Fatalf("got %d scenes", len(m.Scenes))
	}
	if m.Scenes[0].Seconds != 4.0 {
		t.Fatalf("scene seconds %f", m.Scenes[0].Seconds)
	}
}

func TestLoadManifestYAML(t *testing.T) {
	m, err := project.LoadManifest(writeManifest(t, "story.yaml", yamlManifest))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Title != "Winter Story" || len(m.Scenes) != 1 {
		t.Fatalf("manifest %+v", m)
	}
}

func TestLoadManifestRejectsUnknownExtension(t *testing.T) {
	if _, err := project.LoadManifest(writeManifest(t, "story.json", "{}")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadManifestRequiresTitleAndScenes(t *testing.T) {
	if _, err := project.LoadManifest(writeManifest(t, "story.toml", `title = ""`)); err == nil {
		t.Fatal("expected error for missing title")
	}
	if _, err := project.LoadManifest(writeManifest(t, "story.toml", `title = "Empty"`)); err == nil {
		t.Fatal("expected error for zero scenes")
	}
}

func TestIngestCreatesProjectAndScenes(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	m, err := project.LoadManifest(writeManifest(t, "story.toml", tomlManifest))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	p, err := store.Ingest(context.Background(), m)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	scenes, err := store.ListScenes(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ListScenes: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("got %d scenes", len(scenes))
	}
	if scenes[0].ImageStatus != scene.AssetReady || scenes[0].AudioStatus != scene.AssetReady {
		t.Fatalf("first scene statuses %s/%s", scenes[0].ImageStatus, scenes[0].AudioStatus)
	}
	// Second manifest scene has no audio; it stays pending and ineligible.
	if scenes[1].AudioStatus != scene.AssetPending {
		t.Fatalf("second scene audio status %s", scenes[1].AudioStatus)
	}
	if scenes[1].Eligible() {
		t.Fatal("scene without audio must not be eligible")
	}
}
