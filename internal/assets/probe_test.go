package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storyreel/internal/scene"
)

func writeFakeProbe(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake ffprobe: %v", err)
	}
	return path
}

func TestProbeDurationsFillsMissingSeconds(t *testing.T) {
	binary := writeFakeProbe(t, "#!/bin/sh\nprintf '{\"streams\":[{\"codec_type\":\"audio\"}],\"format\":{\"duration\":\"4.25\"}}'\n")

	audio := filepath.Join(t.TempDir(), "voice.mp3")
	if err := os.WriteFile(audio, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	scenes := []scene.Scene{
		{Sequence: 1, AudioRef: audio},
		{Sequence: 2, AudioRef: audio, PlannedSeconds: 3},
		{Sequence: 3},
	}

	fetcher := NewFetcher(5 * time.Second)
	if err := fetcher.ProbeDurations(context.Background(), binary, t.TempDir(), scenes); err != nil {
		t.Fatalf("ProbeDurations: %v", err)
	}

	if scenes[0].PlannedSeconds != 4.25 {
		t.Fatalf("expected probed duration 4.25, got %f", scenes[0].PlannedSeconds)
	}
	if scenes[1].PlannedSeconds != 3 {
		t.Fatalf("explicit duration should be kept, got %f", scenes[1].PlannedSeconds)
	}
	if scenes[2].PlannedSeconds != 0 {
		t.Fatalf("scene without audio should stay at zero, got %f", scenes[2].PlannedSeconds)
	}
}

func TestProbeDurationsRejectsNonAudio(t *testing.T) {
	binary := writeFakeProbe(t, "#!/bin/sh\nprintf '{\"streams\":[{\"codec_type\":\"video\"}],\"format\":{\"duration\":\"2\"}}'\n")

	audio := filepath.Join(t.TempDir(), "clip.bin")
	if err := os.WriteFile(audio, []byte("data"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	fetcher := NewFetcher(5 * time.Second)
	err := fetcher.ProbeDurations(context.Background(), binary, t.TempDir(), []scene.Scene{{Sequence: 1, AudioRef: audio}})
	if err == nil {
		t.Fatal("expected error for file without audio stream")
	}
}

func TestProbeDurationsSurfacesFetchFailure(t *testing.T) {
	fetcher := NewFetcher(time.Second)
	err := fetcher.ProbeDurations(context.Background(), "ffprobe", t.TempDir(), []scene.Scene{
		{Sequence: 1, AudioRef: filepath.Join(t.TempDir(), "missing.mp3")},
	})
	if err == nil {
		t.Fatal("expected error for missing audio file")
	}
}
