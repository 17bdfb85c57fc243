package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
output_dir = %q
staging_dir = %q
log_dir = %q
api_bind = "127.0.0.1:0"
`,
		filepath.Join(base, "output"),
		filepath.Join(base, "staging"),
		filepath.Join(base, "logs"),
	)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output %q does not mention target", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[composition]") {
		t.Fatal("sample config missing composition section")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error for existing config")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestAddAndListProjects(t *testing.T) {
	cfgPath := writeTestConfig(t)

	manifest := filepath.Join(t.TempDir(), "story.toml")
	manifestBody := `title = "Winter Story"

[[scenes]]
title = "Dawn"
narration = "The sun rose."
image = "/assets/dawn.png"
audio = "/assets/dawn.mp3"
seconds = 4.0
`
	if err := os.WriteFile(manifest, []byte(manifestBody), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	out, err := runCommand(t, "--config", cfgPath, "add", manifest)
	if err != nil {
		t.Fatalf("add: %v (output %q)", err, out)
	}
	if !strings.Contains(out, "Winter Story") {
		t.Fatalf("add output %q", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "projects")
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if !strings.Contains(out, "Winter Story") {
		t.Fatalf("projects output %q", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "scenes", "1")
	if err != nil {
		t.Fatalf("scenes: %v", err)
	}
	if !strings.Contains(out, "Dawn") || !strings.Contains(out, "yes") {
		t.Fatalf("scenes output %q", out)
	}
}

func TestScenesRejectsBadProjectID(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCommand(t, "--config", cfgPath, "scenes", "zero"); err == nil {
		t.Fatal("expected error for non-numeric project id")
	}
	if _, err := runCommand(t, "--config", cfgPath, "scenes", "42"); err == nil {
		t.Fatal("expected error for missing project")
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "nothing sent") {
		t.Fatalf("output %q", out)
	}
}

func TestAddProbeFillsDurations(t *testing.T) {
	base := t.TempDir()
	probeBin := filepath.Join(base, "ffprobe")
	script := "#!/bin/sh\nprintf '{\"streams\":[{\"codec_type\":\"audio\"}],\"format\":{\"duration\":\"3.5\"}}'\n"
	if err := os.WriteFile(probeBin, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake ffprobe: %v", err)
	}

	audio := filepath.Join(base, "dawn.mp3")
	if err := os.WriteFile(audio, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	cfgContent := fmt.Sprintf(`[paths]
output_dir = %q
staging_dir = %q
log_dir = %q
api_bind = "127.0.0.1:0"

[tools]
ffprobe = %q
`,
		filepath.Join(base, "output"),
		filepath.Join(base, "staging"),
		filepath.Join(base, "logs"),
		probeBin,
	)
	cfgPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(cfgPath, []byte(cfgContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	manifest := filepath.Join(base, "story.toml")
	manifestBody := fmt.Sprintf(`title = "Probe Story"

[[scenes]]
title = "Dawn"
image = "/assets/dawn.png"
audio = %q
`, audio)
	if err := os.WriteFile(manifest, []byte(manifestBody), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	if out, err := runCommand(t, "--config", cfgPath, "add", "--probe", manifest); err != nil {
		t.Fatalf("add --probe: %v (output %q)", err, out)
	}

	out, err := runCommand(t, "--config", cfgPath, "scenes", "1")
	if err != nil {
		t.Fatalf("scenes: %v", err)
	}
	if !strings.Contains(out, "3.5s") {
		t.Fatalf("expected probed duration in output %q", out)
	}
}
