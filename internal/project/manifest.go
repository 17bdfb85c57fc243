package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"storyreel/internal/scene"
)

// Manifest is the on-disk description of a project, ingested from a TOML or
// YAML file.
type Manifest struct {
	Title  string          `toml:"title" yaml:"title"`
	Aspect string          `toml:"aspect" yaml:"aspect"`
	Scenes []ManifestScene `toml:"scenes" yaml:"scenes"`
}

// ManifestScene is one scene entry in a manifest. Omitted seconds fall back
// to the configured default at composition time.
type ManifestScene struct {
	Title     string  `toml:"title" yaml:"title"`
	Narration string  `toml:"narration" yaml:"narration"`
	Image     string  `toml:"image" yaml:"image"`
	Audio     string  `toml:"audio" yaml:"audio"`
	Seconds   float64 `toml:"seconds" yaml:"seconds"`
}

// LoadManifest parses a manifest file. The format is chosen by extension:
// .toml, or .yaml/.yml.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("parse toml manifest: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("parse yaml manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", filepath.Ext(path))
	}

	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (m *Manifest) validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("manifest requires a title")
	}
	if len(m.Scenes) == 0 {
		return fmt.Errorf("manifest %q has no scenes", m.Title)
	}
	for i, sc := range m.Scenes {
		if sc.Seconds < 0 {
			return fmt.Errorf("scene %d: negative duration %f", i+1, sc.Seconds)
		}
	}
	return nil
}

// Ingest stores a manifest as a new project with its scenes. Scene resources
// referenced by the manifest are marked ready; scenes without a resource
// stay pending until one is attached.
func (s *Store) Ingest(ctx context.Context, manifest *Manifest) (*Project, error) {
	p, err := s.Create(ctx, manifest.Title, manifest.Aspect)
	if err != nil {
		return nil, err
	}

	for i, ms := range manifest.Scenes {
		sc := scene.Scene{
			ProjectID:      p.ID,
			Sequence:       i + 1,
			Title:          ms.Title,
			Narration:      ms.Narration,
			ImageRef:       ms.Image,
			AudioRef:       ms.Audio,
			PlannedSeconds: ms.Seconds,
		}
		if strings.TrimSpace(ms.Image) != "" {
			sc.ImageStatus = scene.AssetReady
		}
		if strings.TrimSpace(ms.Audio) != "" {
			sc.AudioStatus = scene.AssetReady
		}
		if _, err := s.AddScene(ctx, sc); err != nil {
			return nil, fmt.Errorf("ingest scene %d: %w", i+1, err)
		}
	}
	return p, nil
}
