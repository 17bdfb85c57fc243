package scene

import (
	"strings"
	"time"
)

// AssetStatus tracks the readiness of a generated scene resource.
type AssetStatus string

const (
	AssetPending AssetStatus = "pending"
	AssetReady   AssetStatus = "ready"
	AssetFailed  AssetStatus = "failed"
)

// ParseAssetStatus converts a string into a known AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, bool) {
	normalized := AssetStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case AssetPending, AssetReady, AssetFailed:
		return normalized, true
	}
	return "", false
}

// Scene is one image+narration unit with a planned display duration.
// Sequence fixes the display order; the compositor never reorders scenes.
type Scene struct {
	ID             int64
	ProjectID      int64
	Sequence       int
	Title          string
	Narration      string
	ImageRef       string
	ImageStatus    AssetStatus
	AudioRef       string
	AudioStatus    AssetStatus
	PlannedSeconds float64
	ActualSeconds  float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AudioReady reports whether the scene's narration asset is ready for playback.
func (s Scene) AudioReady() bool {
	return s.AudioStatus == AssetReady
}

// Eligible reports whether the scene can take part in a composition: image
// present, audio present, and audio marked ready.
func (s Scene) Eligible() bool {
	return strings.TrimSpace(s.ImageRef) != "" &&
		strings.TrimSpace(s.AudioRef) != "" &&
		s.AudioReady()
}
