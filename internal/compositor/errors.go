package compositor

import "errors"

// Composition failures fall into a small taxonomy. Image, surface, and
// recorder failures abort the run; audio decode failures do not, the scene
// simply plays silent.
var (
	// ErrCompositionActive is returned when a compose request arrives while
	// another composition is already running.
	ErrCompositionActive = errors.New("a composition is already running")

	// ErrNoEligibleScenes is returned when filtering leaves nothing to
	// compose. No resources are allocated and the state stays idle.
	ErrNoEligibleScenes = errors.New("no eligible scenes")

	// ErrSurfaceUnavailable marks a failure to allocate the render surface.
	ErrSurfaceUnavailable = errors.New("render surface unavailable")

	// ErrImageLoad marks a scene image that could not be fetched or decoded.
	ErrImageLoad = errors.New("scene image load failed")

	// ErrAudioDecode marks narration audio that could not be decoded. It is
	// logged and the composition continues.
	ErrAudioDecode = errors.New("scene audio decode failed")

	// ErrRecorder marks a stream recorder failure at start, during capture,
	// or while assembling output.
	ErrRecorder = errors.New("recorder failure")
)
