package compositor

import (
	"context"
	"fmt"

	"storyreel/internal/assets"
	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/mixbus"
	"storyreel/internal/scene"
	"storyreel/internal/surface"
)

// Renderer paints a scene's image onto the shared surface. A render failure
// is fatal to the composition.
type Renderer interface {
	Render(ctx context.Context, sc scene.Scene, surf *surface.Surface) error
}

// AudioFeeder decodes a scene's narration and mixes it onto the audio bus at
// the scene's timeline offset. A feed failure is non-fatal.
type AudioFeeder interface {
	Feed(ctx context.Context, sc scene.Scene, bus *mixbus.Bus, offsetSeconds float64) error
}

// imageRenderer fetches scene images through the asset fetcher and draws
// them under the surface's fit policy.
type imageRenderer struct {
	fetcher *assets.Fetcher
}

func (r *imageRenderer) Render(ctx context.Context, sc scene.Scene, surf *surface.Surface) error {
	img, err := r.fetcher.FetchImage(ctx, sc.ImageRef)
	if err != nil {
		return fmt.Errorf("%w: scene %d: %v", ErrImageLoad, sc.Sequence, err)
	}
	if err := surf.DrawImage(img); err != nil {
		return fmt.Errorf("%w: scene %d: %v", ErrImageLoad, sc.Sequence, err)
	}
	return nil
}

// pcmFeeder fetches narration audio, decodes it to bus PCM through ffmpeg,
// and mixes it in at the scene offset.
type pcmFeeder struct {
	fetcher      *assets.Fetcher
	ffmpegBinary string
	stagingDir   string
}

func (f *pcmFeeder) Feed(ctx context.Context, sc scene.Scene, bus *mixbus.Bus, offsetSeconds float64) error {
	path, cleanup, err := f.fetcher.FetchToFile(ctx, sc.AudioRef, f.stagingDir)
	if err != nil {
		return fmt.Errorf("%w: scene %d: %v", ErrAudioDecode, sc.Sequence, err)
	}
	defer cleanup()

	pcm, err := ffmpeg.DecodePCM(ctx, f.ffmpegBinary, path)
	if err != nil {
		return fmt.Errorf("%w: scene %d: %v", ErrAudioDecode, sc.Sequence, err)
	}
	if err := bus.MixAt(offsetSeconds, pcm); err != nil {
		return fmt.Errorf("%w: scene %d: %v", ErrAudioDecode, sc.Sequence, err)
	}
	return nil
}
