package assets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"storyreel/internal/media/ffprobe"
	"storyreel/internal/scene"
)

const probeConcurrency = 4

// ProbeDurations fills the planned duration of scenes that omit one by
// inspecting their narration audio with ffprobe. Scenes that already carry a
// duration, or have no audio attached, are left untouched. Remote audio is
// downloaded into tempDir for the inspection and removed afterwards.
func (f *Fetcher) ProbeDurations(ctx context.Context, binary, tempDir string, scenes []scene.Scene) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(probeConcurrency)

	for i := range scenes {
		sc := &scenes[i]
		if sc.PlannedSeconds > 0 || strings.TrimSpace(sc.AudioRef) == "" {
			continue
		}
		group.Go(func() error {
			path, cleanup, err := f.FetchToFile(ctx, sc.AudioRef, tempDir)
			if err != nil {
				return fmt.Errorf("probe scene %d: %w", sc.Sequence, err)
			}
			defer cleanup()

			result, err := ffprobe.Inspect(ctx, binary, path)
			if err != nil {
				return fmt.Errorf("probe scene %d: %w", sc.Sequence, err)
			}
			if !result.HasAudioStream() {
				return fmt.Errorf("probe scene %d: %s carries no audio stream", sc.Sequence, sc.AudioRef)
			}
			sc.PlannedSeconds = result.DurationSeconds()
			return nil
		})
	}
	return group.Wait()
}
