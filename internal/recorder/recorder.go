// Package recorder captures the shared surface as an encoded video stream
// while a composition runs, then assembles the finished file from the
// buffered video chunks and the drained audio bus.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/mixbus"
	"storyreel/internal/services"
)

// FrameSource provides pixel snapshots of the current frame. The surface
// satisfies this; tests substitute fixed frames.
type FrameSource interface {
	Snapshot(dst []byte) []byte
	Width() int
	Height() int
}

// Options configures one recording session.
type Options struct {
	FFmpegBinary string
	FrameRate    int
	StagingDir   string
	BaseName     string
	Logger       *slog.Logger
}

// Recorder samples a frame source at the configured frame rate on a
// background goroutine and feeds the raw frames to an encoder process.
// Encoded output accumulates in memory until Stop assembles the final file.
type Recorder struct {
	source FrameSource
	bus    *mixbus.Bus
	opts   Options
	logger *slog.Logger

	encoder *ffmpeg.FrameEncoder
	stop    chan struct{}
	done    chan struct{}

	mu       sync.Mutex
	chunks   [][]byte
	frameErr error
	stopped  bool
}

// Start launches the encoder process and the capture loop. The recorder
// samples source at opts.FrameRate until Stop or Abort is called.
func Start(ctx context.Context, source FrameSource, bus *mixbus.Bus, opts Options) (*Recorder, error) {
	if source == nil {
		return nil, fmt.Errorf("recorder: nil frame source")
	}
	if opts.FrameRate <= 0 {
		return nil, fmt.Errorf("recorder: invalid frame rate %d", opts.FrameRate)
	}
	if opts.StagingDir == "" {
		return nil, fmt.Errorf("recorder: staging directory not set")
	}
	if opts.BaseName == "" {
		opts.BaseName = "composition"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	r := &Recorder{
		source: source,
		bus:    bus,
		opts:   opts,
		logger: logger,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	encoder, err := ffmpeg.StartFrameEncoder(ctx, ffmpeg.EncoderOptions{
		Binary:    opts.FFmpegBinary,
		Width:     source.Width(),
		Height:    source.Height(),
		FrameRate: opts.FrameRate,
	}, r.appendChunk)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "recorder", "start encoder", "", err)
	}
	r.encoder = encoder

	go r.captureLoop()
	return r, nil
}

func (r *Recorder) appendChunk(chunk []byte) {
	r.mu.Lock()
	r.chunks = append(r.chunks, chunk)
	r.mu.Unlock()
}

// ChunkCount reports how many encoded chunks have arrived so far.
func (r *Recorder) ChunkCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

func (r *Recorder) captureLoop() {
	defer close(r.done)

	interval := time.Second / time.Duration(r.opts.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var frame []byte
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			frame = r.source.Snapshot(frame)
			if err := r.encoder.WriteFrame(frame); err != nil {
				r.mu.Lock()
				if r.frameErr == nil {
					r.frameErr = err
				}
				r.mu.Unlock()
				return
			}
		}
	}
}

// Stop ends capture, finalizes the encoder, and assembles the output file:
// the buffered video chunks are written out, the audio bus is drained to a
// WAV sized to audioLimitSeconds, and the two are muxed into one MP4 in the
// staging directory. It returns the path of the assembled file.
func (r *Recorder) Stop(ctx context.Context, audioLimitSeconds float64) (string, error) {
	if err := r.shutdown(); err != nil {
		return "", err
	}

	r.mu.Lock()
	chunks := r.chunks
	r.mu.Unlock()
	if len(chunks) == 0 {
		return "", services.Wrap(services.ErrExternalTool, "recorder", "assemble output",
			"encoder produced no data", nil)
	}

	videoPath := filepath.Join(r.opts.StagingDir, r.opts.BaseName+"-video.mp4")
	if err := writeChunks(videoPath, chunks); err != nil {
		return "", err
	}
	defer os.Remove(videoPath)

	audioPath := filepath.Join(r.opts.StagingDir, r.opts.BaseName+"-audio.wav")
	pcm := r.bus.Drain(audioLimitSeconds)
	if err := ffmpeg.WriteWAV(audioPath, pcm); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "recorder", "write audio track", "", err)
	}
	defer os.Remove(audioPath)

	outputPath := filepath.Join(r.opts.StagingDir, r.opts.BaseName+".mp4")
	if err := ffmpeg.Mux(ctx, r.opts.FFmpegBinary, videoPath, audioPath, outputPath); err != nil {
		return "", err
	}

	r.logger.Info("recording assembled",
		logging.String("path", outputPath),
		logging.Int("chunks", len(chunks)),
		logging.Float64("audio_seconds", audioLimitSeconds))
	return outputPath, nil
}

// Abort ends capture and releases the encoder without assembling output.
// Used on failure paths; errors from the encoder teardown are discarded.
func (r *Recorder) Abort() {
	_ = r.shutdown()
}

func (r *Recorder) shutdown() error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stop)
	<-r.done

	finishErr := r.encoder.Finish()

	r.mu.Lock()
	frameErr := r.frameErr
	r.mu.Unlock()
	if frameErr != nil {
		return frameErr
	}
	return finishErr
}

func writeChunks(path string, chunks [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "recorder", "write video track", "", err)
	}
	for _, chunk := range chunks {
		if _, err := f.Write(chunk); err != nil {
			f.Close()
			return services.Wrap(services.ErrExternalTool, "recorder", "write video track", "", err)
		}
	}
	if err := f.Close(); err != nil {
		return services.Wrap(services.ErrExternalTool, "recorder", "write video track", "", err)
	}
	return nil
}
