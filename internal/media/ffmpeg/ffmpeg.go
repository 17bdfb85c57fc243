package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"storyreel/internal/services"
)

var commandContext = exec.CommandContext

// PCM format shared by the decode path, the mix bus, and the WAV writer.
const (
	SampleRate     = 44100
	Channels       = 2
	BytesPerSample = 2
	BytesPerSecond = SampleRate * Channels * BytesPerSample
)

// DecodePCM decodes an audio file into interleaved signed 16-bit little-endian
// stereo PCM at the bus sample rate.
func DecodePCM(ctx context.Context, binary, path string) ([]byte, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("decode pcm: empty path")
	}

	cmd := commandContext(ctx, binary,
		"-v", "error",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", "decode audio",
			strings.TrimSpace(stderr.String()), err)
	}
	return stdout.Bytes(), nil
}

// EncoderOptions configures a raw-frame encoding session.
type EncoderOptions struct {
	Binary    string
	Width     int
	Height    int
	FrameRate int
}

// FrameEncoder streams raw RGBA frames into an ffmpeg process that encodes
// them to a fragmented MP4 video stream. Encoded output is delivered as
// chunks through the callback supplied at start, in arrival order.
type FrameEncoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer

	pumpDone chan struct{}
	pumpErr  error

	mu       sync.Mutex
	finished bool
}

// StartFrameEncoder launches the encoding process. onChunk is invoked from the
// encoder's reader goroutine as encoded data becomes available; callers must
// treat it as concurrent with WriteFrame.
func StartFrameEncoder(ctx context.Context, opts EncoderOptions, onChunk func([]byte)) (*FrameEncoder, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("frame encoder: invalid dimensions %dx%d", opts.Width, opts.Height)
	}
	if opts.FrameRate <= 0 {
		return nil, fmt.Errorf("frame encoder: invalid frame rate %d", opts.FrameRate)
	}
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}

	cmd := commandContext(ctx, binary,
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.Itoa(opts.FrameRate),
		"-i", "-",
		"-an",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-movflags", "frag_keyframe+empty_moov",
		"-f", "mp4",
		"-",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("frame encoder stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("frame encoder stdout: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", "start encoder", "", err)
	}

	enc := &FrameEncoder{
		cmd:      cmd,
		stdin:    stdin,
		stderr:   stderr,
		pumpDone: make(chan struct{}),
	}

	go func() {
		defer close(enc.pumpDone)
		buf := make([]byte, 64*1024)
		for {
			n, readErr := stdout.Read(buf)
			if n > 0 && onChunk != nil {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				onChunk(chunk)
			}
			if readErr != nil {
				if !errors.Is(readErr, io.EOF) {
					enc.pumpErr = readErr
				}
				return
			}
		}
	}()

	return enc, nil
}

// WriteFrame submits one raw RGBA frame. The byte length must equal
// width*height*4 for the session's dimensions.
func (e *FrameEncoder) WriteFrame(frame []byte) error {
	if _, err := e.stdin.Write(frame); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "write frame",
			strings.TrimSpace(e.stderr.String()), err)
	}
	return nil
}

// Finish closes the frame stream and waits for the encoder to flush its
// remaining output. Safe to call once; later calls return the first result.
func (e *FrameEncoder) Finish() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished {
		return nil
	}
	e.finished = true

	closeErr := e.stdin.Close()
	<-e.pumpDone
	waitErr := e.cmd.Wait()

	if waitErr != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "finalize encoder",
			strings.TrimSpace(e.stderr.String()), waitErr)
	}
	if e.pumpErr != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "read encoder output", "", e.pumpErr)
	}
	return closeErr
}

// Mux combines an encoded video stream and a WAV narration track into one MP4
// container. Audio is re-encoded to AAC; video is copied as-is. The audio
// track is cut to the shorter stream so a decoded tail past the final scene's
// wait-out never lengthens the output.
func Mux(ctx context.Context, binary, videoPath, audioPath, outputPath string) error {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := commandContext(ctx, binary,
		"-v", "error",
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "mux output",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}
