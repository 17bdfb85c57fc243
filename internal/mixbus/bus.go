// Package mixbus implements the shared audio endpoint scene narration is
// routed into for capture. The bus is a sample timeline: clips are mixed in
// at the wall-clock offset they start playing, gaps stay silent, and the
// recorder drains the mixed PCM once at stop.
package mixbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
)

// PCM format of the bus timeline. Matches the decode format produced by
// internal/media/ffmpeg.
const (
	SampleRate     = 44100
	Channels       = 2
	BytesPerSample = 2
	BytesPerSecond = SampleRate * Channels * BytesPerSample
)

// Bus is the mix endpoint. It outlives any single scene: the timeline driver
// opens it before the first scene and closes it when the job ends. Mixing is
// additive with saturation so overlapping narration tails degrade gracefully
// instead of wrapping.
type Bus struct {
	mu      sync.Mutex
	samples []int16
	closed  bool
}

// Open creates an empty bus.
func Open() *Bus {
	return &Bus{}
}

// MixAt mixes an s16le interleaved stereo clip into the timeline starting at
// the given offset in seconds. The timeline grows as needed; anything not
// covered by a clip remains silence.
func (b *Bus) MixAt(offsetSeconds float64, pcm []byte) error {
	if offsetSeconds < 0 {
		return fmt.Errorf("mixbus: negative offset %f", offsetSeconds)
	}
	if len(pcm)%BytesPerSample != 0 {
		return fmt.Errorf("mixbus: clip length %d not sample aligned", len(pcm))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("mixbus: mix after close")
	}

	start := frameIndex(offsetSeconds) * Channels
	clipSamples := len(pcm) / BytesPerSample
	if need := start + clipSamples; need > len(b.samples) {
		b.samples = append(b.samples, make([]int16, need-len(b.samples))...)
	}

	for i := 0; i < clipSamples; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*BytesPerSample:]))
		b.samples[start+i] = saturate(int32(b.samples[start+i]) + int32(sample))
	}
	return nil
}

// DurationSeconds returns the length of the mixed timeline so far.
func (b *Bus) DurationSeconds() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return float64(len(b.samples)/Channels) / SampleRate
}

// Drain returns the mixed timeline as s16le bytes, padded with silence up to
// limitSeconds and truncated beyond it. Narration that outruns the final
// scene's wait-out is therefore cut at the stop point rather than stretching
// the output.
func (b *Bus) Drain(limitSeconds float64) []byte {
	if limitSeconds < 0 {
		limitSeconds = 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	limit := frameIndex(limitSeconds) * Channels
	out := make([]byte, limit*BytesPerSample)
	n := limit
	if n > len(b.samples) {
		n = len(b.samples)
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(b.samples[i]))
	}
	return out
}

// Close releases the bus. Later mixes fail; Drain remains valid so the
// recorder can still assemble the final file during teardown.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

func frameIndex(seconds float64) int {
	return int(seconds * SampleRate)
}

func saturate(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
