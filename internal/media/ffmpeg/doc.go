// Package ffmpeg wraps the ffmpeg binary for the three media operations the
// compositor needs: decoding narration audio to bus PCM, encoding raw surface
// frames into a fragmented MP4 stream, and muxing the captured video with the
// drained mix-bus audio into the final container.
//
// All subprocess launches flow through an overridable commandContext so tests
// can substitute a helper process instead of the real binary.
package ffmpeg
