package ffmpeg

import (
	"encoding/binary"
	"fmt"
	"os"
)

// WriteWAV writes interleaved s16le stereo PCM at the bus sample rate to path
// as a canonical 44-byte-header WAV file.
func WriteWAV(path string, pcm []byte) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer file.Close()

	dataLen := uint32(len(pcm))
	header := make([]byte, 0, 44)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, 36+dataLen)
	header = append(header, "WAVE"...)
	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, 16)
	header = binary.LittleEndian.AppendUint16(header, 1) // PCM
	header = binary.LittleEndian.AppendUint16(header, Channels)
	header = binary.LittleEndian.AppendUint32(header, SampleRate)
	header = binary.LittleEndian.AppendUint32(header, BytesPerSecond)
	header = binary.LittleEndian.AppendUint16(header, Channels*BytesPerSample) // block align
	header = binary.LittleEndian.AppendUint16(header, BytesPerSample*8)        // bits per sample
	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, dataLen)

	if _, err := file.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if _, err := file.Write(pcm); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return file.Close()
}
