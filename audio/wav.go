package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	wavHeaderSize = 44
	wavFormatPCM  = 1
)

// WrapWAV frames raw PCM data in a canonical 44-byte WAV header.
// sampleWidth is in bits per sample (16 for linear PCM).
func WrapWAV(pcm []byte, sampleRate, sampleWidth, channels int) []byte {
	dataSize := len(pcm)
	byteRate := sampleRate * channels * sampleWidth / 8
	blockAlign := channels * sampleWidth / 8

	wav := make([]byte, wavHeaderSize+dataSize)

	copy(wav[0:4], "RIFF")
	binary.LittleEndian.PutUint32(wav[4:8], uint32(36+dataSize))
	copy(wav[8:12], "WAVE")

	copy(wav[12:16], "fmt ")
	binary.LittleEndian.PutUint32(wav[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(wav[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(wav[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(wav[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(wav[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(wav[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(wav[34:36], uint16(sampleWidth))

	copy(wav[36:40], "data")
	binary.LittleEndian.PutUint32(wav[40:44], uint32(dataSize))
	copy(wav[44:], pcm)

	return wav
}

// UnwrapWAV extracts PCM data and format parameters from a WAV container.
// It tolerates extra chunks between "fmt " and "data" (LIST, fact, etc.),
// which some TTS providers emit. Returns the PCM bytes, sample rate,
// sample width in bits, and channel count.
func UnwrapWAV(wav []byte) (pcm []byte, sampleRate, sampleWidth, channels int, err error) {
	if len(wav) < wavHeaderSize ||
		string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, 0, 0, 0, newFormatError("unwrap-wav", ErrNotWAV)
	}

	var haveFmt bool
	offset := 12
	for offset+8 <= len(wav) {
		chunkID := string(wav[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[offset+4 : offset+8]))
		body := offset + 8
		if chunkSize < 0 || body+chunkSize > len(wav) {
			return nil, 0, 0, 0, newFormatError("unwrap-wav",
				fmt.Errorf("%w: truncated %q chunk", ErrNotWAV, chunkID))
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, 0, 0, newFormatError("unwrap-wav",
					fmt.Errorf("%w: short fmt chunk", ErrNotWAV))
			}
			format := binary.LittleEndian.Uint16(wav[body : body+2])
			if format != wavFormatPCM {
				return nil, 0, 0, 0, newFormatError("unwrap-wav",
					fmt.Errorf("%w: unsupported audio format %d", ErrNotWAV, format))
			}
			channels = int(binary.LittleEndian.Uint16(wav[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(wav[body+4 : body+8]))
			sampleWidth = int(binary.LittleEndian.Uint16(wav[body+14 : body+16]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, 0, 0, 0, newFormatError("unwrap-wav",
					fmt.Errorf("%w: data chunk before fmt", ErrNotWAV))
			}
			pcm = make([]byte, chunkSize)
			copy(pcm, wav[body:body+chunkSize])
			return pcm, sampleRate, sampleWidth, channels, nil
		}

		// Chunks are word-aligned; odd sizes carry a pad byte.
		offset = body + chunkSize + chunkSize%2
	}

	return nil, 0, 0, 0, newFormatError("unwrap-wav",
		fmt.Errorf("%w: missing data chunk", ErrNotWAV))
}
