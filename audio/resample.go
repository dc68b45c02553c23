package audio

import "encoding/binary"

// Sample rates used on the two legs of a call.
const (
	SampleRateTelephony   = 8000  // G.711 narrowband, fixed by the telephony transport
	SampleRateRecognition = 16000 // preferred by Whisper-family STT models
)

const bytesPerSample = 2 // 16-bit linear PCM

// ResamplePCM16 converts 16-bit little-endian linear PCM from one sample
// rate to another using linear interpolation. When fromRate equals toRate
// the input is returned as a copy, unchanged.
func ResamplePCM16(input []byte, fromRate, toRate int) ([]byte, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, newFormatError("resample", ErrInvalidRate)
	}
	if len(input)%bytesPerSample != 0 {
		return nil, newFormatError("resample", ErrOddPCMLength)
	}

	if fromRate == toRate {
		out := make([]byte, len(input))
		copy(out, input)
		return out, nil
	}

	numIn := len(input) / bytesPerSample
	if numIn == 0 {
		return []byte{}, nil
	}
	numOut := int(float64(numIn) * float64(toRate) / float64(fromRate))
	if numOut == 0 {
		return []byte{}, nil
	}

	in := make([]int16, numIn)
	for i := range in {
		in[i] = int16(binary.LittleEndian.Uint16(input[i*bytesPerSample:]))
	}

	out := make([]byte, numOut*bytesPerSample)
	ratio := float64(fromRate) / float64(toRate)
	for i := 0; i < numOut; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)

		var sample int16
		if srcIdx >= numIn-1 {
			sample = in[numIn-1]
		} else {
			// Linear interpolation between adjacent samples.
			frac := srcPos - float64(srcIdx)
			s0 := float64(in[srcIdx])
			s1 := float64(in[srcIdx+1])
			sample = int16(s0 + frac*(s1-s0))
		}
		binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(sample))
	}

	return out, nil
}
