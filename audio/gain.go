package audio

import "math"

const (
	maxPCM16 = 32767
	// Gain is capped to avoid amplifying noise floors into clipping.
	maxNormalizeGain = 2.0
)

// RMS computes the root-mean-square level of 16-bit little-endian PCM.
func RMS(pcm []byte) float64 {
	samples := len(pcm) / bytesPerSample
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < samples; i++ {
		s := float64(int16(pcm[i*2]) | int16(pcm[i*2+1])<<8)
		sum += s * s
	}
	return math.Sqrt(sum / float64(samples))
}

// NormalizeVolume scales 16-bit PCM toward targetLevel (0..1 of full scale).
// Returns the input unchanged when it is silent or already sample-misaligned;
// normalization is a quality tweak, never a failure point.
func NormalizeVolume(pcm []byte, targetLevel float64) []byte {
	if len(pcm)%bytesPerSample != 0 {
		return pcm
	}
	current := RMS(pcm)
	if current == 0 {
		return pcm
	}

	gain := (maxPCM16 * targetLevel) / current
	if gain > maxNormalizeGain {
		gain = maxNormalizeGain
	}

	out := make([]byte, len(pcm))
	for i := 0; i < len(pcm); i += 2 {
		s := float64(int16(pcm[i]) | int16(pcm[i+1])<<8)
		scaled := s * gain
		if scaled > maxPCM16 {
			scaled = maxPCM16
		} else if scaled < -32768 {
			scaled = -32768
		}
		v := int16(scaled)
		out[i] = byte(v)
		out[i+1] = byte(uint16(v) >> 8)
	}
	return out
}
