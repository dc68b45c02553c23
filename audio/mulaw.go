package audio

const (
	mulawBias = 0x84
	mulawClip = 32635
)

// DecodeMulaw expands G.711 mu-law samples to 16-bit linear PCM
// (little-endian). Each input byte produces exactly two output bytes.
func DecodeMulaw(mulaw []byte) []byte {
	pcm := make([]byte, len(mulaw)*2)
	for i, u := range mulaw {
		sample := mulawToLinear(u)
		pcm[i*2] = byte(sample)
		pcm[i*2+1] = byte(uint16(sample) >> 8)
	}
	return pcm
}

// EncodeMulaw compresses 16-bit linear PCM (little-endian) to G.711 mu-law.
// Each input sample (two bytes) produces exactly one output byte.
// Returns ErrOddPCMLength if the input is not sample-aligned.
func EncodeMulaw(pcm []byte) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, newFormatError("encode-mulaw", ErrOddPCMLength)
	}
	mulaw := make([]byte, len(pcm)/2)
	for i := range mulaw {
		sample := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		mulaw[i] = linearToMulaw(sample)
	}
	return mulaw, nil
}

// mulawToLinear expands one mu-law byte to a 16-bit linear sample.
// Standard G.711 expansion: invert, split sign/exponent/mantissa,
// reconstruct around the 0x84 bias.
func mulawToLinear(u byte) int16 {
	u = ^u
	sign := u & 0x80
	exp := (u >> 4) & 0x07
	mant := u & 0x0F
	value := ((int32(mant) << 3) + mulawBias) << exp
	value -= mulawBias
	if sign != 0 {
		return int16(-value)
	}
	return int16(value)
}

// linearToMulaw compresses one 16-bit linear sample to a mu-law byte.
// The pair (mulawToLinear, linearToMulaw) is round-trip stable: every
// mu-law byte except negative zero (0x7F) re-encodes to itself, because
// expansion lands on the quantization interval value that compression
// maps back to the same segment and mantissa.
func linearToMulaw(sample int16) byte {
	var sign byte
	s := int32(sample)
	if s < 0 {
		s = -s
		sign = 0x80
	}
	if s > mulawClip {
		s = mulawClip
	}
	s += mulawBias

	exp := byte(7)
	for mask := int32(0x4000); s&mask == 0 && exp > 0; mask >>= 1 {
		exp--
	}
	mant := byte((s >> (exp + 3)) & 0x0F)
	return ^(sign | exp<<4 | mant)
}
