package audio

import (
	"encoding/base64"
	"time"
)

// SourceFormat identifies the framing of synthesized audio handed to
// SynthesisToOutbound.
type SourceFormat string

const (
	// SourceWAV means the audio carries its own WAV header.
	SourceWAV SourceFormat = "wav"
	// SourcePCM means the audio is raw 16-bit linear PCM; the caller must
	// supply the sample rate.
	SourcePCM SourceFormat = "pcm"
)

// InboundToRecognition converts a base64 mu-law telephony payload into WAV
// audio ready for an STT provider:
//
//	base64 decode -> mu-law expand -> resample to targetRate -> WAV wrap
//
// The telephony leg is fixed at 8 kHz; targetRate is the STT-preferred rate
// (typically SampleRateRecognition).
func InboundToRecognition(mulawBase64 string, targetRate int) ([]byte, error) {
	mulaw, err := base64.StdEncoding.DecodeString(mulawBase64)
	if err != nil {
		return nil, newFormatError("decode-base64", err)
	}
	return MulawToRecognition(mulaw, targetRate)
}

// MulawToRecognition is InboundToRecognition for already-decoded mu-law
// bytes, used when frames were base64-decoded as they arrived.
func MulawToRecognition(mulaw []byte, targetRate int) ([]byte, error) {
	pcm := DecodeMulaw(mulaw)

	if targetRate != SampleRateTelephony {
		var err error
		pcm, err = ResamplePCM16(pcm, SampleRateTelephony, targetRate)
		if err != nil {
			return nil, err
		}
	}

	return WrapWAV(pcm, targetRate, 16, 1), nil
}

// SynthesisToOutbound converts TTS provider output into the base64 mu-law
// format the telephony leg plays back:
//
//	unwrap (if WAV) -> resample to 8 kHz -> mu-law compress -> base64 encode
//
// sourceRate is ignored for SourceWAV (the container carries its own rate)
// and required for SourcePCM.
func SynthesisToOutbound(data []byte, format SourceFormat, sourceRate int) (string, error) {
	var pcm []byte
	var rate int

	switch format {
	case SourceWAV:
		var err error
		pcm, rate, _, _, err = UnwrapWAV(data)
		if err != nil {
			return "", err
		}
	case SourcePCM:
		if sourceRate <= 0 {
			return "", newFormatError("synthesis-to-outbound", ErrRateRequired)
		}
		pcm = data
		rate = sourceRate
	default:
		return "", newFormatError("synthesis-to-outbound", ErrNotWAV)
	}

	if rate != SampleRateTelephony {
		var err error
		pcm, err = ResamplePCM16(pcm, rate, SampleRateTelephony)
		if err != nil {
			return "", err
		}
	}

	mulaw, err := EncodeMulaw(pcm)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(mulaw), nil
}

// Duration reports the play time of raw audio data.
// sampleWidth is in bytes per sample (1 for mu-law, 2 for PCM16).
func Duration(data []byte, sampleRate, sampleWidth, channels int) time.Duration {
	if sampleRate <= 0 || sampleWidth <= 0 || channels <= 0 {
		return 0
	}
	samples := len(data) / (sampleWidth * channels)
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
