// Package audio provides audio format conversion and buffering for the
// real-time voice pipeline.
//
// The telephony leg carries G.711 mu-law audio (8 kHz, 8-bit, mono) as
// base64 payloads; STT providers want 16-bit linear PCM at 16 kHz inside a
// WAV container. This package converts between the three representations:
//
//   - mulaw.go: mu-law companding/expansion (8-bit <-> 16-bit linear)
//   - resample.go: linear-PCM sample rate conversion
//   - wav.go: WAV container framing and de-framing
//   - convert.go: the composed inbound/outbound conversion pipelines
//   - buffer.go: Accumulator, the per-call segment buffer
//
// All conversion functions are pure: they allocate their output and never
// modify their input.
package audio
