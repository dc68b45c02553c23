package audio

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func TestInboundToRecognition(t *testing.T) {
	// One 20ms telephony frame: 160 mu-law bytes.
	frame := make([]byte, 160)
	for i := range frame {
		frame[i] = 0xFF // mu-law silence
	}
	payload := base64.StdEncoding.EncodeToString(frame)

	wav, err := InboundToRecognition(payload, SampleRateRecognition)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pcm, rate, width, channels, err := UnwrapWAV(wav)
	if err != nil {
		t.Fatalf("output is not valid WAV: %v", err)
	}
	if rate != SampleRateRecognition || width != 16 || channels != 1 {
		t.Errorf("params = (%d, %d, %d), want (16000, 16, 1)", rate, width, channels)
	}
	// 160 mu-law samples -> 320 PCM bytes at 8k -> 640 bytes at 16k.
	if len(pcm) != 640 {
		t.Errorf("pcm length = %d, want 640", len(pcm))
	}
}

func TestInboundToRecognition_NoResample(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(make([]byte, 160))
	wav, err := InboundToRecognition(payload, SampleRateTelephony)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pcm, rate, _, _, err := UnwrapWAV(wav)
	if err != nil {
		t.Fatalf("output is not valid WAV: %v", err)
	}
	if rate != SampleRateTelephony || len(pcm) != 320 {
		t.Errorf("got rate=%d len=%d, want rate=8000 len=320", rate, len(pcm))
	}
}

func TestInboundToRecognition_BadBase64(t *testing.T) {
	_, err := InboundToRecognition("not!!valid!!base64", SampleRateRecognition)
	if err == nil {
		t.Fatal("expected error")
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %T", err)
	}
	if fe.Op != "decode-base64" {
		t.Errorf("op = %q, want decode-base64", fe.Op)
	}
}

func TestSynthesisToOutbound_WAV(t *testing.T) {
	pcm := rampPCM(240) // 10ms at 24kHz
	wav := WrapWAV(pcm, 24000, 16, 1)

	payload, err := SynthesisToOutbound(wav, SourceWAV, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mulaw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	// 240 samples at 24kHz resample to 80 samples at 8kHz, one byte each.
	if len(mulaw) != 80 {
		t.Errorf("mulaw length = %d, want 80", len(mulaw))
	}
}

func TestSynthesisToOutbound_RawPCM(t *testing.T) {
	pcm := rampPCM(160)
	payload, err := SynthesisToOutbound(pcm, SourcePCM, SampleRateRecognition)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mulaw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	if len(mulaw) != 80 {
		t.Errorf("mulaw length = %d, want 80", len(mulaw))
	}
}

func TestSynthesisToOutbound_RawPCMWithoutRate(t *testing.T) {
	_, err := SynthesisToOutbound(rampPCM(10), SourcePCM, 0)
	if !errors.Is(err, ErrRateRequired) {
		t.Errorf("expected ErrRateRequired, got %v", err)
	}
}

func TestSynthesisToOutbound_UnknownFormat(t *testing.T) {
	_, err := SynthesisToOutbound(rampPCM(10), SourceFormat("mp3"), 0)
	if err == nil {
		t.Fatal("expected error for unsupported source format")
	}
}

func TestDuration(t *testing.T) {
	// 160 mu-law bytes at 8kHz = 20ms.
	if d := Duration(make([]byte, 160), 8000, 1, 1); d != 20*time.Millisecond {
		t.Errorf("mu-law frame duration = %v, want 20ms", d)
	}
	// 32000 PCM16 bytes at 16kHz = 1s.
	if d := Duration(make([]byte, 32000), 16000, 2, 1); d != time.Second {
		t.Errorf("pcm duration = %v, want 1s", d)
	}
	if d := Duration(nil, 0, 0, 0); d != 0 {
		t.Errorf("degenerate duration = %v, want 0", d)
	}
}
