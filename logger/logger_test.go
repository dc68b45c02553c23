package logger

import (
	"strings"
	"testing"
)

func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // substring that must survive
		gone  string // substring that must not survive
	}{
		{
			name:  "openai key",
			input: "auth failed for sk-abcdefghijklmnopqrstuvwxyz123456",
			want:  "sk-a***",
			gone:  "mnopqrstuvwxyz",
		},
		{
			name:  "groq key",
			input: "gsk_ABCDEFGHIJKLMNOPQRSTUVWX rejected",
			want:  "gsk_***",
			gone:  "MNOPQRSTUVWX",
		},
		{
			name:  "bearer token",
			input: "header Authorization: Bearer abc123def456",
			want:  "Bear***",
			gone:  "abc123def456",
		},
		{
			name:  "no sensitive data",
			input: "transcription completed in 420ms",
			want:  "transcription completed in 420ms",
			gone:  "***",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedactSensitiveData(tt.input)
			if !strings.Contains(got, tt.want) {
				t.Errorf("redacted output %q missing %q", got, tt.want)
			}
			if tt.gone != "" && strings.Contains(got, tt.gone) {
				t.Errorf("redacted output %q still contains %q", got, tt.gone)
			}
		})
	}
}

func TestDefaultLoggerInitialized(t *testing.T) {
	if DefaultLogger == nil {
		t.Fatal("DefaultLogger not initialized")
	}
}
