// Package stt provides speech-to-text services for the voice pipeline.
//
// The Service interface abstracts Whisper-family transcription providers
// (Groq, OpenAI) so the pipeline can switch or fall back between them per
// tenant configuration. Implementations are thin HTTP clients: they never
// retry internally, leaving fallback decisions to the pipeline orchestrator.
package stt
