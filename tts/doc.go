// Package tts provides text-to-speech services for the voice pipeline.
//
// The Service interface abstracts synthesis providers (ElevenLabs, OpenAI)
// behind a buffered request/response contract: the pipeline needs complete
// audio before converting it for the telephony leg, so synthesis streaming
// is not part of this interface. Implementations report the actual format
// and sample rate of the audio they return so the audio package can
// normalize it to 8 kHz mu-law.
package tts
