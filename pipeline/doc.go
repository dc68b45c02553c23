// Package pipeline orchestrates one voice-agent invocation: convert an
// accumulated telephony audio segment to recognition format, transcribe
// it, ground the utterance against the tenant's knowledge base, generate
// a reply, synthesize speech, and convert back to the telephony format.
//
// Stages run strictly in sequence; each provider-backed stage retries at
// most once against a configured fallback provider, bounding worst-case
// latency. Knowledge retrieval never fails an invocation — losing
// grounding is preferable to dropping the call.
package pipeline
