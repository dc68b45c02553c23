// Package llm provides chat-completion clients used to generate agent
// responses. Providers share the OpenAI-compatible wire format; Groq is
// the default primary for its low latency, with OpenAI as fallback.
package llm
