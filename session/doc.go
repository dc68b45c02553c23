// Package session drives one phone call's lifecycle from its telephony
// media stream: resolve the tenant on stream start, accumulate inbound
// audio into segments, run each ready segment through the voice pipeline,
// and persist the transcript when the stream stops.
//
// Events for a single call arrive serialized by the transport, so a
// session's accumulator and conversation need no locking; the registry of
// live sessions is the only shared structure.
package session
