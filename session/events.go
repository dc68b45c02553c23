package session

// Telephony stream event types, in the order a call produces them.
const (
	EventConnected = "connected"
	EventStart     = "start"
	EventMedia     = "media"
	EventMark      = "mark"
	EventStop      = "stop"
)

// Event is one inbound telephony stream message. Only the payload matching
// the event type is populated.
type Event struct {
	Event     string        `json:"event"`
	StreamSID string        `json:"streamSid,omitempty"`
	Start     *StartPayload `json:"start,omitempty"`
	Media     *MediaPayload `json:"media,omitempty"`
	Mark      *MarkPayload  `json:"mark,omitempty"`
}

// StartPayload carries the stream and call identifiers.
type StartPayload struct {
	StreamSID string `json:"streamSid"`
	CallSID   string `json:"callSid"`
}

// MediaPayload carries one base64 mu-law audio frame.
type MediaPayload struct {
	Payload string `json:"payload"`
}

// MarkPayload acknowledges playback of a previously sent mark.
type MarkPayload struct {
	Name string `json:"name"`
}

// OutboundFrame is one message sent back over the media stream.
type OutboundFrame struct {
	Event     string        `json:"event"`
	StreamSID string        `json:"streamSid"`
	Media     *MediaPayload `json:"media,omitempty"`
	Mark      *MarkPayload  `json:"mark,omitempty"`
}

// Sink delivers outbound frames to the telephony leg.
type Sink interface {
	Send(frame OutboundFrame) error
}
