// Package models defines the wire and timeline data structures for a session.
package models

// RequestInputType is the envelope type the agent uses to ask for a typed input.
const RequestInputType = "request_input"

// InputRequest is the agent-to-client envelope requesting a structured input.
// Label and Placeholder are optional display hints; kind-specific defaults
// apply when they are absent or empty.
type InputRequest struct {
	Type        string `json:"type"`
	InputType   string `json:"input_type"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// ChatMessage is a fully-formed chat message delivered by the transport.
// Timestamp is epoch milliseconds.
type ChatMessage struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Text      string `json:"text"`
	Origin    string `json:"origin"`
}

// TranscriptionSegment is a raw speech-to-text fragment from the transport.
// The same ID may arrive multiple times with interim text until IsFinal is true.
type TranscriptionSegment struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// TimelineMessage unifies chat and final transcription into one display shape.
// Immutable after creation.
type TimelineMessage struct {
	ID             string `json:"id"`
	Timestamp      int64  `json:"timestamp"`
	Text           string `json:"text"`
	OriginIsLocal  bool   `json:"originIsLocalUser"`
	OriginIdentity string `json:"originIdentity"`
}

// TimelineEvent is the downstream (Kafka) record for a timeline entry.
type TimelineEvent struct {
	EventType      string `json:"eventType"`
	SessionID      string `json:"sessionId"`
	MessageID      string `json:"messageId"`
	Timestamp      int64  `json:"timestamp"`
	Text           string `json:"text"`
	OriginIdentity string `json:"originIdentity"`
	OriginIsLocal  bool   `json:"originIsLocal"`
}

// InputSubmittedEvent is the downstream (Kafka) record for a submitted input.
// The raw value is not carried; downstream consumers only need the fact.
type InputSubmittedEvent struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	Kind      string `json:"kind"`
	Timestamp int64  `json:"timestamp"`
}
