// Package room abstracts the external real-time communication room: the
// source of inbound data/chat/transcription notifications and the sink for
// outbound publishes. Implementations: an in-process room for tests and local
// simulation, and a websocket client for a remote room endpoint.
package room

import (
	"context"
	"errors"

	"voice-assistant-session/internal/models"
)

// ErrClosed is returned by Publish after the room has been closed.
var ErrClosed = errors.New("room is closed")

// PublishOptions controls delivery quality of service for a publish.
type PublishOptions struct {
	// Reliable requests confirmed delivery instead of best-effort.
	Reliable bool
}

// DataHandler receives a raw data payload published on a subscribed topic.
// from is the identity of the originating participant.
type DataHandler func(payload []byte, from string)

// ChatHandler receives a fully-formed chat message.
type ChatHandler func(msg models.ChatMessage)

// TranscriptionHandler receives a batch of transcription segments attributed
// to one participant.
type TranscriptionHandler func(segments []models.TranscriptionSegment, from string)

// UnbindFunc deregisters a previously registered handler. Safe to call more
// than once. Handlers registered on a room are keyed to that room instance;
// callers must re-register if the active room is replaced.
type UnbindFunc func()

// Room is one joined real-time session. Subscribe-and-publish only: no
// component owns or mutates the room beyond these operations.
type Room interface {
	// Publish sends payload on the named topic.
	Publish(ctx context.Context, topic string, payload []byte, opts PublishOptions) error

	// OnData registers a handler for data payloads on one topic.
	OnData(topic string, h DataHandler) UnbindFunc

	// OnChat registers a handler for chat messages.
	OnChat(h ChatHandler) UnbindFunc

	// OnTranscription registers a handler for transcription segment batches.
	OnTranscription(h TranscriptionHandler) UnbindFunc

	// LocalIdentity returns the local participant's identity.
	LocalIdentity() string

	// Close leaves the room and releases resources.
	Close() error
}
