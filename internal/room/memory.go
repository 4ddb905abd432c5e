package room

import (
	"context"
	"sync"

	"voice-assistant-session/internal/models"
)

// PublishedMessage records one outbound publish made through a MemoryRoom.
type PublishedMessage struct {
	Topic    string
	Payload  []byte
	Reliable bool
}

// MemoryRoom is an in-process Room for tests and local simulation. Inbound
// events are injected with the Deliver* methods and dispatched synchronously
// to registered handlers, FIFO per call. Outbound publishes are recorded.
type MemoryRoom struct {
	*handlerRegistry

	mu       sync.Mutex
	identity string
	closed   bool

	published []PublishedMessage

	// PublishErr, when set, is returned by every Publish. Lets tests force
	// the transport-rejects-send path.
	PublishErr error
}

// NewMemoryRoom creates an in-process room with the given local identity.
func NewMemoryRoom(identity string) *MemoryRoom {
	return &MemoryRoom{
		handlerRegistry: newHandlerRegistry(),
		identity:        identity,
	}
}

// Publish records the outbound message.
func (r *MemoryRoom) Publish(_ context.Context, topic string, payload []byte, opts PublishOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.PublishErr != nil {
		return r.PublishErr
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	r.published = append(r.published, PublishedMessage{Topic: topic, Payload: cp, Reliable: opts.Reliable})
	return nil
}

// Published returns a copy of all recorded outbound publishes.
func (r *MemoryRoom) Published() []PublishedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PublishedMessage, len(r.published))
	copy(out, r.published)
	return out
}

// DeliverData dispatches a data payload on topic to registered handlers.
func (r *MemoryRoom) DeliverData(topic string, payload []byte, from string) {
	r.dispatchData(topic, payload, from)
}

// DeliverChat dispatches a chat message to registered handlers.
func (r *MemoryRoom) DeliverChat(msg models.ChatMessage) {
	r.dispatchChat(msg)
}

// DeliverTranscription dispatches a segment batch to registered handlers.
func (r *MemoryRoom) DeliverTranscription(segments []models.TranscriptionSegment, from string) {
	r.dispatchTranscription(segments, from)
}

// LocalIdentity returns the local participant's identity.
func (r *MemoryRoom) LocalIdentity() string {
	return r.identity
}

// Close marks the room closed. Idempotent.
func (r *MemoryRoom) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
