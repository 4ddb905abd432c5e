// Package session wires one joined room to the timeline aggregator, the
// structured-input collectors, and the downstream event publisher.
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"voice-assistant-session/internal/events"
	"voice-assistant-session/internal/models"
	"voice-assistant-session/internal/room"
	"voice-assistant-session/internal/service/inputs"
	"voice-assistant-session/internal/service/timeline"
)

// Session owns the components of one active room session. Everything is
// in-memory and garbage-collected with the session.
type Session struct {
	ID         string
	Aggregator *timeline.Aggregator

	logger     zerolog.Logger
	publisher  *events.Publisher
	collectors map[string]*inputs.Collector

	mu          sync.Mutex
	room        room.Room
	cursor      int
	unsubscribe func()
}

// New assembles a session over r with the built-in input kinds bound. The
// publisher may be in log-only mode; the bridge publishes regardless and the
// publisher decides whether anything leaves the process.
func New(r room.Room, publisher *events.Publisher, kinds ...inputs.Kind) *Session {
	if len(kinds) == 0 {
		kinds = []inputs.Kind{inputs.EmailKind(), inputs.URLKind()}
	}

	s := &Session{
		ID:         uuid.NewString(),
		Aggregator: timeline.NewAggregator(),
		publisher:  publisher,
		collectors: make(map[string]*inputs.Collector, len(kinds)),
	}
	s.logger = log.With().Str("component", "session").Str("sessionId", s.ID).Logger()

	for _, kind := range kinds {
		c := inputs.NewCollector(kind)
		c.SetSubmitHook(s.onInputSubmitted)
		s.collectors[kind.Name] = c
	}

	s.Attach(r)
	s.unsubscribe = s.Aggregator.Subscribe(s.flushTimeline)

	s.logger.Info().Str("identity", r.LocalIdentity()).Msg("Session started")
	return s
}

// Attach binds every component to r, releasing bindings to any previous
// room. Call again with a fresh room after a reconnect.
func (s *Session) Attach(r room.Room) {
	s.mu.Lock()
	s.room = r
	s.mu.Unlock()

	s.Aggregator.Bind(r)
	for _, c := range s.collectors {
		c.Bind(r)
	}
}

// Collector returns the collector for one input kind.
func (s *Session) Collector(kind string) (*inputs.Collector, bool) {
	c, ok := s.collectors[kind]
	return c, ok
}

// Kinds returns the names of the configured input kinds, sorted.
func (s *Session) Kinds() []string {
	names := make([]string, 0, len(s.collectors))
	for name := range s.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Timeline returns the merged, ordered timeline.
func (s *Session) Timeline() []models.TimelineMessage {
	return s.Aggregator.Messages()
}

// Close detaches every component from the room and leaves it.
func (s *Session) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.Aggregator.Unbind()
	for _, c := range s.collectors {
		c.Unbind()
	}

	s.mu.Lock()
	r := s.room
	s.room = nil
	s.mu.Unlock()

	s.logger.Info().Msg("Session closed")
	if r != nil {
		return r.Close()
	}
	return nil
}

// flushTimeline forwards newly accepted timeline entries downstream. Publish
// failures are logged by the publisher and do not affect the timeline.
func (s *Session) flushTimeline() {
	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()

	fresh := s.Aggregator.ArrivalsSince(cursor)
	if len(fresh) == 0 {
		return
	}

	ctx := context.Background()
	for _, entry := range fresh {
		ev := models.TimelineEvent{
			EventType:      "session.timeline.message",
			SessionID:      s.ID,
			MessageID:      entry.ID,
			Timestamp:      entry.Timestamp,
			Text:           entry.Text,
			OriginIdentity: entry.OriginIdentity,
			OriginIsLocal:  entry.OriginIsLocal,
		}
		if err := s.publisher.PublishTimeline(ctx, s.ID, ev); err != nil {
			s.logger.Error().Err(err).Str("messageId", entry.ID).Msg("Failed to publish timeline event")
		}
	}

	s.mu.Lock()
	s.cursor = cursor + len(fresh)
	s.mu.Unlock()
}

func (s *Session) onInputSubmitted(kind string) {
	ev := models.InputSubmittedEvent{
		EventType: "session.input.submitted",
		SessionID: s.ID,
		Kind:      kind,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := s.publisher.PublishInput(context.Background(), s.ID, ev); err != nil {
		s.logger.Error().Err(err).Str("kind", kind).Msg("Failed to publish input event")
	}
}
