package session

import (
	"context"
	"testing"

	"voice-assistant-session/internal/events"
	"voice-assistant-session/internal/models"
	"voice-assistant-session/internal/room"
)

func newTestSession(t *testing.T) (*Session, *room.MemoryRoom) {
	t.Helper()
	r := room.NewMemoryRoom("local-user")
	s := New(r, events.New(&events.Config{Enabled: false}))
	t.Cleanup(func() { s.Close() })
	return s, r
}

func TestSession_WiresBuiltinKinds(t *testing.T) {
	s, _ := newTestSession(t)

	if _, ok := s.Collector("email"); !ok {
		t.Error("expected an email collector")
	}
	if _, ok := s.Collector("url"); !ok {
		t.Error("expected a url collector")
	}
	if _, ok := s.Collector("phone"); ok {
		t.Error("did not expect a phone collector")
	}
}

func TestSession_EndToEndInputExchange(t *testing.T) {
	s, r := newTestSession(t)

	r.DeliverData("email_input", []byte(`{"type":"request_input","input_type":"email"}`), "agent")

	c, _ := s.Collector("email")
	if !c.Prompt().Visible {
		t.Fatal("prompt should be visible after the agent's request")
	}

	if err := c.Submit(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if got := len(r.Published()); got != 1 {
		t.Errorf("expected 1 published response, got %d", got)
	}
}

func TestSession_TimelineAcrossSources(t *testing.T) {
	s, r := newTestSession(t)

	r.DeliverChat(models.ChatMessage{ID: "c1", Timestamp: 100, Text: "hello", Origin: "local-user"})
	r.DeliverTranscription([]models.TranscriptionSegment{{ID: "t1", Text: "hi back", IsFinal: true}}, "agent")

	msgs := s.Timeline()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 timeline entries, got %d", len(msgs))
	}
}

func TestSession_AttachReplacementRoom(t *testing.T) {
	s, first := newTestSession(t)

	second := room.NewMemoryRoom("local-user")
	s.Attach(second)

	first.DeliverChat(models.ChatMessage{ID: "c1", Timestamp: 100, Text: "stale", Origin: "peer"})
	second.DeliverChat(models.ChatMessage{ID: "c2", Timestamp: 100, Text: "live", Origin: "peer"})

	msgs := s.Timeline()
	if len(msgs) != 1 || msgs[0].ID != "c2" {
		t.Errorf("only the replacement room should feed the session, got %+v", msgs)
	}
}

func TestSession_CloseStopsIngestion(t *testing.T) {
	s, r := newTestSession(t)

	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	r.DeliverChat(models.ChatMessage{ID: "c1", Timestamp: 100, Text: "late", Origin: "peer"})
	if got := len(s.Timeline()); got != 0 {
		t.Errorf("events after Close must not change state, got %d entries", got)
	}
}
