package inputs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"voice-assistant-session/internal/room"
)

func newBoundCollector(t *testing.T, kind Kind) (*Collector, *room.MemoryRoom) {
	t.Helper()
	r := room.NewMemoryRoom("local-user")
	c := NewCollector(kind)
	c.Bind(r)
	return c, r
}

func TestCollector_RequestShowsPrompt(t *testing.T) {
	c, r := newBoundCollector(t, EmailKind())

	r.DeliverData("email_input",
		[]byte(`{"type":"request_input","input_type":"email","label":"Work email","placeholder":"me@corp.com"}`),
		"agent")

	p := c.Prompt()
	if !p.Visible {
		t.Fatal("prompt should be visible after a matching request")
	}
	if p.Label != "Work email" || p.Placeholder != "me@corp.com" {
		t.Errorf("prompt should carry the request's hints, got %+v", p)
	}
}

func TestCollector_RequestWithoutHintsUsesDefaults(t *testing.T) {
	c, r := newBoundCollector(t, EmailKind())

	r.DeliverData("email_input", []byte(`{"type":"request_input","input_type":"email"}`), "agent")

	p := c.Prompt()
	if !p.Visible {
		t.Fatal("prompt should be visible")
	}
	if p.Label != "Enter your email" || p.Placeholder != "you@example.com" {
		t.Errorf("expected kind defaults, got %+v", p)
	}
}

func TestCollector_IgnoresMismatchedShape(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"wrong type", `{"type":"something_else","input_type":"email"}`},
		{"wrong input type", `{"type":"request_input","input_type":"url"}`},
		{"missing fields", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r := newBoundCollector(t, EmailKind())
			r.DeliverData("email_input", []byte(tt.payload), "agent")

			if p := c.Prompt(); p.Visible || p.Label != "" || p.Placeholder != "" {
				t.Errorf("mismatched message must not change state, got %+v", p)
			}
		})
	}
}

func TestCollector_DropsUndecodablePayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"not json", []byte("definitely not json")},
		{"truncated json", []byte(`{"type":"request_inp`)},
		{"not utf8", []byte{0xff, 0xfe, 0xfd}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r := newBoundCollector(t, EmailKind())
			// Must not panic and must not change state.
			r.DeliverData("email_input", tt.payload, "agent")

			if p := c.Prompt(); p.Visible {
				t.Errorf("undecodable payload must not change state, got %+v", p)
			}
		})
	}
}

func TestCollector_SubmitPublishesResponse(t *testing.T) {
	c, r := newBoundCollector(t, EmailKind())
	r.DeliverData("email_input", []byte(`{"type":"request_input","input_type":"email"}`), "agent")

	if err := c.Submit(context.Background(), "  user@example.com  "); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	published := r.Published()
	if len(published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(published))
	}
	msg := published[0]
	if msg.Topic != "email_input" {
		t.Errorf("expected topic email_input, got %s", msg.Topic)
	}
	if !msg.Reliable {
		t.Error("response must request confirmed delivery")
	}

	var body map[string]string
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["type"] != "email_submitted" || body["email"] != "user@example.com" {
		t.Errorf("unexpected response envelope: %v", body)
	}

	if p := c.Prompt(); p.Visible {
		t.Error("prompt should close after a successful submit")
	}
}

func TestCollector_SubmitInvalidValueSetsFieldError(t *testing.T) {
	c, r := newBoundCollector(t, EmailKind())
	r.DeliverData("email_input", []byte(`{"type":"request_input","input_type":"email"}`), "agent")

	err := c.Submit(context.Background(), "user@example")
	if !errors.Is(err, ErrEmailInvalid) {
		t.Fatalf("expected invalid-format error, got %v", err)
	}
	if len(r.Published()) != 0 {
		t.Error("validation failures must never publish")
	}

	p := c.Prompt()
	if !p.Visible || p.Err == "" {
		t.Errorf("prompt should stay open with a field error, got %+v", p)
	}

	// Distinct message for empty input.
	err = c.Submit(context.Background(), "   ")
	if !errors.Is(err, ErrRequired) {
		t.Fatalf("expected required error for empty input, got %v", err)
	}

	c.ClearError()
	if p := c.Prompt(); p.Err != "" {
		t.Errorf("ClearError should drop the field error, got %+v", p)
	}
}

func TestCollector_SubmitPublishFailureKeepsPromptOpen(t *testing.T) {
	c, r := newBoundCollector(t, URLKind())
	r.DeliverData("url_input", []byte(`{"type":"request_input","input_type":"url"}`), "agent")

	r.PublishErr = errors.New("transport says no")

	err := c.Submit(context.Background(), "https://example.com")
	if err == nil {
		t.Fatal("expected publish error to surface")
	}

	p := c.Prompt()
	if !p.Visible || p.Err == "" {
		t.Errorf("prompt should stay open with a generic error, got %+v", p)
	}

	// Manual resubmit succeeds once the transport recovers.
	r.PublishErr = nil
	if err := c.Submit(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if p := c.Prompt(); p.Visible {
		t.Error("prompt should close after the resubmit")
	}
}

func TestCollector_DismissHidesWithoutPublishing(t *testing.T) {
	c, r := newBoundCollector(t, EmailKind())
	r.DeliverData("email_input", []byte(`{"type":"request_input","input_type":"email"}`), "agent")

	c.Dismiss()

	if p := c.Prompt(); p.Visible {
		t.Error("prompt should hide on dismiss")
	}
	if len(r.Published()) != 0 {
		t.Error("dismiss must not publish")
	}
}

func TestCollector_UnbindStopsHandling(t *testing.T) {
	c, r := newBoundCollector(t, EmailKind())

	c.Unbind()
	r.DeliverData("email_input", []byte(`{"type":"request_input","input_type":"email"}`), "agent")

	if p := c.Prompt(); p.Visible {
		t.Error("events after Unbind must not change state")
	}

	if err := c.Submit(context.Background(), "user@example.com"); !errors.Is(err, ErrNotBound) {
		t.Errorf("expected ErrNotBound after Unbind, got %v", err)
	}
}

func TestCollector_RebindToReplacementRoom(t *testing.T) {
	c, first := newBoundCollector(t, EmailKind())

	second := room.NewMemoryRoom("local-user")
	c.Bind(second)

	// The old room instance no longer reaches the collector.
	first.DeliverData("email_input", []byte(`{"type":"request_input","input_type":"email"}`), "agent")
	if p := c.Prompt(); p.Visible {
		t.Error("old room events must not reach a rebound collector")
	}

	second.DeliverData("email_input", []byte(`{"type":"request_input","input_type":"email"}`), "agent")
	if p := c.Prompt(); !p.Visible {
		t.Error("new room events should reach the collector")
	}
}

func TestCollector_SubscribeSeesPromptChanges(t *testing.T) {
	c, r := newBoundCollector(t, EmailKind())

	var last Prompt
	unsubscribe := c.Subscribe(func(p Prompt) { last = p })
	defer unsubscribe()

	r.DeliverData("email_input", []byte(`{"type":"request_input","input_type":"email"}`), "agent")

	if !last.Visible {
		t.Error("subscriber should observe the prompt becoming visible")
	}
}
