package inputs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"voice-assistant-session/internal/models"
	"voice-assistant-session/internal/observability/metrics"
	"voice-assistant-session/internal/room"
	"voice-assistant-session/internal/state"
)

// ErrNotBound is returned by Submit when the collector has no active room.
var ErrNotBound = errors.New("collector is not bound to a room")

// Prompt is the user-visible state of one structured-input exchange.
type Prompt struct {
	Visible     bool
	Label       string
	Placeholder string
	Err         string
}

// Collector runs the structured-input protocol for one kind. It listens on
// the kind's topic of the bound room, exposes the prompt as observable state,
// and publishes validated responses with confirmed delivery. Handlers are
// keyed to one room instance; rebinding after a room replacement is the
// caller's job.
type Collector struct {
	kind    Kind
	prompt  *state.Holder[Prompt]
	logger  zerolog.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	room       room.Room
	unbind     room.UnbindFunc
	submitHook func(kind string)
}

// NewCollector creates a collector for the given kind. It is inert until
// Bind is called.
func NewCollector(kind Kind) *Collector {
	return &Collector{
		kind:    kind,
		prompt:  state.NewHolder(Prompt{}),
		logger:  log.With().Str("component", "inputs").Str("kind", kind.Name).Logger(),
		metrics: metrics.DefaultMetrics,
	}
}

// Kind returns the collector's kind configuration.
func (c *Collector) Kind() Kind {
	return c.kind
}

// Prompt returns the current prompt state.
func (c *Collector) Prompt() Prompt {
	return c.prompt.Get()
}

// Subscribe registers fn to run after every prompt change.
func (c *Collector) Subscribe(fn func(Prompt)) func() {
	return c.prompt.Subscribe(fn)
}

// SetSubmitHook registers fn to run after every successful submission. Used
// to fan submissions out to downstream sinks; the submitted value itself is
// not passed on.
func (c *Collector) SetSubmitHook(fn func(kind string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitHook = fn
}

// Bind subscribes the collector to r's topic. Any previous binding is
// released first.
func (c *Collector) Bind(r room.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unbind != nil {
		c.unbind()
	}
	c.room = r
	c.unbind = r.OnData(c.kind.Topic, c.handleData)
}

// Unbind deregisters the topic handler and detaches from the room. The
// prompt state is left as-is.
func (c *Collector) Unbind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
	c.room = nil
}

// handleData decodes one inbound payload. Undecodable payloads are logged
// and dropped; well-formed messages for another listener are ignored
// silently — that is the topic multiplexing working, not an error.
func (c *Collector) handleData(payload []byte, from string) {
	c.metrics.RecordDataReceived(c.kind.Topic)

	if !utf8.Valid(payload) {
		c.logger.Error().Str("from", from).Msg("Dropping non-UTF-8 payload")
		c.metrics.RecordDecodeError(c.kind.Topic)
		return
	}

	var req models.InputRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.logger.Error().Err(err).Str("from", from).Msg("Dropping undecodable input request")
		c.metrics.RecordDecodeError(c.kind.Topic)
		return
	}

	if req.Type != models.RequestInputType || req.InputType != c.kind.Name {
		c.metrics.RecordShapeMismatch(c.kind.Topic)
		return
	}

	label := req.Label
	if label == "" {
		label = c.kind.DefaultLabel
	}
	placeholder := req.Placeholder
	if placeholder == "" {
		placeholder = c.kind.DefaultPlaceholder
	}

	c.prompt.Set(Prompt{Visible: true, Label: label, Placeholder: placeholder})
	c.metrics.RecordPromptShown(c.kind.Name)
	c.logger.Info().Str("from", from).Str("label", label).Msg("Input requested")
}

// Submit validates value and publishes the response envelope with confirmed
// delivery. On validation failure the prompt shows the field error and
// nothing is published. On publish failure the prompt stays open with a
// generic error so the user may resubmit; there is no automatic retry.
func (c *Collector) Submit(ctx context.Context, value string) error {
	value = strings.TrimSpace(value)

	if err := c.kind.Validate(value); err != nil {
		c.metrics.RecordValidationFailure(c.kind.Name)
		c.prompt.Update(func(p Prompt) Prompt {
			p.Err = err.Error()
			return p
		})
		return err
	}

	c.mu.Lock()
	r := c.room
	c.mu.Unlock()
	if r == nil {
		return ErrNotBound
	}

	payload, err := json.Marshal(map[string]string{
		"type":      c.kind.ResponseType,
		c.kind.Name: value,
	})
	if err != nil {
		return err
	}

	if err := r.Publish(ctx, c.kind.Topic, payload, room.PublishOptions{Reliable: true}); err != nil {
		c.logger.Error().Err(err).Msg("Failed to publish input response")
		c.metrics.RecordInputPublishFailure(c.kind.Name)
		c.prompt.Update(func(p Prompt) Prompt {
			p.Err = "failed to submit, please try again"
			return p
		})
		return err
	}

	c.prompt.Set(Prompt{})
	c.metrics.RecordInputSubmitted(c.kind.Name)
	c.logger.Info().Msg("Input submitted")

	c.mu.Lock()
	hook := c.submitHook
	c.mu.Unlock()
	if hook != nil {
		hook(c.kind.Name)
	}
	return nil
}

// ClearError drops the field error, keeping the rest of the prompt. Called
// when the user edits the value.
func (c *Collector) ClearError() {
	c.prompt.Update(func(p Prompt) Prompt {
		p.Err = ""
		return p
	})
}

// Dismiss hides the prompt without publishing anything.
func (c *Collector) Dismiss() {
	c.prompt.Set(Prompt{})
	c.metrics.RecordPromptDismissed(c.kind.Name)
}
