package room

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"voice-assistant-session/internal/models"
	"voice-assistant-session/internal/observability/metrics"
)

// Envelope kinds on the websocket wire.
const (
	EnvelopeJoin          = "join"
	EnvelopeData          = "data"
	EnvelopeChat          = "chat"
	EnvelopeTranscription = "transcription"
)

// Envelope is the JSON frame exchanged with the room endpoint. Data carries
// the raw payload for kind=data (base64 on the wire); Chat and Segments carry
// the decoded forms for their kinds.
type Envelope struct {
	Kind     string                        `json:"kind"`
	Topic    string                        `json:"topic,omitempty"`
	From     string                        `json:"from,omitempty"`
	Reliable bool                          `json:"reliable,omitempty"`
	Data     []byte                        `json:"data,omitempty"`
	Chat     *models.ChatMessage           `json:"chat,omitempty"`
	Segments []models.TranscriptionSegment `json:"segments,omitempty"`
}

// WSConfig holds websocket room connection settings.
type WSConfig struct {
	URL          string
	Identity     string
	DialAttempts uint
	DialDelay    time.Duration
}

// WSRoom is a Room backed by a websocket connection to the external room
// endpoint. One read pump dispatches inbound envelopes to registered
// handlers; writes are serialized by a mutex.
type WSRoom struct {
	*handlerRegistry

	conn     *websocket.Conn
	identity string
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
	done    chan struct{}
}

// DialWS connects to the room endpoint with bounded retry and announces the
// local participant. The read pump starts immediately.
func DialWS(ctx context.Context, cfg WSConfig) (*WSRoom, error) {
	attempts := cfg.DialAttempts
	if attempts == 0 {
		attempts = 3
	}
	delay := cfg.DialDelay
	if delay == 0 {
		delay = time.Second
	}

	var conn *websocket.Conn
	err := retry.Do(
		func() error {
			c, _, dialErr := websocket.DefaultDialer.DialContext(ctx, cfg.URL, nil)
			if dialErr != nil {
				return dialErr
			}
			conn = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("url", cfg.URL).Msg("Room dial failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial room %s: %w", cfg.URL, err)
	}

	r := &WSRoom{
		handlerRegistry: newHandlerRegistry(),
		conn:            conn,
		identity:        cfg.Identity,
		logger:          log.With().Str("component", "room").Str("identity", cfg.Identity).Logger(),
		metrics:         metrics.DefaultMetrics,
		done:            make(chan struct{}),
	}

	if err := r.writeEnvelope(Envelope{Kind: EnvelopeJoin, From: cfg.Identity}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("announce join: %w", err)
	}

	go r.readPump()

	r.logger.Info().Str("url", cfg.URL).Msg("Joined room")
	return r, nil
}

// Publish sends a data envelope on the named topic.
func (r *WSRoom) Publish(ctx context.Context, topic string, payload []byte, opts PublishOptions) error {
	r.closeMu.Lock()
	closed := r.closed
	r.closeMu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := r.writeEnvelope(Envelope{
		Kind:     EnvelopeData,
		Topic:    topic,
		From:     r.identity,
		Reliable: opts.Reliable,
		Data:     payload,
	})
	r.metrics.RecordRoomPublish(topic, err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("publish on %s: %w", topic, err)
	}
	return nil
}

// LocalIdentity returns the local participant's identity.
func (r *WSRoom) LocalIdentity() string {
	return r.identity
}

// Close leaves the room. Idempotent.
func (r *WSRoom) Close() error {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return nil
	}
	r.closed = true
	r.closeMu.Unlock()

	close(r.done)
	return r.conn.Close()
}

// Done is closed when the read pump exits (connection lost or Close called).
// Callers use it to detect that this room instance is gone and a replacement
// must be dialed and re-bound.
func (r *WSRoom) Done() <-chan struct{} {
	return r.done
}

func (r *WSRoom) writeEnvelope(env Envelope) error {
	frame, err := json.Marshal(env)
	if err != nil {
		return err
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.conn.WriteMessage(websocket.TextMessage, frame)
}

// readPump reads envelopes until the connection drops. Malformed frames are
// logged and skipped; per-topic ordering follows the connection's FIFO reads.
func (r *WSRoom) readPump() {
	defer func() {
		r.closeMu.Lock()
		wasClosed := r.closed
		r.closed = true
		r.closeMu.Unlock()
		if !wasClosed {
			close(r.done)
			r.conn.Close()
		}
	}()

	for {
		_, frame, err := r.conn.ReadMessage()
		if err != nil {
			r.closeMu.Lock()
			closed := r.closed
			r.closeMu.Unlock()
			if !closed {
				r.logger.Error().Err(err).Msg("Room read failed, leaving room")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			r.logger.Error().Err(err).Msg("Dropping malformed room frame")
			r.metrics.RecordDecodeError("envelope")
			continue
		}

		switch env.Kind {
		case EnvelopeData:
			r.dispatchData(env.Topic, env.Data, env.From)
		case EnvelopeChat:
			if env.Chat == nil {
				r.logger.Error().Msg("Dropping chat envelope without body")
				r.metrics.RecordDecodeError("chat")
				continue
			}
			r.dispatchChat(*env.Chat)
		case EnvelopeTranscription:
			r.dispatchTranscription(env.Segments, env.From)
		case EnvelopeJoin:
			r.logger.Debug().Str("participant", env.From).Msg("Participant joined")
		default:
			r.logger.Debug().Str("kind", env.Kind).Msg("Ignoring unknown envelope kind")
		}
	}
}
