// Package timeline merges two independently-arriving streams — chat messages
// and final transcription segments — into one chronologically ordered
// timeline. Interim segments are discarded and duplicate finals are dropped
// by segment id.
package timeline

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"voice-assistant-session/internal/models"
	"voice-assistant-session/internal/observability/metrics"
	"voice-assistant-session/internal/room"
	"voice-assistant-session/internal/state"
)

// Aggregator owns the in-memory timeline for one session. All entries live
// for the lifetime of the aggregator; there is no backing store.
type Aggregator struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics

	// now stamps final segments at receipt; the transport supplies no
	// utterance timestamp. Injectable for tests.
	now func() time.Time

	mu            sync.Mutex
	localIdentity string
	transcripts   []models.TimelineMessage
	chats         []models.TimelineMessage
	arrivals      []models.TimelineMessage
	seenIDs       map[string]struct{}
	unbinds       []room.UnbindFunc

	// version bumps on every timeline change so consumers can re-read.
	version *state.Holder[uint64]
}

// NewAggregator creates an empty aggregator using the wall clock.
func NewAggregator() *Aggregator {
	return NewAggregatorWithClock(time.Now)
}

// NewAggregatorWithClock creates an aggregator with a custom clock.
func NewAggregatorWithClock(now func() time.Time) *Aggregator {
	return &Aggregator{
		logger:  log.With().Str("component", "timeline").Logger(),
		metrics: metrics.DefaultMetrics,
		now:     now,
		seenIDs: make(map[string]struct{}),
		version: state.NewHolder[uint64](0),
	}
}

// Bind subscribes the aggregator to r's chat and transcription streams and
// captures r's local identity for origin attribution. Any previous binding
// is released first.
func (a *Aggregator) Bind(r room.Room) {
	a.mu.Lock()
	for _, u := range a.unbinds {
		u()
	}
	a.unbinds = nil
	a.localIdentity = r.LocalIdentity()
	a.mu.Unlock()

	unbindChat := r.OnChat(a.AddChat)
	unbindTranscription := r.OnTranscription(a.AddTranscription)

	a.mu.Lock()
	a.unbinds = append(a.unbinds, unbindChat, unbindTranscription)
	a.mu.Unlock()
}

// Unbind deregisters all room handlers. Existing entries are kept.
func (a *Aggregator) Unbind() {
	a.mu.Lock()
	unbinds := a.unbinds
	a.unbinds = nil
	a.mu.Unlock()
	for _, u := range unbinds {
		u()
	}
}

// AddChat ingests a fully-formed chat message. The message's own id and
// timestamp are trusted; only id collisions with existing entries are
// rejected, keeping the timeline's id-uniqueness invariant.
func (a *Aggregator) AddChat(msg models.ChatMessage) {
	a.mu.Lock()
	if _, dup := a.seenIDs[msg.ID]; dup {
		a.mu.Unlock()
		a.logger.Debug().Str("id", msg.ID).Msg("Dropping chat message with duplicate id")
		return
	}
	a.seenIDs[msg.ID] = struct{}{}
	entry := models.TimelineMessage{
		ID:             msg.ID,
		Timestamp:      msg.Timestamp,
		Text:           msg.Text,
		OriginIsLocal:  msg.Origin == a.localIdentity,
		OriginIdentity: msg.Origin,
	}
	a.chats = append(a.chats, entry)
	a.arrivals = append(a.arrivals, entry)
	size := len(a.chats) + len(a.transcripts)
	a.mu.Unlock()

	a.metrics.RecordChatMessage()
	a.metrics.SetTimelineSize(size)
	a.bump()
}

// AddTranscription ingests one batch of segments attributed to a participant.
// Interim segments are discarded; a final is promoted at most once per
// segment id, stamped with the receipt time.
func (a *Aggregator) AddTranscription(segments []models.TranscriptionSegment, from string) {
	changed := false

	a.mu.Lock()
	for _, seg := range segments {
		if !seg.IsFinal {
			a.metrics.RecordInterimSegment()
			continue
		}
		if _, dup := a.seenIDs[seg.ID]; dup {
			a.metrics.RecordDuplicateSegment()
			continue
		}
		a.seenIDs[seg.ID] = struct{}{}
		entry := models.TimelineMessage{
			ID:             seg.ID,
			Timestamp:      a.now().UnixMilli(),
			Text:           seg.Text,
			OriginIsLocal:  from == a.localIdentity,
			OriginIdentity: from,
		}
		a.transcripts = append(a.transcripts, entry)
		a.arrivals = append(a.arrivals, entry)
		a.metrics.RecordFinalSegment()
		changed = true
	}
	size := len(a.chats) + len(a.transcripts)
	a.mu.Unlock()

	if changed {
		a.metrics.SetTimelineSize(size)
		a.bump()
	}
}

// Messages returns the merged timeline: all transcription entries followed
// by all chat entries, stable-sorted ascending by timestamp. Pure and
// idempotent — two calls on an unchanged aggregator return equal slices.
func (a *Aggregator) Messages() []models.TimelineMessage {
	a.mu.Lock()
	merged := make([]models.TimelineMessage, 0, len(a.transcripts)+len(a.chats))
	merged = append(merged, a.transcripts...)
	merged = append(merged, a.chats...)
	a.mu.Unlock()

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// ArrivalsSince returns accepted entries in ingestion order, skipping the
// first n. Downstream bridges use it as a delta cursor.
func (a *Aggregator) ArrivalsSince(n int) []models.TimelineMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n >= len(a.arrivals) {
		return nil
	}
	out := make([]models.TimelineMessage, len(a.arrivals)-n)
	copy(out, a.arrivals[n:])
	return out
}

// Len returns the number of timeline entries.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.transcripts) + len(a.chats)
}

// Subscribe registers fn to run after every timeline change.
func (a *Aggregator) Subscribe(fn func()) func() {
	return a.version.Subscribe(func(uint64) { fn() })
}

func (a *Aggregator) bump() {
	a.version.Update(func(v uint64) uint64 { return v + 1 })
}
