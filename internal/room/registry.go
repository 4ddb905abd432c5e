package room

import (
	"sync"

	"voice-assistant-session/internal/models"
)

// handlerRegistry implements the handler-registration surface of Room. Both
// room implementations embed it. Handlers are snapshotted under the lock but
// invoked outside it, so a handler may publish or unbind without deadlocking.
type handlerRegistry struct {
	mu     sync.Mutex
	nextID int

	data          map[string]map[int]DataHandler
	chat          map[int]ChatHandler
	transcription map[int]TranscriptionHandler
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{
		data:          make(map[string]map[int]DataHandler),
		chat:          make(map[int]ChatHandler),
		transcription: make(map[int]TranscriptionHandler),
	}
}

// OnData registers a data handler for one topic.
func (g *handlerRegistry) OnData(topic string, h DataHandler) UnbindFunc {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	if g.data[topic] == nil {
		g.data[topic] = make(map[int]DataHandler)
	}
	g.data[topic][id] = h
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.data[topic], id)
	}
}

// OnChat registers a chat handler.
func (g *handlerRegistry) OnChat(h ChatHandler) UnbindFunc {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	g.chat[id] = h
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.chat, id)
	}
}

// OnTranscription registers a transcription handler.
func (g *handlerRegistry) OnTranscription(h TranscriptionHandler) UnbindFunc {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	g.transcription[id] = h
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.transcription, id)
	}
}

func (g *handlerRegistry) dispatchData(topic string, payload []byte, from string) {
	g.mu.Lock()
	hs := make([]DataHandler, 0, len(g.data[topic]))
	for _, h := range g.data[topic] {
		hs = append(hs, h)
	}
	g.mu.Unlock()
	for _, h := range hs {
		h(payload, from)
	}
}

func (g *handlerRegistry) dispatchChat(msg models.ChatMessage) {
	g.mu.Lock()
	hs := make([]ChatHandler, 0, len(g.chat))
	for _, h := range g.chat {
		hs = append(hs, h)
	}
	g.mu.Unlock()
	for _, h := range hs {
		h(msg)
	}
}

func (g *handlerRegistry) dispatchTranscription(segments []models.TranscriptionSegment, from string) {
	g.mu.Lock()
	hs := make([]TranscriptionHandler, 0, len(g.transcription))
	for _, h := range g.transcription {
		hs = append(hs, h)
	}
	g.mu.Unlock()
	for _, h := range hs {
		h(segments, from)
	}
}
