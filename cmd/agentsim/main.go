// Agent simulator. Connects to the room endpoint as the voice agent and
// emits the traffic the session service consumes: request_input envelopes,
// interim and final transcription segments, and chat messages.
package main

import (
	"encoding/json"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"voice-assistant-session/internal/models"
	"voice-assistant-session/internal/observability/logging"
	"voice-assistant-session/internal/room"
)

// Scripted agent turns: each utterance is spoken progressively (interims,
// then one final), mirroring a live transcriber.
var utterances = []struct {
	interims []string
	final    string
}{
	{
		interims: []string{"Hi, I can", "Hi, I can help with"},
		final:    "Hi, I can help with your account today",
	},
	{
		interims: []string{"Could you share", "Could you share your email"},
		final:    "Could you share your email so I can look you up?",
	},
}

func main() {
	url := flag.String("url", "ws://localhost:7880/session", "room websocket endpoint")
	identity := flag.String("identity", "agent", "agent participant identity")
	requestKind := flag.String("request", "email", "input kind to request (email or url)")
	delay := flag.Duration("delay", 400*time.Millisecond, "delay between emitted frames")
	flag.Parse()

	logging.Init(logging.Config{Level: "debug", Format: "console", TimeFormat: time.RFC3339})

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", *url).Msg("Failed to dial room")
	}
	defer conn.Close()

	send := func(env room.Envelope) {
		if err := conn.WriteJSON(env); err != nil {
			log.Fatal().Err(err).Msg("Write failed")
		}
		time.Sleep(*delay)
	}

	send(room.Envelope{Kind: room.EnvelopeJoin, From: *identity})

	// Speak the scripted utterances.
	for _, u := range utterances {
		segmentID := uuid.NewString()
		for _, text := range u.interims {
			send(room.Envelope{
				Kind:     room.EnvelopeTranscription,
				From:     *identity,
				Segments: []models.TranscriptionSegment{{ID: segmentID, Text: text, IsFinal: false}},
			})
		}
		send(room.Envelope{
			Kind:     room.EnvelopeTranscription,
			From:     *identity,
			Segments: []models.TranscriptionSegment{{ID: segmentID, Text: u.final, IsFinal: true}},
		})
	}

	// Drop a chat message alongside the speech.
	send(room.Envelope{
		Kind: room.EnvelopeChat,
		From: *identity,
		Chat: &models.ChatMessage{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UnixMilli(),
			Text:      "You can also type here if that is easier.",
			Origin:    *identity,
		},
	})

	// Ask for a structured input.
	topic := *requestKind + "_input"
	payload, _ := json.Marshal(models.InputRequest{
		Type:      models.RequestInputType,
		InputType: *requestKind,
	})
	send(room.Envelope{
		Kind:  room.EnvelopeData,
		Topic: topic,
		From:  *identity,
		Data:  payload,
	})

	log.Info().Str("kind", *requestKind).Msg("Requested input, waiting for the response")

	// Wait for the kind_submitted response and print it.
	deadline := time.Now().Add(5 * time.Minute)
	_ = conn.SetReadDeadline(deadline)
	for {
		var env room.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			log.Fatal().Err(err).Msg("Read failed before a response arrived")
		}
		if env.Kind != room.EnvelopeData || env.Topic != topic {
			continue
		}
		var body map[string]string
		if err := json.Unmarshal(env.Data, &body); err != nil {
			log.Warn().Err(err).Msg("Undecodable payload on input topic")
			continue
		}
		if body["type"] != *requestKind+"_submitted" {
			continue
		}
		log.Info().
			Str("from", env.From).
			Str("value", body[*requestKind]).
			Msg("Received submitted input")
		return
	}
}
