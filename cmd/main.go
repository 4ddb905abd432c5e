package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"voice-assistant-session/internal/app"
	"voice-assistant-session/internal/config"
	"voice-assistant-session/internal/events"
	httpapi "voice-assistant-session/internal/http"
	"voice-assistant-session/internal/room"
	"voice-assistant-session/internal/session"
)

func main() {
	// Local runs keep settings in a .env file; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Application start failed")
	}

	publisher := events.New(&events.Config{
		Enabled:       cfg.Kafka.Enabled,
		Brokers:       cfg.Kafka.Brokers,
		TopicTimeline: cfg.Kafka.TopicTimeline,
		TopicInputs:   cfg.Kafka.TopicInputs,
		Principal:     cfg.Kafka.Principal,
	})
	defer publisher.Close()

	rm, err := joinRoom(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to join room")
	}

	sess := session.New(rm, publisher)
	defer sess.Close()

	server := httpapi.NewServer(":"+cfg.Service.HTTPPort, httpapi.NewRouter(sess))
	server.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	// A dropped websocket room is rejoined and reattached; handlers are
	// keyed to one room instance, so a fresh Attach is required each time.
	for {
		var done <-chan struct{}
		if ws, ok := rm.(*room.WSRoom); ok {
			done = ws.Done()
		}

		select {
		case <-sig:
			shutdown(server, application)
			return
		case <-done:
			log.Warn().Msg("Room connection lost, rejoining")
			rm, err = joinRoom(cfg)
			if err != nil {
				log.Error().Err(err).Msg("Rejoin failed, shutting down")
				shutdown(server, application)
				return
			}
			sess.Attach(rm)
		}
	}
}

func joinRoom(cfg *config.Configuration) (room.Room, error) {
	if cfg.Room.URL == "" {
		log.Info().Msg("No room URL configured, using in-process room")
		return room.NewMemoryRoom(cfg.Room.Identity), nil
	}
	return room.DialWS(context.Background(), room.WSConfig{
		URL:          cfg.Room.URL,
		Identity:     cfg.Room.Identity,
		DialAttempts: cfg.Room.DialAttempts,
		DialDelay:    cfg.Room.DialDelay,
	})
}

func shutdown(server *httpapi.Server, application *app.Application) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	application.Shutdown()
}
