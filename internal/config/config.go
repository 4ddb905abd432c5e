// Package config loads service configuration from the environment with
// sensible defaults. Invalid values fall back to their defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceConfig identifies the service and its HTTP surface.
type ServiceConfig struct {
	Principal string
	HTTPPort  string
}

// RoomConfig holds connection settings for the external room endpoint.
// An empty URL selects the in-process room (local simulation mode).
type RoomConfig struct {
	URL          string
	Identity     string
	DialAttempts uint
	DialDelay    time.Duration
}

// KafkaConfig holds downstream event publishing settings.
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicTimeline string
	TopicInputs   string
	Principal     string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel string
}

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	Room          RoomConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads configuration from the environment.
func Load() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-assistant-session")

	return &Configuration{
		Service: ServiceConfig{
			Principal: principal,
			HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
		},
		Room: RoomConfig{
			URL:          envOrDefault("ROOM_URL", ""),
			Identity:     envOrDefault("ROOM_IDENTITY", "local-user"),
			DialAttempts: envOrDefaultUint("ROOM_DIAL_ATTEMPTS", 3),
			DialDelay:    envOrDefaultDuration("ROOM_DIAL_DELAY", time.Second),
		},
		Kafka: KafkaConfig{
			Enabled:       envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:       envOrDefaultSlice("KAFKA_BROKERS", nil),
			TopicTimeline: envOrDefault("KAFKA_TOPIC_TIMELINE", "session.timeline.message"),
			TopicInputs:   envOrDefault("KAFKA_TOPIC_INPUTS", "session.input.submitted"),
			Principal:     envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel: envOrDefault("LOG_LEVEL", "info"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return parsed
}

func envOrDefaultUint(key string, def uint) uint {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return def
	}
	return uint(parsed)
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return parsed
}

func envOrDefaultSlice(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
