package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "LOG_LEVEL",
		"ROOM_URL", "ROOM_IDENTITY", "ROOM_DIAL_ATTEMPTS", "ROOM_DIAL_DELAY",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_TIMELINE",
		"KAFKA_TOPIC_INPUTS", "KAFKA_PRINCIPAL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	if cfg.Service.Principal != "svc-assistant-session" {
		t.Errorf("expected default principal 'svc-assistant-session', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default HTTP port '8080', got %s", cfg.Service.HTTPPort)
	}

	if cfg.Room.URL != "" {
		t.Errorf("expected empty default room URL, got %s", cfg.Room.URL)
	}
	if cfg.Room.Identity != "local-user" {
		t.Errorf("expected default identity 'local-user', got %s", cfg.Room.Identity)
	}
	if cfg.Room.DialAttempts != 3 {
		t.Errorf("expected default dial attempts 3, got %d", cfg.Room.DialAttempts)
	}
	if cfg.Room.DialDelay != time.Second {
		t.Errorf("expected default dial delay 1s, got %v", cfg.Room.DialDelay)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.TopicTimeline != "session.timeline.message" {
		t.Errorf("expected default timeline topic, got %s", cfg.Kafka.TopicTimeline)
	}
	if cfg.Kafka.TopicInputs != "session.input.submitted" {
		t.Errorf("expected default inputs topic, got %s", cfg.Kafka.TopicInputs)
	}

	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("ROOM_URL", "ws://rooms.internal:7880/session")
	os.Setenv("ROOM_IDENTITY", "participant-42")
	os.Setenv("ROOM_DIAL_ATTEMPTS", "5")
	os.Setenv("ROOM_DIAL_DELAY", "250ms")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	defer func() {
		os.Unsetenv("SERVICE_PRINCIPAL")
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("ROOM_URL")
		os.Unsetenv("ROOM_IDENTITY")
		os.Unsetenv("ROOM_DIAL_ATTEMPTS")
		os.Unsetenv("ROOM_DIAL_DELAY")
		os.Unsetenv("KAFKA_ENABLED")
		os.Unsetenv("KAFKA_BROKERS")
	}()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected HTTP port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Room.URL != "ws://rooms.internal:7880/session" {
		t.Errorf("unexpected room URL %s", cfg.Room.URL)
	}
	if cfg.Room.Identity != "participant-42" {
		t.Errorf("unexpected identity %s", cfg.Room.Identity)
	}
	if cfg.Room.DialAttempts != 5 {
		t.Errorf("expected dial attempts 5, got %d", cfg.Room.DialAttempts)
	}
	if cfg.Room.DialDelay != 250*time.Millisecond {
		t.Errorf("expected dial delay 250ms, got %v", cfg.Room.DialDelay)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("expected trimmed broker list, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	os.Setenv("ROOM_DIAL_ATTEMPTS", "not-a-number")
	os.Setenv("ROOM_DIAL_DELAY", "invalid")
	os.Setenv("KAFKA_ENABLED", "invalid")

	defer func() {
		os.Unsetenv("ROOM_DIAL_ATTEMPTS")
		os.Unsetenv("ROOM_DIAL_DELAY")
		os.Unsetenv("KAFKA_ENABLED")
	}()

	cfg := Load()

	if cfg.Room.DialAttempts != 3 {
		t.Errorf("expected default dial attempts on invalid input, got %d", cfg.Room.DialAttempts)
	}
	if cfg.Room.DialDelay != time.Second {
		t.Errorf("expected default dial delay on invalid input, got %v", cfg.Room.DialDelay)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled on invalid input")
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	os.Unsetenv("KAFKA_PRINCIPAL")

	defer os.Unsetenv("SERVICE_PRINCIPAL")

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}
