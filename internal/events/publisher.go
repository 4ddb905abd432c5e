// Package events publishes session events to Kafka for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"voice-assistant-session/internal/observability/metrics"
)

// Publisher publishes timeline and input events to separate Kafka topics.
// When disabled it runs in log-only mode.
type Publisher struct {
	writerTimeline *kafka.Writer
	writerInputs   *kafka.Writer
	principal      string
	topicTimeline  string
	topicInputs    string
	enabled        bool
	metrics        *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicTimeline string
	TopicInputs   string
	Principal     string
	Enabled       bool
}

// New creates a Kafka event publisher with separate topics for timeline
// entries and submitted inputs.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:     cfg.Principal,
			topicTimeline: cfg.TopicTimeline,
			topicInputs:   cfg.TopicInputs,
			enabled:       false,
			metrics:       m,
		}
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerTimeline := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicTimeline,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
		Transport:    transport,
	}

	writerInputs := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicInputs,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicTimeline", cfg.TopicTimeline).
		Str("topicInputs", cfg.TopicInputs).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerTimeline: writerTimeline,
		writerInputs:   writerInputs,
		principal:      cfg.Principal,
		topicTimeline:  cfg.TopicTimeline,
		topicInputs:    cfg.TopicInputs,
		enabled:        true,
		metrics:        m,
	}
}

// PublishTimeline publishes a timeline entry event.
func (p *Publisher) PublishTimeline(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerTimeline, p.topicTimeline, "timeline", key, event)
}

// PublishInput publishes an input-submitted event.
func (p *Publisher) PublishInput(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerInputs, p.topicInputs, "input", key, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerTimeline != nil {
		if e := p.writerTimeline.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing timeline writer")
			err = e
		}
	}
	if p.writerInputs != nil {
		if e := p.writerInputs.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing inputs writer")
			err = e
		}
	}
	return err
}
