// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "assistant_session"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Inbound data-channel metrics
	DataMessagesReceived *prometheus.CounterVec
	DataDecodeErrors     *prometheus.CounterVec
	DataShapeMismatches  *prometheus.CounterVec

	// Structured-input metrics
	PromptsShown         *prometheus.CounterVec
	InputSubmissions     *prometheus.CounterVec
	InputValidationFails *prometheus.CounterVec
	InputPublishFails    *prometheus.CounterVec
	PromptsDismissed     *prometheus.CounterVec

	// Timeline metrics
	ChatMessages      prometheus.Counter
	SegmentsInterim   prometheus.Counter
	SegmentsFinal     prometheus.Counter
	SegmentsDuplicate prometheus.Counter
	TimelineEntries   prometheus.Gauge

	// Room publish metrics
	RoomPublishTotal   *prometheus.CounterVec
	RoomPublishErrors  *prometheus.CounterVec
	RoomPublishLatency *prometheus.HistogramVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		DataMessagesReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_messages_received_total",
			Help:      "Total data-channel messages received, by topic",
		}, []string{"topic"}),
		DataDecodeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_decode_errors_total",
			Help:      "Total data-channel payloads dropped as undecodable",
		}, []string{"topic"}),
		DataShapeMismatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_shape_mismatches_total",
			Help:      "Total well-formed messages ignored as not matching the expected shape",
		}, []string{"topic"}),

		PromptsShown: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompts_shown_total",
			Help:      "Total structured-input prompts shown, by kind",
		}, []string{"kind"}),
		InputSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_submissions_total",
			Help:      "Total structured inputs submitted successfully, by kind",
		}, []string{"kind"}),
		InputValidationFails: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_validation_failures_total",
			Help:      "Total structured inputs rejected by client-side validation, by kind",
		}, []string{"kind"}),
		InputPublishFails: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_publish_failures_total",
			Help:      "Total structured-input responses the transport failed to send, by kind",
		}, []string{"kind"}),
		PromptsDismissed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompts_dismissed_total",
			Help:      "Total prompts dismissed without a submission, by kind",
		}, []string{"kind"}),

		ChatMessages: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Total chat messages ingested into the timeline",
		}),
		SegmentsInterim: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_segments_interim_total",
			Help:      "Total interim transcription segments discarded",
		}),
		SegmentsFinal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_segments_final_total",
			Help:      "Total final transcription segments promoted into the timeline",
		}),
		SegmentsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcription_segments_duplicate_total",
			Help:      "Total duplicate final segments dropped",
		}),
		TimelineEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "timeline_entries",
			Help:      "Current number of entries in the merged timeline",
		}),

		RoomPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_publish_total",
			Help:      "Total room publishes attempted, by topic",
		}, []string{"topic"}),
		RoomPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_publish_errors_total",
			Help:      "Total room publishes that failed, by topic",
		}, []string{"topic"}),
		RoomPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "room_publish_latency_seconds",
			Help:      "Room publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordDataReceived records a data-channel message received on a topic.
func (m *Metrics) RecordDataReceived(topic string) {
	m.DataMessagesReceived.WithLabelValues(topic).Inc()
}

// RecordDecodeError records a payload dropped as undecodable.
func (m *Metrics) RecordDecodeError(topic string) {
	m.DataDecodeErrors.WithLabelValues(topic).Inc()
}

// RecordShapeMismatch records a well-formed message ignored by a listener.
func (m *Metrics) RecordShapeMismatch(topic string) {
	m.DataShapeMismatches.WithLabelValues(topic).Inc()
}

// RecordPromptShown records a structured-input prompt becoming visible.
func (m *Metrics) RecordPromptShown(kind string) {
	m.PromptsShown.WithLabelValues(kind).Inc()
}

// RecordInputSubmitted records a validated input published to the agent.
func (m *Metrics) RecordInputSubmitted(kind string) {
	m.InputSubmissions.WithLabelValues(kind).Inc()
}

// RecordValidationFailure records an input rejected by validation.
func (m *Metrics) RecordValidationFailure(kind string) {
	m.InputValidationFails.WithLabelValues(kind).Inc()
}

// RecordInputPublishFailure records a response the transport failed to send.
func (m *Metrics) RecordInputPublishFailure(kind string) {
	m.InputPublishFails.WithLabelValues(kind).Inc()
}

// RecordPromptDismissed records a prompt closed without submitting.
func (m *Metrics) RecordPromptDismissed(kind string) {
	m.PromptsDismissed.WithLabelValues(kind).Inc()
}

// RecordChatMessage records a chat message ingested into the timeline.
func (m *Metrics) RecordChatMessage() {
	m.ChatMessages.Inc()
}

// RecordInterimSegment records an interim segment discarded.
func (m *Metrics) RecordInterimSegment() {
	m.SegmentsInterim.Inc()
}

// RecordFinalSegment records a final segment promoted into the timeline.
func (m *Metrics) RecordFinalSegment() {
	m.SegmentsFinal.Inc()
}

// RecordDuplicateSegment records a duplicate final segment dropped.
func (m *Metrics) RecordDuplicateSegment() {
	m.SegmentsDuplicate.Inc()
}

// SetTimelineSize records the current merged timeline length.
func (m *Metrics) SetTimelineSize(n int) {
	m.TimelineEntries.Set(float64(n))
}

// RecordRoomPublish records a room publish attempt.
func (m *Metrics) RecordRoomPublish(topic string, err error, latencySeconds float64) {
	m.RoomPublishTotal.WithLabelValues(topic).Inc()
	m.RoomPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.RoomPublishErrors.WithLabelValues(topic).Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
