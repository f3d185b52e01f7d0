package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"evidgate/pkg/requestcontext"
)

// KafkaRecorder publishes events to a Kafka topic for downstream pipelines.
// Produces are asynchronous; delivery failures are logged and dropped, in
// keeping with the sink's fire-and-forget contract.
type KafkaRecorder struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type kafkaEvent struct {
	ID         string            `json:"id"`
	Event      string            `json:"event"`
	Timestamp  time.Time         `json:"timestamp"`
	RequestID  string            `json:"request_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func NewKafkaRecorder(brokers []string, topic string, logger *slog.Logger) (*KafkaRecorder, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaRecorder{client: client, topic: topic, logger: logger}, nil
}

func (r *KafkaRecorder) Record(ctx context.Context, event string, attrs ...Attr) {
	attributes := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		attributes[attr.Key] = attr.Value
	}
	value, err := json.Marshal(kafkaEvent{
		ID:         uuid.NewString(),
		Event:      event,
		Timestamp:  requestcontext.Now(ctx),
		RequestID:  requestcontext.RequestID(ctx),
		Attributes: attributes,
	})
	if err != nil {
		r.warn(ctx, "encode event", err)
		return
	}

	record := &kgo.Record{Topic: r.topic, Key: []byte(event), Value: value}
	// Detach from the request context so in-flight produces survive the
	// request ending; the client flushes on Close.
	r.client.Produce(context.WithoutCancel(ctx), record, func(_ *kgo.Record, err error) {
		if err != nil {
			r.warn(ctx, "produce event", err)
		}
	})
}

// Close flushes pending produces and releases the client.
func (r *KafkaRecorder) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = r.client.Flush(ctx)
	r.client.Close()
}

func (r *KafkaRecorder) warn(ctx context.Context, msg string, err error) {
	if r.logger != nil {
		r.logger.WarnContext(ctx, msg, "error", err)
	}
}
