package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Report and feedback lifecycle events.
const (
	EventReportCreated       = "report.created"
	EventReportStatusChanged = "report.status_changed"
	EventReportResubmitted   = "report.resubmitted"
	EventReportUpdated       = "report.updated"
	EventFeedbackRequested   = "feedback.requested"
	EventFeedbackSubmitted   = "feedback.submitted"
)

// ReportEventProducer publishes report events (interface so tests can swap in a fake).
type ReportEventProducer interface {
	ProduceReportEvent(ctx context.Context, event, key string, payload map[string]interface{}) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes report events to a Kafka topic, keyed by report id.
type Producer struct {
	writer messageWriter
	topic  string
}

// NewProducer returns a producer. With no brokers or no topic every method is a no-op.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Enabled reports whether events are actually written.
func (p *Producer) Enabled() bool {
	return p.writer != nil
}

func (p *Producer) ProduceReportEvent(ctx context.Context, event, key string, payload map[string]interface{}) error {
	if p.writer == nil {
		return nil
	}
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("kafka: marshal %s: %w", event, err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: body}); err != nil {
		return fmt.Errorf("kafka: write %s: %w", event, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
