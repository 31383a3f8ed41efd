package kafka

import (
	"context"
	"encoding/json"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/go-errors-context"
	kafkago "github.com/segmentio/kafka-go"
	"time"
)

// MessageWriter is the part of the kafka writer used by the publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter creates the writer of the promotion events topic; messages with the same key share a partition.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}

// NewPublisher creates a new instance of the promotion events publisher.
func NewPublisher(writer MessageWriter) Publisher {
	return Publisher{writer: writer}
}

// Publisher publishes the promotion events keyed by the build ID.
type Publisher struct {
	writer MessageWriter
}

// Publish writes the event to the topic.
func (p Publisher) Publish(ctx context.Context, ev app.PromotionEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "kafka.Publisher.Publish.Marshal"})
	}
	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:     []byte(ev.Promotion.BuildID),
		Value:   value,
		Time:    ev.Time,
		Headers: []kafkago.Header{{Key: "type", Value: []byte(ev.Type)}},
	})
	return errors.WrapContext(err, errors.Context{
		Path:   "kafka.Publisher.Publish.WriteMessages",
		Params: errors.Params{"promotion": ev.Promotion.ID, "event": ev.Type},
	})
}

// Close flushes and closes the writer.
func (p Publisher) Close() error {
	return p.writer.Close()
}
