// Package kafka connects the promoter to the build and promotion topics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"
	"time"
)

// MessageReader is the part of the kafka reader used by the consumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewReader creates the reader of the build-completion topic.
func NewReader(brokers []string, topic, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// RetryMaxInterval caps the delay between the attempts to handle a build event.
const RetryMaxInterval = 30 * time.Second

// NewConsumer creates a new instance of the build events consumer.
func NewConsumer(reader MessageReader, promoSvc app.PromotionSvc) Consumer {
	return Consumer{
		reader:   reader,
		promoSvc: promoSvc,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxInterval = RetryMaxInterval
			b.MaxElapsedTime = 0
			return b
		},
	}
}

// Consumer feeds the build-completion events to the promotions service.
type Consumer struct {
	reader     MessageReader
	promoSvc   app.PromotionSvc
	newBackOff func() backoff.BackOff
}

// Consume handles the events until the context is cancelled.
// A message is committed only after it is handled. Failed attempts are retried with a growing delay,
// except for the malformed or invalid events, which are logged and committed.
func (c Consumer) Consume(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.WrapContext(err, errors.Context{Path: "kafka.Consumer.Consume.FetchMessage"})
		}
		err = backoff.RetryNotify(
			func() error { return c.handle(ctx, msg) },
			backoff.WithContext(c.newBackOff(), ctx),
			func(err error, d time.Duration) {
				log.Warn().Err(err).Int64("offset", msg.Offset).Dur("retryIn", d).Msg("Build event is not handled, retrying")
			},
		)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Error().Err(err).Str("topic", msg.Topic).Int64("offset", msg.Offset).Msg("Invalid build event, skipped")
		}
		err = c.reader.CommitMessages(ctx, msg)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.WrapContext(err, errors.Context{
				Path:   "kafka.Consumer.Consume.CommitMessages",
				Params: errors.Params{"partition": msg.Partition, "offset": msg.Offset},
			})
		}
	}
}

// Close closes the reader.
func (c Consumer) Close() error {
	return c.reader.Close()
}

func (c Consumer) handle(ctx context.Context, msg kafkago.Message) error {
	var b app.Build
	err := json.Unmarshal(msg.Value, &b)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("%w: malformed build event; err=%v", errtype.ErrBadInput, err))
	}
	res, err := c.promoSvc.BuildCompleted(ctx, b)
	if err != nil {
		err = errors.WrapContext(err, errors.Context{
			Path:   "kafka.Consumer.handle.BuildCompleted",
			Params: errors.Params{"job": b.Job, "number": b.Number, "offset": msg.Offset},
		})
		if errors.Is(err, errtype.ErrBadInput) {
			return backoff.Permanent(err)
		}
		return err
	}
	log.Debug().Str("job", b.Job).Uint64("number", b.Number).Int("promotions", len(res)).Msg("Build event handled")
	return nil
}
