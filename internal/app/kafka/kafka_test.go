package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type readerStub struct {
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *readerStub) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *readerStub) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *readerStub) Close() error {
	return nil
}

type promotionSvcStub struct {
	app.PromotionSvc
	builds []app.Build
	errs   []error
	err    error
	onCall func(n int)
}

func (s *promotionSvcStub) BuildCompleted(_ context.Context, b app.Build) ([]app.Promotion, error) {
	s.builds = append(s.builds, b)
	if s.onCall != nil {
		s.onCall(len(s.builds))
	}
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return nil, s.err
}

func newTestConsumer(r MessageReader, svc app.PromotionSvc) Consumer {
	c := NewConsumer(r, svc)
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func TestConsumerCommitsHandledMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &readerStub{
		cancel: cancel,
		msgs: []kafkago.Message{
			{Offset: 1, Value: []byte(`{"job":"lib","number":7,"outcome":"SUCCESS","branch":"release/1.0"}`)},
			{Offset: 2, Value: []byte(`not json`)},
			{Offset: 3, Value: []byte(`{"job":"lib","number":8,"outcome":"unstable"}`)},
		},
	}
	svc := &promotionSvcStub{}

	err := newTestConsumer(r, svc).Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, r.committed)
	require.Len(t, svc.builds, 2)
	assert.Equal(t, uint64(7), svc.builds[0].Number)
	assert.Equal(t, "release/1.0", *svc.builds[0].Branch)
	assert.Equal(t, app.OutcomeUnstable, svc.builds[1].Outcome)
	assert.Nil(t, svc.builds[1].Branch)
}

func TestConsumerRetriesServiceErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &readerStub{
		cancel: cancel,
		msgs:   []kafkago.Message{{Offset: 41, Value: []byte(`{"job":"lib","number":7}`)}},
	}
	svc := &promotionSvcStub{errs: []error{errors.New("connection refused"), errors.New("connection refused")}}

	require.NoError(t, newTestConsumer(r, svc).Consume(ctx))
	assert.Len(t, svc.builds, 3)
	assert.Equal(t, []int64{41}, r.committed)
}

func TestConsumerDoesNotCommitUnhandledOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &readerStub{
		cancel: cancel,
		msgs:   []kafkago.Message{{Offset: 41, Value: []byte(`{"job":"lib","number":7}`)}},
	}
	svc := &promotionSvcStub{
		err: errors.New("connection refused"),
		onCall: func(n int) {
			if n == 2 {
				cancel()
			}
		},
	}

	require.NoError(t, newTestConsumer(r, svc).Consume(ctx))
	assert.GreaterOrEqual(t, len(svc.builds), 2)
	assert.Empty(t, r.committed)
}

func TestConsumerSkipsInvalidBuilds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &readerStub{
		cancel: cancel,
		msgs:   []kafkago.Message{{Offset: 1, Value: []byte(`{"number":7}`)}, {Offset: 2, Value: []byte(`{"job":"lib"}`)}},
	}
	svc := &promotionSvcStub{errs: []error{fmt.Errorf("%w: the build has no job", errtype.ErrBadInput)}}

	require.NoError(t, newTestConsumer(r, svc).Consume(ctx))
	assert.Len(t, svc.builds, 2)
	assert.Equal(t, []int64{1, 2}, r.committed)
}

type failingReader struct{ readerStub }

func (failingReader) FetchMessage(context.Context) (kafkago.Message, error) {
	return kafkago.Message{}, errors.New("broker unreachable")
}

func TestConsumerFetchError(t *testing.T) {
	err := newTestConsumer(&failingReader{}, &promotionSvcStub{}).Consume(context.Background())
	assert.Error(t, err)
}

type writerStub struct {
	msgs []kafkago.Message
}

func (w *writerStub) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *writerStub) Close() error {
	return nil
}

func TestPublisher(t *testing.T) {
	w := &writerStub{}
	ev := app.PromotionEvent{
		Type:      app.PromotionEventMatched,
		Promotion: app.Promotion{ID: 1, Process: "qa", BuildID: "lib#7", Status: app.PromotionStatusEnqueued},
		Time:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, NewPublisher(w).Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	m := w.msgs[0]
	assert.Equal(t, "lib#7", string(m.Key))
	assert.Equal(t, []kafkago.Header{{Key: "type", Value: []byte(app.PromotionEventMatched)}}, m.Headers)

	var got app.PromotionEvent
	require.NoError(t, json.Unmarshal(m.Value, &got))
	assert.Equal(t, ev, got)
}
