package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despesas/internal/model"
)

type fakeChannel struct {
	exchange, key string
	msg           amqp091.Publishing
	err           error
	closed        bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{ch: ch, exchange: "despesas", queue: "period_events"}
	e := NewPeriodEvent("run-1", model.Period{Municipality: "x", Year: 2026, Month: 1}, model.StateDone, 10, 2)

	require.NoError(t, p.Publish(context.Background(), e))

	assert.Equal(t, "despesas", ch.exchange)
	assert.Equal(t, "period_events", ch.key)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, "period.done", ch.msg.Type)
	assert.Equal(t, "run-1:x:2026-01", ch.msg.MessageId)

	var got PeriodEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, 10, got.Written)
	assert.Equal(t, 2, got.Skipped)
	assert.Equal(t, model.StateDone, got.State)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	p := &AMQPPublisher{ch: &fakeChannel{err: errors.New("channel closed")}, exchange: "e", queue: "q"}

	err := p.Publish(context.Background(), PeriodEvent{State: model.StateEmpty})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "publish period event")
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), PeriodEvent{}))
	assert.NoError(t, p.Close())
}
