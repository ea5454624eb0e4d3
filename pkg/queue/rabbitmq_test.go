package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"snappoint/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key string
	msg amqp.Publishing
}

type fakeChannel struct {
	mu        sync.Mutex
	published []published
	onPublish func(key string, msg amqp.Publishing)
	consume   chan amqp.Delivery
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	f.published = append(f.published, published{key: key, msg: msg})
	hook := f.onPublish
	f.mu.Unlock()
	if hook != nil {
		go hook(key, msg)
	}
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.consume, nil
}

func (f *fakeChannel) Close() error { return nil }

func (f *fakeChannel) sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.published...)
}

type fakeAck struct {
	mu     sync.Mutex
	acked  int
	nacked int
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked++
	return nil
}

func (a *fakeAck) Nack(uint64, bool, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked++
	return nil
}

func (a *fakeAck) Reject(uint64, bool) error { return nil }

func TestPublish_WritesNestEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	client := newClient(ch, logger.NewNop(), time.Second)

	err := client.Publish(context.Background(), "summary_queue", "summary.post", map[string]string{"id": "p1"})
	require.NoError(t, err)

	sent := ch.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "summary_queue", sent[0].key)
	assert.Equal(t, uint8(amqp.Persistent), sent[0].msg.DeliveryMode)
	assert.JSONEq(t, `{"pattern":{"cmd":"summary.post"},"data":{"id":"p1"}}`, string(sent[0].msg.Body))
}

func TestRequest_ReceivesCorrelatedReply(t *testing.T) {
	ch := &fakeChannel{}
	client := newClient(ch, logger.NewNop(), time.Second)
	ch.onPublish = func(_ string, msg amqp.Publishing) {
		env, err := decodeEnvelope(msg.Body)
		if err != nil {
			return
		}
		reply, _ := encodeReply(env.ID, []string{"f1", "f2"}, nil)
		client.deliver(msg.CorrelationId, reply)
	}

	var out []string
	err := client.Request(context.Background(), "file_queue", "files.find", []string{"f1", "f2"}, &out)

	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, out)

	sent := ch.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, DirectReplyTo, sent[0].msg.ReplyTo)
	assert.NotEmpty(t, sent[0].msg.CorrelationId)
	assert.Empty(t, client.pending)
}

func TestRequest_RemoteError(t *testing.T) {
	ch := &fakeChannel{}
	client := newClient(ch, logger.NewNop(), time.Second)
	ch.onPublish = func(_ string, msg amqp.Publishing) {
		client.deliver(msg.CorrelationId, []byte(`{"id":"x","err":"file not found","isDisposed":true}`))
	}

	err := client.Request(context.Background(), "file_queue", "files.find", nil, nil)

	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "files.find", remote.Cmd)
	assert.Equal(t, "file not found", remote.Message)
}

func TestRequest_TimesOut(t *testing.T) {
	ch := &fakeChannel{}
	client := newClient(ch, logger.NewNop(), 20*time.Millisecond)

	err := client.Request(context.Background(), "file_queue", "files.find", nil, nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, client.pending)
}

func TestDeliver_UnknownCorrelationIsDropped(t *testing.T) {
	client := newClient(&fakeChannel{}, logger.NewNop(), time.Second)
	client.deliver("missing", []byte(`{}`))
	assert.Empty(t, client.pending)
}

func TestServe_RepliesAndAcks(t *testing.T) {
	deliveries := make(chan amqp.Delivery, 2)
	ch := &fakeChannel{consume: deliveries}
	client := newClient(ch, logger.NewNop(), time.Second)
	ack := &fakeAck{}

	body, _ := encodeEnvelope("files.find", "req-1", []string{"f1"})
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: body, ReplyTo: DirectReplyTo, CorrelationId: "corr-1"}
	deliveries <- amqp.Delivery{Acknowledger: ack, Body: []byte(`not json`)}
	close(deliveries)

	var gotCmd string
	var gotData json.RawMessage
	err := client.Serve(context.Background(), "file_queue", func(_ context.Context, cmd string, data json.RawMessage) (interface{}, error) {
		gotCmd, gotData = cmd, data
		return map[string]int{"count": 1}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "files.find", gotCmd)
	assert.JSONEq(t, `["f1"]`, string(gotData))
	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 1, ack.nacked)

	sent := ch.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, DirectReplyTo, sent[0].key)
	assert.Equal(t, "corr-1", sent[0].msg.CorrelationId)
	assert.JSONEq(t, `{"id":"req-1","response":{"count":1},"isDisposed":true}`, string(sent[0].msg.Body))
}

func TestServe_HandlerErrorIsReplied(t *testing.T) {
	deliveries := make(chan amqp.Delivery, 1)
	ch := &fakeChannel{consume: deliveries}
	client := newClient(ch, logger.NewNop(), time.Second)

	body, _ := encodeEnvelope("files.attach", "req-2", nil)
	deliveries <- amqp.Delivery{Acknowledger: &fakeAck{}, Body: body, ReplyTo: DirectReplyTo, CorrelationId: "corr-2"}
	close(deliveries)

	err := client.Serve(context.Background(), "file_queue", func(context.Context, string, json.RawMessage) (interface{}, error) {
		return nil, errors.New("boom")
	})
	require.NoError(t, err)

	sent := ch.sent()
	require.Len(t, sent, 1)
	assert.ErrorContains(t, decodeReply("files.attach", sent[0].msg.Body, nil), "boom")
}
