package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"snappoint/pkg/config"
	"snappoint/pkg/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DirectReplyTo is RabbitMQ's pseudo-queue for RPC replies.
const DirectReplyTo = "amq.rabbitmq.reply-to"

// channel is the subset of *amqp.Channel the client uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Handler serves one command received by Serve. The returned value is sent back
// to the caller when the message expects a reply.
type Handler func(ctx context.Context, cmd string, data json.RawMessage) (interface{}, error)

type Client struct {
	conn    *amqp.Connection
	channel channel
	logger  *logger.Logger
	timeout time.Duration

	publishMu sync.Mutex
	pendingMu sync.Mutex
	pending   map[string]chan []byte
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, name := range []string{cfg.FileQueue, cfg.SummaryQueue} {
		_, err = ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", name, err)
		}
	}

	client := newClient(ch, log, cfg.RPCTimeout)
	client.conn = conn
	if err := client.listenReplies(); err != nil {
		client.Close()
		return nil, err
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)
	return client, nil
}

func newClient(ch channel, log *logger.Logger, timeout time.Duration) *Client {
	return &Client{
		channel: ch,
		logger:  log,
		timeout: timeout,
		pending: make(map[string]chan []byte),
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// listenReplies must run before the first Request on the channel.
func (c *Client) listenReplies() error {
	msgs, err := c.channel.Consume(
		DirectReplyTo, // queue
		"",            // consumer
		true,          // auto-ack (required for direct reply-to)
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to consume replies: %w", err)
	}

	go func() {
		for msg := range msgs {
			c.deliver(msg.CorrelationId, msg.Body)
		}
	}()
	return nil
}

func (c *Client) deliver(correlationID string, body []byte) {
	c.pendingMu.Lock()
	ch, ok := c.pending[correlationID]
	if ok {
		delete(c.pending, correlationID)
	}
	c.pendingMu.Unlock()

	if !ok {
		c.logger.Warn("[RABBITMQ] Dropping reply with unknown correlation_id=%s", correlationID)
		return
	}
	ch <- body
}

func (c *Client) publish(ctx context.Context, queueName string, msg amqp.Publishing) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	return c.channel.PublishWithContext(ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		msg,
	)
}

// Publish emits a fire-and-forget event.
func (c *Client) Publish(ctx context.Context, queueName, cmd string, payload interface{}) error {
	body, err := encodeEnvelope(cmd, "", payload)
	if err != nil {
		return err
	}

	err = c.publish(ctx, queueName, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish cmd=%s to queue=%s: %v", cmd, queueName, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("[RABBITMQ] Published cmd=%s to queue=%s, message_size=%d bytes", cmd, queueName, len(body))
	return nil
}

// Request sends cmd and waits for the correlated reply, decoding its response into
// out. Without a deadline on ctx the client's RPC timeout applies.
func (c *Client) Request(ctx context.Context, queueName, cmd string, payload, out interface{}) error {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := uuid.New().String()
	body, err := encodeEnvelope(cmd, id, payload)
	if err != nil {
		return err
	}

	replyCh := make(chan []byte, 1)
	c.pendingMu.Lock()
	c.pending[id] = replyCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	err = c.publish(ctx, queueName, amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		CorrelationId: id,
		ReplyTo:       DirectReplyTo,
		Timestamp:     time.Now(),
	})
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to send request cmd=%s to queue=%s: %v", cmd, queueName, err)
		return fmt.Errorf("failed to send request: %w", err)
	}

	select {
	case reply := <-replyCh:
		return decodeReply(cmd, reply, out)
	case <-ctx.Done():
		c.logger.Warn("[RABBITMQ] Request cmd=%s correlation_id=%s abandoned: %v", cmd, id, ctx.Err())
		return fmt.Errorf("request %s: %w", cmd, ctx.Err())
	}
}

// Serve consumes queueName until ctx is cancelled or the delivery channel closes.
// Messages are acked after handling; malformed ones are rejected without requeue.
func (c *Client) Serve(ctx context.Context, queueName string, handler Handler) error {
	msgs, err := c.channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack (we'll manually ack after processing)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from queue: %s", queueName)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, msg, handler)
		}
	}
}

func (c *Client) handle(ctx context.Context, msg amqp.Delivery, handler Handler) {
	env, err := decodeEnvelope(msg.Body)
	if err != nil {
		c.logger.Error("[RABBITMQ] Rejecting malformed message: %v, body=%s", err, string(msg.Body))
		msg.Nack(false, false)
		return
	}

	response, handlerErr := handler(ctx, env.Pattern.Cmd, env.Data)
	if handlerErr != nil {
		c.logger.Warn("[RABBITMQ] Handler failed for cmd=%s: %v", env.Pattern.Cmd, handlerErr)
	}

	if msg.ReplyTo != "" {
		body, err := encodeReply(env.ID, response, handlerErr)
		if err != nil {
			c.logger.Error("[RABBITMQ] Failed to encode reply for cmd=%s: %v", env.Pattern.Cmd, err)
			body, _ = encodeReply(env.ID, nil, err)
		}
		err = c.publish(ctx, msg.ReplyTo, amqp.Publishing{
			ContentType:   "application/json",
			Body:          body,
			CorrelationId: msg.CorrelationId,
			Timestamp:     time.Now(),
		})
		if err != nil {
			c.logger.Error("[RABBITMQ] Failed to reply to cmd=%s: %v", env.Pattern.Cmd, err)
		}
	}

	msg.Ack(false)
}
