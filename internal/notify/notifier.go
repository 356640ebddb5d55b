// Package notify publishes every change to the document store to an
// AMQP exchange.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/finance-tracker/backend/internal/store"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Publisher is the part of an AMQP channel used for publishing.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Notifier buffers changes and publishes them in the order they
// happened. The routing key is the resource, e.g. "expenses".
type Notifier struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	pub      Publisher
	exchange string
	changes  chan store.Change
	timeout  time.Duration
}

// Dial connects to the broker at url and declares a durable direct
// exchange plus a queue bound to it for all resources.
func Dial(url, exchange, queue string, buffer int) (*Notifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	n := New(channel, exchange, buffer)
	n.conn = conn
	n.channel = channel

	if err := n.setup(queue); err != nil {
		n.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return n, nil
}

// New returns a notifier that publishes with pub. buffer is the number
// of changes held while the broker is slow, changes beyond it are
// dropped.
func New(pub Publisher, exchange string, buffer int) *Notifier {
	return &Notifier{
		pub:      pub,
		exchange: exchange,
		changes:  make(chan store.Change, buffer),
		timeout:  5 * time.Second,
	}
}

func (n *Notifier) setup(queue string) error {
	err := n.channel.ExchangeDeclare(
		n.exchange, // name
		"direct",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if queue == "" {
		return nil
	}

	_, err = n.channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range []string{"entries", "expenses", "settings"} {
		if err := n.channel.QueueBind(queue, key, n.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue for %s: %w", key, err)
		}
	}

	return nil
}

// Enqueue queues a change for publishing. It never blocks, so it can be
// registered as broker listener directly.
func (n *Notifier) Enqueue(c store.Change) {
	select {
	case n.changes <- c:
	default:
		log.Warn().Str("path", c.Path).Str("operation", string(c.Operation)).Msg("notification buffer is full, dropping change")
	}
}

// Run publishes queued changes until ctx is done. Failed publishes are
// logged and not retried.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-n.changes:
			if err := n.publish(ctx, c); err != nil {
				log.Error().Err(err).Str("path", c.Path).Msg("could not publish change notification")
			}
		}
	}
}

func (n *Notifier) publish(ctx context.Context, c store.Change) error {
	msg := MessageFor(c)
	body, err := msg.JSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	err = n.pub.PublishWithContext(
		ctx,
		n.exchange,   // exchange
		msg.Resource, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Time,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log.Debug().Str("exchange", n.exchange).Str("resource", msg.Resource).Str("path", msg.Path).Msg("published change notification")
	return nil
}

// Close closes the channel and connection if the notifier dialed them.
func (n *Notifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}

	if n.conn != nil {
		return n.conn.Close()
	}

	return nil
}
