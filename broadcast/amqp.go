package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// publisher is the part of *amqp091.Channel the sink uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPSink publishes one persistent message per hourly cost change.
type AMQPSink struct {
	mu         sync.Mutex // amqp channels are not safe for concurrent publish
	ch         publisher
	exchange   string
	routingKey string
	closeFn    func() error
}

// NewAMQPSink publishes on an already declared exchange.
func NewAMQPSink(ch publisher, exchange, routingKey string) *AMQPSink {
	return &AMQPSink{ch: ch, exchange: exchange, routingKey: routingKey}
}

// DialAMQP connects, declares a durable topic exchange and returns a sink
// that owns the connection.
func DialAMQP(url, exchange, routingKey string) (*AMQPSink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	s := NewAMQPSink(ch, exchange, routingKey)
	s.closeFn = func() error {
		ch.Close()
		return conn.Close()
	}
	return s, nil
}

func (s *AMQPSink) PublishHourlyCost(ctx context.Context, cost HourlyCost) error {
	body, err := cost.encode()
	if err != nil {
		return fmt.Errorf("marshal hourly cost: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.ch.PublishWithContext(ctx,
		s.exchange,
		s.routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         "hourly_cost.updated",
			Headers:      amqp091.Table{"owner": cost.Owner},
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Close releases the connection opened by DialAMQP.
func (s *AMQPSink) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
