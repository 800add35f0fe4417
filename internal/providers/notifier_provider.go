package providers

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"guildstore/internal/models"
	"guildstore/internal/structures"
)

const changeRoutingKey = "store.changed"

// NotifierProviderInterface forwards store change events to other processes.
type NotifierProviderInterface interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
	Close()
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AmqpNotifier struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
}

func NewNotifierProvider(conf *structures.Config, logger Logger) (NotifierProviderInterface, error) {
	if !conf.Notifier.Enabled {
		return &noopNotifier{}, nil
	}

	conn, err := amqp.Dial(conf.Notifier.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to notifier broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open notifier channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		conf.Notifier.Exchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", conf.Notifier.Exchange, err)
	}

	logger.Infof(TypeApp, "Change notifier publishing to exchange %s", conf.Notifier.Exchange)
	return &AmqpNotifier{conn: conn, channel: ch, exchange: conf.Notifier.Exchange}, nil
}

func (n *AmqpNotifier) Publish(ctx context.Context, event models.ChangeEvent) error {
	msg, err := encodeChangeEvent(event)
	if err != nil {
		return err
	}
	return n.channel.PublishWithContext(ctx, n.exchange, changeRoutingKey, false, false, msg)
}

func (n *AmqpNotifier) Close() {
	if n.channel != nil {
		_ = n.channel.Close()
	}
	if n.conn != nil {
		_ = n.conn.Close()
	}
}

func encodeChangeEvent(event models.ChangeEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode change event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    event.At.Time,
		Type:         string(event.Reason),
		Body:         body,
	}, nil
}

type noopNotifier struct{}

func (n *noopNotifier) Publish(_ context.Context, _ models.ChangeEvent) error { return nil }
func (n *noopNotifier) Close()                                                {}
