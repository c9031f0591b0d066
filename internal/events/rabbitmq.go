package events

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rentalhub/apiserver/config"
)

// rabbitBus delivers events through a single RabbitMQ queue, declared once
// at construction time.
type rabbitBus struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func newRabbitBus(cfg config.BrokerConfig) (*rabbitBus, error) {
	if strings.TrimSpace(cfg.RabbitMQ.URL) == "" {
		return nil, errors.New("url is required")
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		return nil, errors.New("channel is required")
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if cfg.RabbitMQ.PrefetchCount > 0 {
		if err := ch.Qos(cfg.RabbitMQ.PrefetchCount, 0, false); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}

	_, err = ch.QueueDeclare(
		cfg.Channel,
		cfg.RabbitMQ.QueueDurable,
		cfg.RabbitMQ.QueueAutoDelete,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &rabbitBus{conn: conn, channel: ch, queue: cfg.Channel}, nil
}

func (b *rabbitBus) Publish(ctx context.Context, eventType string, payload any) (string, error) {
	data, err := encodePayload(eventType, payload)
	if err != nil {
		return "", err
	}

	id := randomID()
	err = b.channel.PublishWithContext(ctx, "", b.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   id,
		Headers:     amqp.Table{typeAttribute: eventType},
		Body:        data,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (b *rabbitBus) Subscribe(ctx context.Context, handler Handler) error {
	tag := "notifier-" + randomID()
	deliveries, err := b.channel.Consume(b.queue, tag, false, false, false, false, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = b.channel.Cancel(tag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			evt := Event{
				ID:   delivery.MessageId,
				Type: headerString(delivery.Headers, typeAttribute),
				Data: delivery.Body,
			}
			if err := handler(ctx, evt); err != nil {
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (b *rabbitBus) Close() error {
	if b.channel != nil {
		_ = b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

func headerString(headers amqp.Table, key string) string {
	switch typed := headers[key].(type) {
	case string:
		return typed
	case []byte:
		return string(typed)
	case nil:
		return ""
	default:
		return fmt.Sprint(typed)
	}
}

func randomID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(buf[:])
}
