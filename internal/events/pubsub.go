package events

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/rentalhub/apiserver/config"
	"google.golang.org/api/option"
)

// pubsubBus delivers events through a single Google Cloud Pub/Sub topic.
// The topic and the notifier subscription are created on first use if
// missing.
type pubsubBus struct {
	client       *pubsub.Client
	topic        *pubsub.Topic
	subscription string
}

func newPubSubBus(ctx context.Context, cfg config.BrokerConfig) (*pubsubBus, error) {
	if strings.TrimSpace(cfg.PubSub.ProjectID) == "" {
		return nil, errors.New("project id is required")
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		return nil, errors.New("channel is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.PubSub.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, err
	}

	topic, err := ensureTopic(ctx, client, cfg.Channel)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	suffix := cfg.PubSub.SubscriptionSuffix
	if suffix == "" {
		suffix = "notifier"
	}

	return &pubsubBus{
		client:       client,
		topic:        topic,
		subscription: cfg.Channel + "-" + suffix,
	}, nil
}

func (b *pubsubBus) Publish(ctx context.Context, eventType string, payload any) (string, error) {
	data, err := encodePayload(eventType, payload)
	if err != nil {
		return "", err
	}

	result := b.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{typeAttribute: eventType},
	})
	return result.Get(ctx)
}

func (b *pubsubBus) Subscribe(ctx context.Context, handler Handler) error {
	sub, err := ensureSubscription(ctx, b.client, b.subscription, b.topic)
	if err != nil {
		return err
	}

	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		evt := Event{
			ID:   msg.ID,
			Type: msg.Attributes[typeAttribute],
			Data: msg.Data,
		}
		if err := handler(ctx, evt); err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (b *pubsubBus) Close() error {
	b.topic.Stop()
	return b.client.Close()
}

func ensureTopic(ctx context.Context, client *pubsub.Client, name string) (*pubsub.Topic, error) {
	topic := client.Topic(name)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return client.CreateTopic(ctx, name)
	}
	return topic, nil
}

func ensureSubscription(ctx context.Context, client *pubsub.Client, name string, topic *pubsub.Topic) (*pubsub.Subscription, error) {
	sub := client.Subscription(name)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return client.CreateSubscription(ctx, name, pubsub.SubscriptionConfig{Topic: topic})
	}
	return sub, nil
}
