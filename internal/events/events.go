package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rentalhub/apiserver/config"
)

// TypeMessageCreated marks events published after a rental message is stored.
const TypeMessageCreated = "message.created"

// MessageCreated is the payload of a TypeMessageCreated event. The notifier
// consumes it to alert the rental owner.
type MessageCreated struct {
	MessageID int `json:"message_id"`
	RentalID  int `json:"rental_id"`
	SenderID  int `json:"sender_id"`
}

// Event is a consumed notification. Type travels as a broker attribute so
// consumers can dispatch without decoding Data.
type Event struct {
	ID   string
	Type string
	Data []byte
}

// Handler processes one event. A non-nil error nacks the event for
// redelivery.
type Handler func(ctx context.Context, evt Event) error

// Bus publishes and consumes events on the single channel named in the
// broker config.
type Bus interface {
	Publish(ctx context.Context, eventType string, payload any) (string, error)
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}

// typeAttribute is the broker attribute carrying Event.Type.
const typeAttribute = "event_type"

// FromConfig constructs the configured bus. Returns (nil, nil) when the
// backend is "none" or unset; callers treat a nil Bus as events disabled.
func FromConfig(ctx context.Context, cfg config.BrokerConfig) (Bus, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		bus, err := newRabbitBus(cfg)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		return bus, nil
	case "pubsub":
		bus, err := newPubSubBus(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unknown broker backend %q", cfg.Backend)
	}
}

func encodePayload(eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return data, nil
}
