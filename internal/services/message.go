package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rentalhub/apiserver/internal/events"
	"github.com/rentalhub/apiserver/types"
)

// MessageRepository defines persistence operations for rental messages.
type MessageRepository interface {
	Create(ctx context.Context, message types.Message) (types.Message, error)
	ListByRental(ctx context.Context, rentalID int) ([]types.Message, error)
}

// EventPublisher delivers domain events to the configured broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) (string, error)
}

// MessageService encapsulates messaging between users and rental owners.
type MessageService struct {
	repo      MessageRepository
	rentals   RentalRepository
	publisher EventPublisher
}

// NewMessageService constructs a MessageService. publisher may be nil when no
// broker is configured; events are then skipped.
func NewMessageService(repo MessageRepository, rentals RentalRepository, publisher EventPublisher) *MessageService {
	return &MessageService{
		repo:      repo,
		rentals:   rentals,
		publisher: publisher,
	}
}

// Send stores a message from senderID about the given rental. The rental must
// exist (store.ErrNotFound otherwise). A message.created event is published
// best-effort: a broker failure is logged, never surfaced to the sender.
func (s *MessageService) Send(ctx context.Context, rentalID, senderID int, text string) (types.Message, error) {
	rental, err := s.rentals.Get(ctx, rentalID)
	if err != nil {
		return types.Message{}, fmt.Errorf("load rental %d: %w", rentalID, err)
	}

	message, err := s.repo.Create(ctx, types.Message{
		Message:  text,
		UserID:   senderID,
		RentalID: rental.ID,
	})
	if err != nil {
		return types.Message{}, err
	}

	s.publishCreated(ctx, message)
	return message, nil
}

// ListByRental returns all messages about a rental, oldest first.
func (s *MessageService) ListByRental(ctx context.Context, rentalID int) ([]types.Message, error) {
	if _, err := s.rentals.Get(ctx, rentalID); err != nil {
		return nil, fmt.Errorf("load rental %d: %w", rentalID, err)
	}
	return s.repo.ListByRental(ctx, rentalID)
}

func (s *MessageService) publishCreated(ctx context.Context, message types.Message) {
	if s.publisher == nil {
		return
	}

	payload := events.MessageCreated{
		MessageID: message.ID,
		RentalID:  message.RentalID,
		SenderID:  message.UserID,
	}
	if _, err := s.publisher.Publish(ctx, events.TypeMessageCreated, payload); err != nil {
		slog.Error("publish message event", "error", err, "message_id", message.ID)
	}
}
