package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rentalhub/apiserver/internal/events"
	"github.com/rentalhub/apiserver/internal/store"
	"github.com/rentalhub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryMessageRepo struct {
	mu       sync.Mutex
	nextID   int
	messages []types.Message
}

func (r *memoryMessageRepo) Create(ctx context.Context, message types.Message) (types.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	message.ID = r.nextID
	r.messages = append(r.messages, message)
	return message, nil
}

func (r *memoryMessageRepo) ListByRental(ctx context.Context, rentalID int) ([]types.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	messages := make([]types.Message, 0)
	for _, message := range r.messages {
		if message.RentalID == rentalID {
			messages = append(messages, message)
		}
	}
	return messages, nil
}

type publishedEvent struct {
	eventType string
	payload   any
}

type fakePublisher struct {
	published []publishedEvent
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, eventType string, payload any) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, publishedEvent{eventType: eventType, payload: payload})
	return "evt-1", nil
}

func newMessageFixture(t *testing.T, publisher EventPublisher) (*MessageService, *memoryRentalRepo) {
	t.Helper()
	rentals := newMemoryRentalRepo()
	_, err := rentals.Create(context.Background(), types.Rental{Name: "Loft", OwnerID: 2})
	require.NoError(t, err)
	return NewMessageService(&memoryMessageRepo{}, rentals, publisher), rentals
}

func TestMessageService_SendPublishesEvent(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := newMessageFixture(t, publisher)

	message, err := svc.Send(context.Background(), 1, 5, "Is it still available?")
	require.NoError(t, err)
	assert.Equal(t, 5, message.UserID)
	assert.Equal(t, 1, message.RentalID)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.TypeMessageCreated, publisher.published[0].eventType)
	assert.Equal(t, events.MessageCreated{
		MessageID: message.ID,
		RentalID:  1,
		SenderID:  5,
	}, publisher.published[0].payload)
}

func TestMessageService_SendUnknownRental(t *testing.T) {
	publisher := &fakePublisher{}
	svc, _ := newMessageFixture(t, publisher)

	_, err := svc.Send(context.Background(), 42, 5, "hello?")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, publisher.published)
}

func TestMessageService_BrokerFailureIsNotSurfaced(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc, _ := newMessageFixture(t, publisher)

	message, err := svc.Send(context.Background(), 1, 5, "still there?")
	require.NoError(t, err)
	assert.NotZero(t, message.ID)
}

func TestMessageService_NilPublisher(t *testing.T) {
	svc, _ := newMessageFixture(t, nil)

	_, err := svc.Send(context.Background(), 1, 5, "no broker configured")
	assert.NoError(t, err)
}

func TestMessageService_ListByRental(t *testing.T) {
	svc, _ := newMessageFixture(t, nil)

	_, err := svc.Send(context.Background(), 1, 5, "first")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), 1, 6, "second")
	require.NoError(t, err)

	messages, err := svc.ListByRental(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Message)
	assert.Equal(t, "second", messages[1].Message)

	_, err = svc.ListByRental(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
