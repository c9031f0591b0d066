package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rentalhub/apiserver/internal/store"
	"github.com/rentalhub/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRentalRepo struct {
	mu      sync.Mutex
	nextID  int
	rentals map[int]types.Rental
}

func newMemoryRentalRepo() *memoryRentalRepo {
	return &memoryRentalRepo{rentals: make(map[int]types.Rental)}
}

func (r *memoryRentalRepo) List(ctx context.Context) ([]types.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rentals := make([]types.Rental, 0, len(r.rentals))
	for id := 1; id <= r.nextID; id++ {
		if rental, ok := r.rentals[id]; ok {
			rentals = append(rentals, rental)
		}
	}
	return rentals, nil
}

func (r *memoryRentalRepo) Get(ctx context.Context, id int) (types.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental, ok := r.rentals[id]
	if !ok {
		return types.Rental{}, store.ErrNotFound
	}
	return rental, nil
}

func (r *memoryRentalRepo) Create(ctx context.Context, rental types.Rental) (types.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rental.ID = r.nextID
	r.rentals[rental.ID] = rental
	return rental, nil
}

func (r *memoryRentalRepo) Update(ctx context.Context, rental types.Rental) (types.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rentals[rental.ID]
	if !ok {
		return types.Rental{}, store.ErrNotFound
	}
	existing.Name = rental.Name
	existing.Surface = rental.Surface
	existing.Price = rental.Price
	existing.Description = rental.Description
	r.rentals[rental.ID] = existing
	return rental, nil
}

type fakeObjectStore struct {
	keys []string
	data map[string][]byte
	err  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{data: make(map[string][]byte)}
}

func (s *fakeObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if s.err != nil {
		return s.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.keys = append(s.keys, key)
	s.data[key] = body
	return nil
}

func TestRentalService_CreateWithPicture(t *testing.T) {
	repo := newMemoryRentalRepo()
	objects := newFakeObjectStore()
	svc := NewRentalService(repo, objects, "http://cdn.local/rentals/")

	rental, err := svc.Create(context.Background(), RentalInput{
		Name:        "Loft",
		Surface:     42,
		Price:       980,
		Description: "Bright loft downtown",
	}, &PictureUpload{
		Filename:    "front door!.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Reader:      strings.NewReader("data"),
	}, 7)
	require.NoError(t, err)

	require.Len(t, objects.keys, 1)
	key := objects.keys[0]
	assert.True(t, strings.HasSuffix(key, "_front_door_.jpg"), "key %q", key)
	assert.Equal(t, []byte("data"), objects.data[key])

	assert.Equal(t, "http://cdn.local/rentals/"+key, rental.Picture)
	assert.Equal(t, 7, rental.OwnerID)
}

func TestRentalService_CreateWithoutPicture(t *testing.T) {
	svc := NewRentalService(newMemoryRentalRepo(), newFakeObjectStore(), "http://cdn.local")

	rental, err := svc.Create(context.Background(), RentalInput{
		Name:        "Studio",
		Surface:     18,
		Price:       450,
		Description: "Small studio",
	}, nil, 1)
	require.NoError(t, err)
	assert.Empty(t, rental.Picture)
}

func TestRentalService_CreateUploadFailure(t *testing.T) {
	objects := newFakeObjectStore()
	objects.err = io.ErrUnexpectedEOF
	svc := NewRentalService(newMemoryRentalRepo(), objects, "http://cdn.local")

	_, err := svc.Create(context.Background(), RentalInput{
		Name:        "Loft",
		Surface:     42,
		Price:       980,
		Description: "Bright loft",
	}, &PictureUpload{Filename: "a.jpg", Reader: strings.NewReader("x"), Size: 1}, 1)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRentalService_UpdateKeepsPictureAndOwner(t *testing.T) {
	repo := newMemoryRentalRepo()
	svc := NewRentalService(repo, newFakeObjectStore(), "http://cdn.local")

	created, err := svc.Create(context.Background(), RentalInput{
		Name:        "Loft",
		Surface:     42,
		Price:       980,
		Description: "Bright loft",
	}, &PictureUpload{Filename: "a.jpg", Reader: strings.NewReader("x"), Size: 1}, 7)
	require.NoError(t, err)
	require.NotEmpty(t, created.Picture)

	updated, err := svc.Update(context.Background(), created.ID, RentalInput{
		Name:        "Renovated loft",
		Surface:     45,
		Price:       1100,
		Description: "Now with a terrace",
	})
	require.NoError(t, err)

	assert.Equal(t, "Renovated loft", updated.Name)
	assert.Equal(t, created.Picture, updated.Picture)
	assert.Equal(t, 7, updated.OwnerID)
}

func TestRentalService_UpdateMissing(t *testing.T) {
	svc := NewRentalService(newMemoryRentalRepo(), newFakeObjectStore(), "http://cdn.local")

	_, err := svc.Update(context.Background(), 99, RentalInput{
		Name: "Ghost", Surface: 1, Price: 1, Description: "n/a",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
