package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rentalhub/apiserver/types"
)

// RentalRepository defines persistence operations for rental listings.
type RentalRepository interface {
	List(ctx context.Context) ([]types.Rental, error)
	Get(ctx context.Context, id int) (types.Rental, error)
	Create(ctx context.Context, rental types.Rental) (types.Rental, error)
	Update(ctx context.Context, rental types.Rental) (types.Rental, error)
}

// ObjectStore uploads rental pictures to the configured bucket.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// RentalInput carries the user-supplied listing fields.
type RentalInput struct {
	Name        string
	Surface     int
	Price       float64
	Description string
}

// PictureUpload carries an uploaded picture file.
type PictureUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// RentalService encapsulates rental use-cases, including picture upload to
// object storage.
type RentalService struct {
	repo          RentalRepository
	pictures      ObjectStore
	publicBaseURL string
}

func NewRentalService(repo RentalRepository, pictures ObjectStore, publicBaseURL string) *RentalService {
	return &RentalService{
		repo:          repo,
		pictures:      pictures,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *RentalService) List(ctx context.Context) ([]types.Rental, error) {
	return s.repo.List(ctx)
}

func (s *RentalService) Get(ctx context.Context, id int) (types.Rental, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new listing owned by ownerID. When a picture is supplied it
// is uploaded first and the listing records its public URL.
func (s *RentalService) Create(ctx context.Context, input RentalInput, picture *PictureUpload, ownerID int) (types.Rental, error) {
	pictureURL := ""
	if picture != nil {
		key, err := s.uploadPicture(ctx, picture)
		if err != nil {
			return types.Rental{}, fmt.Errorf("upload picture: %w", err)
		}
		pictureURL = s.publicBaseURL + "/" + key
	}

	return s.repo.Create(ctx, types.Rental{
		Name:        input.Name,
		Surface:     input.Surface,
		Price:       input.Price,
		Picture:     pictureURL,
		Description: input.Description,
		OwnerID:     ownerID,
	})
}

// Update rewrites the listing fields by primary key. The picture is not
// updatable through this path.
func (s *RentalService) Update(ctx context.Context, id int, input RentalInput) (types.Rental, error) {
	if _, err := s.repo.Update(ctx, types.Rental{
		ID:          id,
		Name:        input.Name,
		Surface:     input.Surface,
		Price:       input.Price,
		Description: input.Description,
	}); err != nil {
		return types.Rental{}, err
	}
	// Reload so the response carries the untouched picture and owner fields.
	return s.repo.Get(ctx, id)
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

func (s *RentalService) uploadPicture(ctx context.Context, picture *PictureUpload) (string, error) {
	sanitized := unsafeFilenameChars.ReplaceAllString(picture.Filename, "_")
	key := uuid.NewString() + "_" + sanitized
	if err := s.pictures.Put(ctx, key, picture.Reader, picture.Size, picture.ContentType); err != nil {
		return "", err
	}
	return key, nil
}
