package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rentalhub/apiserver/internal/store"
	"github.com/rentalhub/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password; the two are deliberately indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates account registration and credential verification.
type UserService struct {
	repo UserRepository

	// dummyHash is compared against on the unknown-email path so that
	// lookup misses cost the same as password mismatches.
	dummyHash []byte
}

func NewUserService(repo UserRepository) *UserService {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("timing equalizer"), bcrypt.DefaultCost)
	if err != nil {
		// GenerateFromPassword only fails on an invalid cost.
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}
	return &UserService{
		repo:      repo,
		dummyHash: dummyHash,
	}
}

// Register creates an account with a freshly hashed password. A duplicate
// email surfaces as store.ErrDuplicate, detected by the database constraint
// rather than a prior read.
func (s *UserService) Register(ctx context.Context, name, email, password string) (types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, types.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	})
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password both return ErrInvalidCredentials; storage failures propagate.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}
