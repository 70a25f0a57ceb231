package usecase

import (
	"context"

	"github.com/rpillai/dealwatch/internal/domain"
)

type UserUsecase struct {
	users domain.UserRepository
}

func NewUserUsecase(users domain.UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

// Register creates the user on first contact and is a no-op for a known
// address, so callers can treat it as idempotent.
func (u *UserUsecase) Register(ctx context.Context, email string) (*domain.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return u.users.GetOrCreateByEmail(ctx, normalized)
}
