package services

import (
	"context"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	SetPhoneVerified(ctx context.Context, id int64, verified bool) error
}

type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// Register creates a user with the role's initial reputation score.
func (s *UserService) Register(ctx context.Context, p model.UserCreateRequest) (*model.User, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	user := &model.User{
		Name:      p.Name,
		Email:     p.Email,
		Role:      p.Role,
		Phone:     p.Phone,
		Score:     p.Role.InitialScore(),
		Student:   p.Student,
		Employer:  p.Employer,
		CreatedAt: time.Now().UTC(),
	}
	return s.users.Create(ctx, user)
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.Get(ctx, id)
}

// VerifyPhone marks the phone as confirmed. OTP delivery happens at the
// auth boundary upstream.
func (s *UserService) VerifyPhone(ctx context.Context, id int64) error {
	return s.users.SetPhoneVerified(ctx, id, true)
}
