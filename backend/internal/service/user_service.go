package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/dto"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/model"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
)

// UserService local user listing and seeding.
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	// SeedLocalUsers creates a users row for each configured local account that has none yet.
	SeedLocalUsers(ctx context.Context, auth *config.AuthConfig) (int, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, err
	}
	list := make([]dto.UserResponse, len(users))
	for i := range users {
		list[i] = toUserResponse(&users[i])
	}
	return list, nil
}

func (s *userService) SeedLocalUsers(ctx context.Context, auth *config.AuthConfig) (int, error) {
	created := 0
	for _, lu := range auth.LocalUsers {
		role := lu.Role
		if role == "" {
			role = model.RoleUser
		}
		name := lu.Name
		if name == "" {
			name = lu.Username
		}
		user := &model.User{
			Email: LocalEmail(lu.Username, auth.LocalEmailDomain),
			Name:  name,
			Role:  role,
		}
		ok, err := s.repo.User.CreateIfNotExists(ctx, user)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.logger.Info("local users seeded", zap.Int("created", created))
	}
	return created, nil
}
