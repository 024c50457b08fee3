package services

import (
	"context"
	"errors"

	"commerce-service/models"
	"commerce-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService is plain user CRUD.
type UserService interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, *ServiceError)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, *ServiceError)
	ListUsers(ctx context.Context) ([]models.User, *ServiceError)
}

type userServiceImpl struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, logger *zap.Logger) UserService {
	return &userServiceImpl{users: users, logger: logger}
}

func (s *userServiceImpl) CreateUser(ctx context.Context, user *models.User) (*models.User, *ServiceError) {
	if user.Name == "" || user.Email == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "user name and email are required"}
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to save user"}
	}
	return user, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*models.User, *ServiceError) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "user not found"}
		}
		s.logger.Error("Failed to fetch user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to fetch user"}
	}
	return user, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]models.User, *ServiceError) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to list users"}
	}
	return users, nil
}
