package service

import (
	"context"

	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/mapper"
	"agent-chat-be/internal/pkg/apperror"
	"agent-chat-be/internal/repository/specification"
	"agent-chat-be/internal/repository/unitofwork"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uint) (*dto.UserResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.UserMapper
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{
		uowFactory: uowFactory,
		mapper:     &mapper.UserMapper{},
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uint) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	return s.mapper.ToResponse(user), nil
}
