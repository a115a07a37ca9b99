package service

import (
	"context"
	"time"

	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/mapper"
	"agent-chat-be/internal/pkg/apperror"
	"agent-chat-be/internal/repository/specification"
	"agent-chat-be/internal/repository/unitofwork"
)

type ISessionService interface {
	Create(ctx context.Context, userId uint, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	List(ctx context.Context, userId uint) ([]*dto.SessionResponse, error)
	Get(ctx context.Context, sessionId, userId uint) (*dto.SessionResponse, error)
	Update(ctx context.Context, sessionId, userId uint, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error)
	Delete(ctx context.Context, sessionId, userId uint) error
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.ChatMapper
}

func NewSessionService(uowFactory unitofwork.RepositoryFactory) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		mapper:     &mapper.ChatMapper{},
	}
}

func (s *sessionService) Create(ctx context.Context, userId uint, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.Session{
		UserId:    userId,
		AgentType: req.AgentType,
		CreatedAt: time.Now(),
	}

	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}

	return s.mapper.SessionToResponse(session), nil
}

func (s *sessionService) List(ctx context.Context, userId uint) ([]*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return s.mapper.SessionsToResponses(sessions), nil
}

func (s *sessionService) Get(ctx context.Context, sessionId, userId uint) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwned(ctx, uow, sessionId, userId)
	if err != nil {
		return nil, err
	}

	return s.mapper.SessionToResponse(session), nil
}

func (s *sessionService) Update(ctx context.Context, sessionId, userId uint, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwned(ctx, uow, sessionId, userId)
	if err != nil {
		return nil, err
	}

	session.AgentType = req.AgentType
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}

	return s.mapper.SessionToResponse(session), nil
}

func (s *sessionService) Delete(ctx context.Context, sessionId, userId uint) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwned(ctx, uow, sessionId, userId); err != nil {
		return err
	}

	// Threads and messages go with it via the FK cascade.
	if err := uow.SessionRepository().Delete(ctx, sessionId); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// findOwned loads the session and enforces ownership.
func (s *sessionService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, sessionId, userId uint) (*entity.Session, error) {
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if session == nil {
		return nil, apperror.NotFound("session not found")
	}
	if session.UserId != userId {
		return nil, apperror.AccessDenied("not your session")
	}
	return session, nil
}
