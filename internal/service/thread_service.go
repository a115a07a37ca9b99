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

type IThreadService interface {
	Create(ctx context.Context, userId, sessionId uint, req *dto.CreateThreadRequest) (*dto.ThreadResponse, error)
	List(ctx context.Context, userId, sessionId uint) ([]*dto.ThreadResponse, error)
	Get(ctx context.Context, userId, threadId uint) (*dto.ThreadResponse, error)
	UpdateTitle(ctx context.Context, userId, threadId uint, req *dto.UpdateThreadRequest) (*dto.ThreadResponse, error)
	Delete(ctx context.Context, userId, threadId uint) error

	// VerifyOwnership loads the thread with its session and fails unless the
	// session belongs to the user. Shared with the message service.
	VerifyOwnership(ctx context.Context, uow unitofwork.UnitOfWork, threadId, userId uint) (*entity.Thread, error)
}

type threadService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.ChatMapper
}

func NewThreadService(uowFactory unitofwork.RepositoryFactory) IThreadService {
	return &threadService{
		uowFactory: uowFactory,
		mapper:     &mapper.ChatMapper{},
	}
}

func (s *threadService) Create(ctx context.Context, userId, sessionId uint, req *dto.CreateThreadRequest) (*dto.ThreadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

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

	thread := &entity.Thread{
		SessionId: sessionId,
		Title:     req.Title,
		CreatedAt: time.Now(),
	}

	if err := uow.ThreadRepository().Create(ctx, thread); err != nil {
		return nil, apperror.Internal(err)
	}

	return s.mapper.ThreadToResponse(thread), nil
}

func (s *threadService) List(ctx context.Context, userId, sessionId uint) ([]*dto.ThreadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

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

	threads, err := uow.ThreadRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return s.mapper.ThreadsToResponses(threads), nil
}

func (s *threadService) Get(ctx context.Context, userId, threadId uint) (*dto.ThreadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.VerifyOwnership(ctx, uow, threadId, userId)
	if err != nil {
		return nil, err
	}

	return s.mapper.ThreadToResponse(thread), nil
}

func (s *threadService) UpdateTitle(ctx context.Context, userId, threadId uint, req *dto.UpdateThreadRequest) (*dto.ThreadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.VerifyOwnership(ctx, uow, threadId, userId)
	if err != nil {
		return nil, err
	}

	if err := uow.ThreadRepository().UpdateTitle(ctx, threadId, req.Title); err != nil {
		return nil, apperror.Internal(err)
	}

	thread.Title = req.Title
	return s.mapper.ThreadToResponse(thread), nil
}

func (s *threadService) Delete(ctx context.Context, userId, threadId uint) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.VerifyOwnership(ctx, uow, threadId, userId); err != nil {
		return err
	}

	// Messages go with it via the FK cascade.
	if err := uow.ThreadRepository().Delete(ctx, threadId); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *threadService) VerifyOwnership(ctx context.Context, uow unitofwork.UnitOfWork, threadId, userId uint) (*entity.Thread, error) {
	thread, err := uow.ThreadRepository().FindOneWithSession(ctx, threadId)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if thread == nil {
		return nil, apperror.NotFound("thread not found")
	}
	if thread.Session == nil || thread.Session.UserId != userId {
		return nil, apperror.AccessDenied("not your thread")
	}
	return thread, nil
}
