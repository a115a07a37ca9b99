package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agent-chat-be/internal/constant"
	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/mapper"
	"agent-chat-be/internal/pkg/apperror"
	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/repository/specification"
	"agent-chat-be/internal/repository/unitofwork"

	"agent-chat-be/pkg/llm"
)

type IMessageService interface {
	// SendMessage appends the user message, runs the model over the thread
	// history, appends the assistant reply and returns the full turn.
	SendMessage(ctx context.Context, userId, threadId uint, req *dto.SendMessageRequest) (*dto.ChatResponse, error)
	List(ctx context.Context, userId, threadId uint) ([]dto.MessageResponse, error)
	UpdateContent(ctx context.Context, userId, messageId uint, req *dto.UpdateMessageRequest) (*dto.MessageResponse, error)
	Delete(ctx context.Context, userId, messageId uint) error
}

type messageService struct {
	uowFactory    unitofwork.RepositoryFactory
	threadService IThreadService
	llmProvider   llm.LLMProvider
	log           logger.ILogger
	mapper        *mapper.ChatMapper
}

func NewMessageService(
	uowFactory unitofwork.RepositoryFactory,
	threadService IThreadService,
	llmProvider llm.LLMProvider,
	log logger.ILogger,
) IMessageService {
	return &messageService{
		uowFactory:    uowFactory,
		threadService: threadService,
		llmProvider:   llmProvider,
		log:           log,
		mapper:        &mapper.ChatMapper{},
	}
}

func (s *messageService) SendMessage(ctx context.Context, userId, threadId uint, req *dto.SendMessageRequest) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := s.threadService.VerifyOwnership(ctx, uow, threadId, userId)
	if err != nil {
		return nil, err
	}

	userMessage := &entity.Message{
		ThreadId:  threadId,
		Role:      constant.RoleUser,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, userMessage); err != nil {
		return nil, apperror.Internal(err)
	}

	// The model call runs outside any transaction; the user message is
	// already committed and survives a model failure.
	history, err := s.conversationContext(ctx, uow, threadId, constant.ConversationHistoryLimit)
	if err != nil {
		return nil, err
	}

	reply, err := s.llmProvider.Chat(ctx, history)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("llm chat: %w", err))
	}

	assistantMessage := &entity.Message{
		ThreadId:  threadId,
		Role:      constant.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, apperror.Internal(err)
	}

	if thread.Title == nil {
		go s.generateTitle(threadId, req.Content)
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByThreadID{ThreadID: threadId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &dto.ChatResponse{
		Response: reply,
		History:  s.mapper.MessagesToResponses(messages),
	}, nil
}

func (s *messageService) List(ctx context.Context, userId, threadId uint) ([]dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.threadService.VerifyOwnership(ctx, uow, threadId, userId); err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByThreadID{ThreadID: threadId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return s.mapper.MessagesToResponses(messages), nil
}

func (s *messageService) UpdateContent(ctx context.Context, userId, messageId uint, req *dto.UpdateMessageRequest) (*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	msg, err := s.findOwned(ctx, uow, messageId, userId)
	if err != nil {
		return nil, err
	}

	if err := uow.MessageRepository().UpdateContent(ctx, messageId, req.Content); err != nil {
		return nil, apperror.Internal(err)
	}

	msg.Content = req.Content
	return s.mapper.MessageToResponse(msg), nil
}

func (s *messageService) Delete(ctx context.Context, userId, messageId uint) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwned(ctx, uow, messageId, userId); err != nil {
		return err
	}

	if err := uow.MessageRepository().Delete(ctx, messageId); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// findOwned resolves a message and checks ownership through its thread's
// session.
func (s *messageService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, messageId, userId uint) (*entity.Message, error) {
	msg, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: messageId})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if msg == nil {
		return nil, apperror.NotFound("message not found")
	}

	if _, err := s.threadService.VerifyOwnership(ctx, uow, msg.ThreadId, userId); err != nil {
		return nil, err
	}
	return msg, nil
}

// conversationContext replays the thread history, oldest first, truncated to
// the most recent limit entries.
func (s *messageService) conversationContext(ctx context.Context, uow unitofwork.UnitOfWork, threadId uint, limit int) ([]llm.Message, error) {
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByThreadID{ThreadID: threadId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	history := make([]llm.Message, len(messages))
	for i, msg := range messages {
		history[i] = llm.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return history, nil
}

// generateTitle names an untitled thread from its first user message.
// Best-effort: a failure leaves the thread untitled and the turn unaffected.
func (s *messageService) generateTitle(threadId uint, firstMessage string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	prompt := fmt.Sprintf("%s\n\nMessage: %s", constant.TitlePrompt, firstMessage)
	title, err := s.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		s.log.Warn("message", "thread title generation failed", map[string]interface{}{
			"thread_id": threadId,
			"error":     err,
		})
		return
	}

	title = strings.Trim(strings.TrimSpace(title), `"`)
	if title == "" {
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ThreadRepository().UpdateTitle(ctx, threadId, &title); err != nil {
		s.log.Warn("message", "failed to save generated thread title", map[string]interface{}{
			"thread_id": threadId,
			"error":     err,
		})
	}
}
