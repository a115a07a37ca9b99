package mapper

import (
	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:        s.Id,
		UserId:    s.UserId,
		AgentType: s.AgentType,
		CreatedAt: s.CreatedAt,
	}
}

func (m *ChatMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		Id:        s.Id,
		UserId:    s.UserId,
		AgentType: s.AgentType,
		CreatedAt: s.CreatedAt,
	}
}

func (m *ChatMapper) ThreadToEntity(t *model.Thread) *entity.Thread {
	if t == nil {
		return nil
	}
	return &entity.Thread{
		Id:        t.Id,
		SessionId: t.SessionId,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		Session:   m.SessionToEntity(t.Session),
	}
}

func (m *ChatMapper) ThreadToModel(t *entity.Thread) *model.Thread {
	if t == nil {
		return nil
	}
	return &model.Thread{
		Id:        t.Id,
		SessionId: t.SessionId,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
	}
}

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:        msg.Id,
		ThreadId:  msg.ThreadId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:        msg.Id,
		ThreadId:  msg.ThreadId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

// Response Mappers

func (m *ChatMapper) SessionToResponse(s *entity.Session) *dto.SessionResponse {
	if s == nil {
		return nil
	}
	return &dto.SessionResponse{
		Id:        s.Id,
		UserId:    s.UserId,
		AgentType: s.AgentType,
		CreatedAt: s.CreatedAt,
	}
}

func (m *ChatMapper) SessionsToResponses(sessions []*entity.Session) []*dto.SessionResponse {
	responses := make([]*dto.SessionResponse, len(sessions))
	for i, s := range sessions {
		responses[i] = m.SessionToResponse(s)
	}
	return responses
}

func (m *ChatMapper) ThreadToResponse(t *entity.Thread) *dto.ThreadResponse {
	if t == nil {
		return nil
	}
	return &dto.ThreadResponse{
		Id:        t.Id,
		SessionId: t.SessionId,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
	}
}

func (m *ChatMapper) ThreadsToResponses(threads []*entity.Thread) []*dto.ThreadResponse {
	responses := make([]*dto.ThreadResponse, len(threads))
	for i, t := range threads {
		responses[i] = m.ThreadToResponse(t)
	}
	return responses
}

func (m *ChatMapper) MessageToResponse(msg *entity.Message) *dto.MessageResponse {
	if msg == nil {
		return nil
	}
	return &dto.MessageResponse{
		Id:        msg.Id,
		ThreadId:  msg.ThreadId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToResponses(messages []*entity.Message) []dto.MessageResponse {
	responses := make([]dto.MessageResponse, len(messages))
	for i, msg := range messages {
		responses[i] = *m.MessageToResponse(msg)
	}
	return responses
}
