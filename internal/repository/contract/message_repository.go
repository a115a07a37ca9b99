package contract

import (
	"context"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/repository/specification"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	Delete(ctx context.Context, id uint) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	UpdateContent(ctx context.Context, id uint, content string) error
}
