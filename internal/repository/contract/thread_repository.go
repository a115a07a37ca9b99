package contract

import (
	"context"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/repository/specification"
)

type ThreadRepository interface {
	Create(ctx context.Context, thread *entity.Thread) error
	Delete(ctx context.Context, id uint) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Thread, error)
	// FindOneWithSession loads the thread together with its owning session,
	// for ownership checks.
	FindOneWithSession(ctx context.Context, id uint) (*entity.Thread, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Thread, error)
	UpdateTitle(ctx context.Context, id uint, title *string) error
}
