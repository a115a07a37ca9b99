package unitofwork

import (
	"context"

	"agent-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SessionRepository() contract.SessionRepository
	ThreadRepository() contract.ThreadRepository
	MessageRepository() contract.MessageRepository
}
