package contract

import (
	"context"
	"time"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	UpdatePassword(ctx context.Context, userId uint, hash string) error
	MarkVerified(ctx context.Context, userId uint) error

	// Verification token ledger
	CreateVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error
	FindVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error)
	// ConsumeVerificationToken marks the token used iff it is unused and not
	// expired. Returns the consumed token, or nil when the conditional update
	// matched no row.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*entity.EmailVerificationToken, error)
	DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error)

	// Reset token ledger
	CreateResetToken(ctx context.Context, token *entity.PasswordResetToken) error
	FindResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error)
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (*entity.PasswordResetToken, error)
	// InvalidateUnusedResetTokens marks every unused reset token of the user
	// as used, so a freshly issued token is the only live one.
	InvalidateUnusedResetTokens(ctx context.Context, userId uint, now time.Time) error
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
