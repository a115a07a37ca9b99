package entity

import (
	"time"
)

type User struct {
	Id           uint
	Username     string
	Email        string
	PasswordHash string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// EmailVerificationToken is a single-use credential proving control of a
// registered email address. Valid iff used_at is null and expires_at is in
// the future.
type EmailVerificationToken struct {
	Id        uint
	UserId    uint
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t *EmailVerificationToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *EmailVerificationToken) IsUsed() bool {
	return t.UsedAt != nil
}

// PasswordResetToken has the same validity rules as the verification token.
// At most one unused reset token exists per user: issuing a new one marks
// all previous unused tokens as used.
type PasswordResetToken struct {
	Id        uint
	UserId    uint
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *PasswordResetToken) IsUsed() bool {
	return t.UsedAt != nil
}
