package model

import (
	"time"
)

type User struct {
	Id           uint    `gorm:"primaryKey;autoIncrement"`
	Username     string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string  `gorm:"type:varchar(255);not null"`
	IsVerified   bool    `gorm:"default:false"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    *time.Time
}

func (User) TableName() string {
	return "users"
}

type EmailVerificationToken struct {
	Id        uint      `gorm:"primaryKey;autoIncrement"`
	UserId    uint      `gorm:"not null;index"`
	User      *User     `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (EmailVerificationToken) TableName() string {
	return "email_verification_tokens"
}

type PasswordResetToken struct {
	Id        uint      `gorm:"primaryKey;autoIncrement"`
	UserId    uint      `gorm:"not null;index"`
	User      *User     `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
