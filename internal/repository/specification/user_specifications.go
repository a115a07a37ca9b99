package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type UserOwnedBy struct {
	UserID uint
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// Token Specs

type ByToken struct {
	Token string
}

func (s ByToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token = ?", s.Token)
}

type Unused struct{}

func (s Unused) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("used_at IS NULL")
}

type ExpiredBefore struct {
	Now time.Time
}

func (s ExpiredBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at < ?", s.Now)
}
