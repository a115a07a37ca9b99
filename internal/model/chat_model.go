package model

import (
	"time"
)

type Session struct {
	Id        uint    `gorm:"primaryKey;autoIncrement"`
	UserId    uint    `gorm:"not null;index"`
	User      *User   `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	AgentType *string `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Session) TableName() string {
	return "sessions"
}

type Thread struct {
	Id        uint     `gorm:"primaryKey;autoIncrement"`
	SessionId uint     `gorm:"not null;index"`
	Session   *Session `gorm:"foreignKey:SessionId;constraint:OnDelete:CASCADE"`
	Title     *string  `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Thread) TableName() string {
	return "threads"
}

type Message struct {
	Id        uint    `gorm:"primaryKey;autoIncrement"`
	ThreadId  uint    `gorm:"not null;index"`
	Thread    *Thread `gorm:"foreignKey:ThreadId;constraint:OnDelete:CASCADE"`
	Role      string  `gorm:"type:varchar(50);not null"`
	Content   string  `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}
