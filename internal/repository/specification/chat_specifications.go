package specification

import (
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uint
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByThreadID struct {
	ThreadID uint
}

func (s ByThreadID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadID)
}
