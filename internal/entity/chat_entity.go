package entity

import (
	"time"
)

// Session groups the conversation threads of a single user, optionally
// tagged with an agent type.
type Session struct {
	Id        uint
	UserId    uint
	AgentType *string
	CreatedAt time.Time
}

// Thread is an ordered conversation inside a session. Title is nil until
// set explicitly or generated from the first user message.
type Thread struct {
	Id        uint
	SessionId uint
	Title     *string
	CreatedAt time.Time

	// Populated only when the thread is loaded with its owning session
	// for an ownership check.
	Session *Session
}

// Message is one turn in a thread.
type Message struct {
	Id        uint
	ThreadId  uint
	Role      string
	Content   string
	CreatedAt time.Time
}
