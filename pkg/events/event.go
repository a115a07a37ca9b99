package events

import "time"

// Event is the contract for everything published on the system bus.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_REGISTERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeUserRegistered = "USER_REGISTERED"
	TypeUserLogin      = "USER_LOGIN"
)

func NewUserRegistered(userId uint, username, email string) Event {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id":  userId,
			"username": username,
			"email":    email,
		},
		OccurredAt: time.Now(),
	}
}

func NewUserLogin(userId uint, username string) Event {
	return BaseEvent{
		Type: TypeUserLogin,
		Data: map[string]interface{}{
			"user_id":  userId,
			"username": username,
		},
		OccurredAt: time.Now(),
	}
}
