package dto

import "time"

type CreateSessionRequest struct {
	AgentType *string `json:"agent_type" validate:"omitempty,max=100"`
}

type UpdateSessionRequest struct {
	AgentType *string `json:"agent_type" validate:"required,max=100"`
}

type SessionResponse struct {
	Id        uint      `json:"id"`
	UserId    uint      `json:"user_id"`
	AgentType *string   `json:"agent_type"`
	CreatedAt time.Time `json:"created_at"`
}
