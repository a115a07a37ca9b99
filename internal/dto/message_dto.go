package dto

import "time"

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type UpdateMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type MessageResponse struct {
	Id        uint      `json:"id"`
	ThreadId  uint      `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatResponse is the result of a full conversation turn: the assistant
// reply plus the updated thread history.
type ChatResponse struct {
	Response string            `json:"response"`
	History  []MessageResponse `json:"history"`
}
