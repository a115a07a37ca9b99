package dto

import "time"

type CreateThreadRequest struct {
	Title *string `json:"title" validate:"omitempty,max=255"`
}

type UpdateThreadRequest struct {
	Title *string `json:"title" validate:"required,max=255"`
}

type ThreadResponse struct {
	Id        uint      `json:"id"`
	SessionId uint      `json:"session_id"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
