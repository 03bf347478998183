package dto

import "time"

// EntryRequest is the JSON body for POST /guestbook and PUT /guestbook/:id.
type EntryRequest struct {
	Name    string `json:"name" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type EntryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// AckResponse is returned by DELETE /guestbook/:id.
type AckResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
