package event

import (
	"errors"
	"time"
)

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	StartAt     time.Time `json:"startAt"`
	EndAt       *time.Time `json:"endAt,omitempty"`
	Capacity    int       `json:"capacity"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsCancelled bool      `json:"isCancelled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// with pointers if optional, it will be nil
type ListEventsFilter struct {
	CategoryID *string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

var ErrNotFound = errors.New("event not found")

type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=120"`
	Description string     `json:"description" binding:"omitempty,max=1000"`
	Location    string     `json:"location" binding:"omitempty,min=2,max=120"`
	CategoryID  *string    `json:"categoryId" binding:"omitempty,uuid"`
	StartAt     time.Time  `json:"startAt" binding:"required"`
	EndAt       *time.Time `json:"endAt" binding:"omitempty"`
	Capacity    int        `json:"capacity" binding:"required,min=1,max=50000"`
	ImageURL    string     `json:"imageUrl" binding:"omitempty,url,max=500"`
}

// a full update payload; partial edits come through the same shape from the client.
type UpdateEventRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=120"`
	Description string     `json:"description" binding:"omitempty,max=1000"`
	Location    string     `json:"location" binding:"omitempty,min=2,max=120"`
	CategoryID  *string    `json:"categoryId" binding:"omitempty,uuid"`
	StartAt     time.Time  `json:"startAt" binding:"required"`
	EndAt       *time.Time `json:"endAt" binding:"omitempty"`
	Capacity    int        `json:"capacity" binding:"required,min=1,max=50000"`
	ImageURL    string     `json:"imageUrl" binding:"omitempty,url,max=500"`
}
