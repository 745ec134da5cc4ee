package event

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateEventRequest) Event {
	now := time.Now().UTC()

	return Event{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		CategoryID:  req.CategoryID,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Capacity:    req.Capacity,
		ImageURL:    req.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
