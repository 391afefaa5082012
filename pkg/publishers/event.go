package publishers

import (
	"time"

	"github.com/google/uuid"

	"github.com/pawtrail/dogdeck/internal/domain"
)

// VoteAction is what the user did with an image.
type VoteAction string

const (
	VoteLike VoteAction = "like"
	VoteSkip VoteAction = "skip"
)

// ActionFor maps a like flag to its action.
func ActionFor(like bool) VoteAction {
	if like {
		return VoteLike
	}
	return VoteSkip
}

// Event represents the vote payload published downstream.
type Event struct {
	ID       string     `json:"id"`
	Action   VoteAction `json:"action"`
	ImageID  string     `json:"image_id"`
	ImageURL string     `json:"image_url,omitempty"`
	Breed    string     `json:"breed,omitempty"`
	VotedAt  time.Time  `json:"voted_at"`
}

// NewVoteEvent constructs an Event for the given image.
func NewVoteEvent(action VoteAction, img domain.DogImage) Event {
	evt := Event{
		ID:       uuid.NewString(),
		Action:   action,
		ImageID:  img.ID,
		ImageURL: img.URL,
		VotedAt:  time.Now().UTC(),
	}
	if b, ok := img.PrimaryBreed(); ok {
		evt.Breed = b.Name
	}
	return evt
}
