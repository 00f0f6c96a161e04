package models

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

type User struct {
	ID     string `json:"_id" db:"user_id"`
	Name   string `json:"name" db:"name"`
	About  string `json:"about" db:"about"`
	Avatar string `json:"avatar" db:"avatar"`
}

type Card struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Link      string    `json:"link"`
	Owner     User      `json:"owner"`
	Likes     []User    `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedBy reports whether userID is in the card's liker set.
func (c Card) LikedBy(userID string) bool {
	for _, u := range c.Likes {
		if u.ID == userID {
			return true
		}
	}
	return false
}

type ProfileUpdate struct {
	Name  string `json:"name"`
	About string `json:"about"`
}

type AvatarUpdate struct {
	Avatar string `json:"avatar"`
}

type NewCard struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

type UploadResult struct {
	URL string `json:"url"`
}

// Event is what the realtime hub pushes to websocket subscribers.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	EventCardCreated = "card.created"
	EventCardDeleted = "card.deleted"
	EventCardLikes   = "card.likes"
	EventUserUpdated = "user.updated"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}
