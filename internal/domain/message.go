package domain

import "time"

// ChatMessage is one immutable entry in a room's log.
// Role is a free-form tag ("client", "freelancer", ...); it is descriptive
// only and never enforced as access control.
type ChatMessage struct {
	MessageID string    `json:"messageId"`
	RoomID    string    `json:"roomId"`
	SenderID  string    `json:"senderId"`
	Role      string    `json:"role"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Room is a named channel with its full ordered message history.
// Insertion order is chronological order; messages are never reordered.
type Room struct {
	RoomID   string        `json:"roomId"`
	Messages []ChatMessage `json:"messages"`
}
