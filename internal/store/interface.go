package store

import (
	"context"
	"errors"

	"github.com/mohitjoer/freelance-chat-service/internal/domain"
)

// ErrStoreUnavailable marks failures of the underlying store connection.
// Callers must treat it as retryable, never as fatal to in-memory relay state.
var ErrStoreUnavailable = errors.New("message store unavailable")

// MessageStore is the durability contract consumed by the relay's best-effort
// persistence path and by the synchronous history HTTP surface. Rooms are
// created implicitly on first touch; there is no separate provisioning step.
type MessageStore interface {
	// GetOrCreateRoom returns the room with its full message history,
	// creating an empty room if absent.
	GetOrCreateRoom(ctx context.Context, roomID string) (*domain.Room, error)

	// AppendMessage atomically creates the room if absent and appends the
	// message to its log. A zero Timestamp and an empty MessageID are
	// assigned by the store. Safe under concurrent appends to the same room.
	AppendMessage(ctx context.Context, roomID string, msg domain.ChatMessage) (domain.ChatMessage, error)

	Close() error
}
