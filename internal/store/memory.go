package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohitjoer/freelance-chat-service/internal/domain"
)

// MemoryStore keeps room logs in process memory. Used by tests and by the
// "memory" database driver for local development.
type MemoryStore struct {
	mu    sync.Mutex
	rooms map[string][]domain.ChatMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string][]domain.ChatMessage),
	}
}

func (s *MemoryStore) GetOrCreateRoom(_ context.Context, roomID string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, ok := s.rooms[roomID]
	if !ok {
		s.rooms[roomID] = nil
	}

	out := make([]domain.ChatMessage, len(messages))
	copy(out, messages)
	return &domain.Room{RoomID: roomID, Messages: out}, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, roomID string, msg domain.ChatMessage) (domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.RoomID = roomID
	if msg.MessageID == "" {
		msg.MessageID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	s.rooms[roomID] = append(s.rooms[roomID], msg)
	return msg, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
