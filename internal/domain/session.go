package domain

import (
	"sync"
	"time"
)

// Session tracks one connected client's room membership. The sender identity
// is not bound at connect time; it arrives with each send-message payload.
type Session struct {
	ID           string
	rooms        map[string]struct{}
	CreatedAt    time.Time
	LastActiveAt time.Time
	mu           sync.RWMutex
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		rooms:        make(map[string]struct{}),
		CreatedAt:    now,
		LastActiveAt: now,
	}
}

// JoinRoom records membership. Returns false if the session was already a
// member (joining twice is idempotent).
func (s *Session) JoinRoom(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
	if _, ok := s.rooms[roomID]; ok {
		return false
	}
	s.rooms[roomID] = struct{}{}
	return true
}

// LeaveRoom drops membership. Returns false if the session was not a member
// (leaving a room never joined is tolerated).
func (s *Session) LeaveRoom(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
	if _, ok := s.rooms[roomID]; !ok {
		return false
	}
	delete(s.rooms, roomID)
	return true
}

func (s *Session) InRoom(roomID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[roomID]
	return ok
}

// Rooms returns a snapshot of the rooms this session has joined.
func (s *Session) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]string, 0, len(s.rooms))
	for roomID := range s.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}

func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
