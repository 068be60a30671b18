package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohitjoer/freelance-chat-service/internal/cache"
	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/store"
)

// fakeRoomCache is an in-process RoomCache for exercising the cache path.
type fakeRoomCache struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
	sets  int
}

func newFakeRoomCache() *fakeRoomCache {
	return &fakeRoomCache{rooms: make(map[string]*domain.Room)}
}

func (c *fakeRoomCache) Get(_ context.Context, roomID string) (*domain.Room, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if room, ok := c.rooms[roomID]; ok {
		return room, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *fakeRoomCache) Set(_ context.Context, room *domain.Room, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room.RoomID] = room
	c.sets++
	return nil
}

func (c *fakeRoomCache) Invalidate(_ context.Context, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, roomID)
	return nil
}

func (c *fakeRoomCache) Close() error { return nil }

func TestHistoryService_FetchCreatesRoom(t *testing.T) {
	req := require.New(t)
	svc := NewHistoryService(store.NewMemoryStore(), nil, 0)

	room, err := svc.GetRoomHistory(context.Background(), "job-42")
	req.NoError(err)
	req.Equal("job-42", room.RoomID)
	req.Empty(room.Messages)
}

func TestHistoryService_AppendReturnsUpdatedRoom(t *testing.T) {
	req := require.New(t)
	svc := NewHistoryService(store.NewMemoryStore(), nil, 0)
	ctx := context.Background()

	room, err := svc.AppendMessage(ctx, "job-42", domain.ChatMessage{
		SenderID: "u1",
		Role:     "client",
		Body:     "hello",
	})
	req.NoError(err)
	req.Len(room.Messages, 1)
	req.Equal("hello", room.Messages[0].Body)
	req.False(room.Messages[0].Timestamp.IsZero())
}

func TestHistoryService_AppendInvalidatesCache(t *testing.T) {
	req := require.New(t)
	roomCache := newFakeRoomCache()
	svc := NewHistoryService(store.NewMemoryStore(), roomCache, time.Minute)
	ctx := context.Background()

	// Warm the cache with the empty room.
	_, err := svc.GetRoomHistory(ctx, "job-42")
	req.NoError(err)
	req.Eventually(func() bool {
		roomCache.mu.Lock()
		defer roomCache.mu.Unlock()
		return roomCache.sets == 1
	}, time.Second, 10*time.Millisecond)

	_, err = svc.AppendMessage(ctx, "job-42", domain.ChatMessage{
		SenderID: "u1",
		Role:     "client",
		Body:     "hello",
	})
	req.NoError(err)

	// A stale cached history must not survive the append.
	room, err := svc.GetRoomHistory(ctx, "job-42")
	req.NoError(err)
	req.Len(room.Messages, 1)
}
