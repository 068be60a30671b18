package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mohitjoer/freelance-chat-service/internal/cache"
	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/log"
	"github.com/mohitjoer/freelance-chat-service/internal/store"
)

type historyService struct {
	store    store.MessageStore
	cache    cache.RoomCache // nil when caching is disabled
	cacheTTL time.Duration
	sf       singleflight.Group
}

func NewHistoryService(messageStore store.MessageStore, roomCache cache.RoomCache, cacheTTL time.Duration) HistoryService {
	return &historyService{
		store:    messageStore,
		cache:    roomCache,
		cacheTTL: cacheTTL,
	}
}

// GetRoomHistory returns the room with its full message history, creating
// the room on first touch. Concurrent fetches for the same room collapse
// into one store read via singleflight.
func (s *historyService) GetRoomHistory(ctx context.Context, roomID string) (*domain.Room, error) {
	if s.cache == nil {
		return s.store.GetOrCreateRoom(ctx, roomID)
	}

	result, err, _ := s.sf.Do(roomID, func() (interface{}, error) {
		return s.fetchWithCache(ctx, roomID)
	})
	if err != nil {
		return nil, err
	}

	room, ok := result.(*domain.Room)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return room, nil
}

func (s *historyService) fetchWithCache(ctx context.Context, roomID string) (*domain.Room, error) {
	cached, err := s.cache.Get(ctx, roomID)
	if err == nil {
		return cached, nil
	}

	if !errors.Is(err, cache.ErrCacheMiss) {
		// Degrade to a direct store read.
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("cache get error")
	}

	room, err := s.store.GetOrCreateRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	// Store in cache without blocking the response.
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(cacheCtx, room, s.cacheTTL); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("cache set error")
		}
	}()

	return room, nil
}

// AppendMessage durably appends one message and returns the room with the
// updated history. Safe to call redundantly alongside the live broadcast:
// the appended entry carries the same senderId/body/timestamp the broadcast
// did, which is what clients dedup on.
func (s *historyService) AppendMessage(ctx context.Context, roomID string, msg domain.ChatMessage) (*domain.Room, error) {
	if _, err := s.store.AppendMessage(ctx, roomID, msg); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, roomID); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldRoomID, roomID).Msg("cache invalidate error")
		}
	}

	return s.store.GetOrCreateRoom(ctx, roomID)
}
