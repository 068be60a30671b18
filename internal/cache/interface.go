package cache

import (
	"context"
	"time"

	"github.com/mohitjoer/freelance-chat-service/internal/domain"
)

// RoomCache caches full room histories for the synchronous history surface.
// Cache failures are a degradation, never an error the client sees.
type RoomCache interface {
	Get(ctx context.Context, roomID string) (*domain.Room, error)
	Set(ctx context.Context, room *domain.Room, ttl time.Duration) error
	Invalidate(ctx context.Context, roomID string) error
	Close() error
}
