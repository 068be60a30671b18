package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mohitjoer/freelance-chat-service/internal/domain"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	stored, err := s.AppendMessage(ctx, "job-42", domain.ChatMessage{
		SenderID: "u1",
		Role:     "client",
		Body:     "hello",
	})
	req.NoError(err)
	req.NotEmpty(stored.MessageID)
	req.False(stored.Timestamp.IsZero())

	room, err := s.GetOrCreateRoom(ctx, "job-42")
	req.NoError(err)
	req.Len(room.Messages, 1)

	last := room.Messages[len(room.Messages)-1]
	req.Equal("hello", last.Body)
	req.Equal("u1", last.SenderID)
	req.Equal("client", last.Role)
}

func TestMemoryStore_GetOrCreate_CreatesEmptyRoom(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()

	room, err := s.GetOrCreateRoom(context.Background(), "job-7")
	req.NoError(err)
	req.Equal("job-7", room.RoomID)
	req.Empty(room.Messages)
}

func TestMemoryStore_KeepsCallerTimestamp(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	stored, err := s.AppendMessage(context.Background(), "job-42", domain.ChatMessage{
		SenderID:  "u1",
		Role:      "client",
		Body:      "hello",
		Timestamp: at,
	})
	req.NoError(err)
	req.Equal(at, stored.Timestamp)
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	const perSender = 20
	var wg sync.WaitGroup
	for _, sender := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				_, err := s.AppendMessage(ctx, "job-42", domain.ChatMessage{
					SenderID: sender,
					Role:     "client",
					Body:     fmt.Sprintf("%s-%d", sender, i),
				})
				require.NoError(t, err)
			}
		}(sender)
	}
	wg.Wait()

	room, err := s.GetOrCreateRoom(ctx, "job-42")
	req.NoError(err)
	req.Len(room.Messages, 2*perSender)

	// No message lost, no partial entries.
	seen := make(map[string]bool)
	for _, msg := range room.Messages {
		req.NotEmpty(msg.Body)
		req.NotEmpty(msg.MessageID)
		seen[msg.Body] = true
	}
	req.Len(seen, 2*perSender)
}

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "chat.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps sqlite writes serialized.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s, err := NewGormStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGormStore_RoundTrip(t *testing.T) {
	req := require.New(t)
	s := newSQLiteStore(t)
	ctx := context.Background()

	first, err := s.AppendMessage(ctx, "job-42", domain.ChatMessage{
		SenderID: "u1",
		Role:     "client",
		Body:     "first",
	})
	req.NoError(err)

	second, err := s.AppendMessage(ctx, "job-42", domain.ChatMessage{
		SenderID: "u2",
		Role:     "freelancer",
		Body:     "second",
	})
	req.NoError(err)
	req.NotEqual(first.MessageID, second.MessageID)

	room, err := s.GetOrCreateRoom(ctx, "job-42")
	req.NoError(err)
	req.Len(room.Messages, 2)
	req.Equal("first", room.Messages[0].Body)
	req.Equal("second", room.Messages[1].Body)

	last := room.Messages[len(room.Messages)-1]
	req.Equal("u2", last.SenderID)
	req.Equal("freelancer", last.Role)
}

func TestGormStore_RoomCreatedOnFirstTouch(t *testing.T) {
	req := require.New(t)
	s := newSQLiteStore(t)
	ctx := context.Background()

	room, err := s.GetOrCreateRoom(ctx, "job-9")
	req.NoError(err)
	req.Empty(room.Messages)

	// Second fetch hits the existing room.
	room, err = s.GetOrCreateRoom(ctx, "job-9")
	req.NoError(err)
	req.Equal("job-9", room.RoomID)
}

func TestGormStore_ConcurrentAppends(t *testing.T) {
	req := require.New(t)
	s := newSQLiteStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, sender := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(sender string) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				_, err := s.AppendMessage(ctx, "job-42", domain.ChatMessage{
					SenderID: sender,
					Role:     "client",
					Body:     fmt.Sprintf("%s-%d", sender, i),
				})
				require.NoError(t, err)
			}
		}(sender)
	}
	wg.Wait()

	room, err := s.GetOrCreateRoom(ctx, "job-42")
	req.NoError(err)
	req.Len(room.Messages, 10)
	for _, msg := range room.Messages {
		req.NotEmpty(msg.Body)
		req.NotEmpty(msg.SenderID)
	}
}
