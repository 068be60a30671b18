package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/log"
)

const (
	appendRetries = 3
	retryBackoff  = 100 * time.Millisecond
)

// RoomRecord is the rooms table. A row exists for every room ever touched.
type RoomRecord struct {
	RoomID    string    `gorm:"primaryKey;size:255"`
	CreatedAt time.Time
}

func (RoomRecord) TableName() string { return "rooms" }

// MessageRecord is the messages table. Seq preserves insertion order within
// a room independent of timestamp collisions.
type MessageRecord struct {
	Seq       uint      `gorm:"primaryKey;autoIncrement"`
	MessageID string    `gorm:"uniqueIndex;size:36"`
	RoomID    string    `gorm:"index;size:255"`
	SenderID  string    `gorm:"size:255"`
	Role      string    `gorm:"size:64"`
	Body      string    `gorm:"type:text"`
	Timestamp time.Time
}

func (MessageRecord) TableName() string { return "messages" }

// GormStore is the durable MessageStore backed by a relational database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&RoomRecord{}, &MessageRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate chat schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) GetOrCreateRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	var records []MessageRecord

	err := s.withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&RoomRecord{RoomID: roomID, CreatedAt: time.Now().UTC()}).Error; err != nil {
				return err
			}
			return tx.Where("room_id = ?", roomID).Order("seq asc").Find(&records).Error
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get room %s: %v", ErrStoreUnavailable, roomID, err)
	}

	room := &domain.Room{RoomID: roomID, Messages: make([]domain.ChatMessage, 0, len(records))}
	for _, rec := range records {
		room.Messages = append(room.Messages, toChatMessage(rec))
	}
	return room, nil
}

func (s *GormStore) AppendMessage(ctx context.Context, roomID string, msg domain.ChatMessage) (domain.ChatMessage, error) {
	msg.RoomID = roomID
	if msg.MessageID == "" {
		msg.MessageID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	rec := MessageRecord{
		MessageID: msg.MessageID,
		RoomID:    msg.RoomID,
		SenderID:  msg.SenderID,
		Role:      msg.Role,
		Body:      msg.Body,
		Timestamp: msg.Timestamp,
	}

	err := s.withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&RoomRecord{RoomID: roomID, CreatedAt: time.Now().UTC()}).Error; err != nil {
				return err
			}
			return tx.Create(&rec).Error
		})
	})
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: append to room %s: %v", ErrStoreUnavailable, roomID, err)
	}

	return msg, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withRetry retries transient store failures with a short backoff before
// reporting unavailability to the caller.
func (s *GormStore) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < appendRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		l := log.Ctx(ctx)
		l.Warn().Err(err).Int("attempt", attempt+1).Msg("store operation failed, retrying")

		select {
		case <-ctx.Done():
			return err
		case <-time.After(retryBackoff << attempt):
		}
	}
	return err
}

func toChatMessage(rec MessageRecord) domain.ChatMessage {
	return domain.ChatMessage{
		MessageID: rec.MessageID,
		RoomID:    rec.RoomID,
		SenderID:  rec.SenderID,
		Role:      rec.Role,
		Body:      rec.Body,
		Timestamp: rec.Timestamp,
	}
}
