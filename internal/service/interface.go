package service

import (
	"context"

	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/hub"
)

// RelayService is the authority over room membership and message fan-out.
type RelayService interface {
	HandleJoinRoom(ctx context.Context, client *hub.Client, roomID string) error
	HandleSendMessage(ctx context.Context, client *hub.Client, msg domain.SendMessageWS) error
	HandleLeaveRoom(ctx context.Context, client *hub.Client, roomID string) error
	HandleDisconnect(ctx context.Context, client *hub.Client) error
}

// HistoryService is the synchronous collaborator surface: durable history
// fetch and append, usable as a fallback alongside the live broadcast.
type HistoryService interface {
	GetRoomHistory(ctx context.Context, roomID string) (*domain.Room, error)
	AppendMessage(ctx context.Context, roomID string, msg domain.ChatMessage) (*domain.Room, error)
}
