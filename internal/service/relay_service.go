package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mohitjoer/freelance-chat-service/internal/audit"
	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/hub"
	"github.com/mohitjoer/freelance-chat-service/internal/log"
	"github.com/mohitjoer/freelance-chat-service/internal/store"
)

type relayService struct {
	hub           *hub.Hub
	store         store.MessageStore
	appendTimeout time.Duration
}

func NewRelayService(h *hub.Hub, messageStore store.MessageStore, appendTimeout time.Duration) RelayService {
	if appendTimeout <= 0 {
		appendTimeout = 5 * time.Second
	}
	return &relayService{
		hub:           h,
		store:         messageStore,
		appendTimeout: appendTimeout,
	}
}

// HandleJoinRoom adds the client to the room and confirms to the requester.
// Existing members are notified only when membership actually changed, so a
// repeated join never produces a second user-joined.
func (s *relayService) HandleJoinRoom(ctx context.Context, c *hub.Client, roomID string) error {
	joined := s.hub.Join(c, roomID)
	c.Session.JoinRoom(roomID)

	audit.LogWithDetail(ctx, audit.ActionJoinRoom, c.ID, roomID, "join room")

	if err := c.SendMessage(&domain.RoomJoinedMessage{
		Type:      domain.MsgTypeRoomJoined,
		RoomID:    roomID,
		SessionID: c.ID,
	}); err != nil {
		return err
	}

	if joined {
		return s.hub.Broadcast(roomID, &domain.UserJoinedMessage{
			Type:      domain.MsgTypeUserJoined,
			RoomID:    roomID,
			SessionID: c.ID,
		}, c.ID)
	}
	return nil
}

// HandleSendMessage fans the message out to every current member of the room
// (sender echo included) and then persists it best-effort. Delivery never
// waits on the store; a failed append is logged and the live broadcast stands.
func (s *relayService) HandleSendMessage(ctx context.Context, c *hub.Client, in domain.SendMessageWS) error {
	timestamp := time.Now().UTC()
	if in.Timestamp > 0 {
		timestamp = time.UnixMilli(in.Timestamp).UTC()
	}

	msg := domain.ChatMessage{
		MessageID: uuid.New().String(),
		RoomID:    in.RoomID,
		SenderID:  in.SenderID,
		Role:      in.Role,
		Body:      in.Body,
		Timestamp: timestamp,
	}

	audit.LogWithDetail(ctx, audit.ActionSendMessage, c.ID, in.RoomID, "send message")

	if err := s.hub.Broadcast(in.RoomID, &domain.ChatMessageOut{
		Type:      domain.MsgTypeChatMessage,
		MessageID: msg.MessageID,
		RoomID:    msg.RoomID,
		Body:      msg.Body,
		SenderID:  msg.SenderID,
		Role:      msg.Role,
		Timestamp: msg.Timestamp.UnixMilli(),
		SessionID: c.ID,
	}, ""); err != nil {
		return err
	}

	s.persistAsync(c.ID, msg)
	return nil
}

// persistAsync appends off the relay path. The append context is detached
// from the triggering connection: a disconnect mid-send must not cancel the
// write, and the append's outcome never re-enters registry mutation.
func (s *relayService) persistAsync(sessionID string, msg domain.ChatMessage) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.appendTimeout)
		defer cancel()

		if _, err := s.store.AppendMessage(ctx, msg.RoomID, msg); err != nil {
			audit.LogWithDetail(ctx, audit.ActionPersistFailed, sessionID, msg.RoomID, "message persist failed")
			l := log.L()
			l.Error().Err(err).
				Str(log.FieldRoomID, msg.RoomID).
				Str(log.FieldMessageID, msg.MessageID).
				Msg("failed to persist message")
		}
	}()
}

// HandleLeaveRoom removes the client from the room and notifies the
// remaining members. Leaving a room never joined is a no-op.
func (s *relayService) HandleLeaveRoom(ctx context.Context, c *hub.Client, roomID string) error {
	left := s.hub.Leave(c, roomID)
	c.Session.LeaveRoom(roomID)

	if !left {
		return nil
	}

	audit.LogWithDetail(ctx, audit.ActionLeaveRoom, c.ID, roomID, "leave room")

	return s.hub.Broadcast(roomID, &domain.UserLeftMessage{
		Type:      domain.MsgTypeUserLeft,
		RoomID:    roomID,
		SessionID: c.ID,
	}, c.ID)
}

// HandleDisconnect performs the equivalent of leave for every room the
// session had joined, then discards the session. Safe to call for sessions
// that never joined anything.
func (s *relayService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	for _, roomID := range c.Session.Rooms() {
		if s.hub.Leave(c, roomID) {
			s.hub.Broadcast(roomID, &domain.UserLeftMessage{
				Type:      domain.MsgTypeUserLeft,
				RoomID:    roomID,
				SessionID: c.ID,
			}, c.ID)
		}
		c.Session.LeaveRoom(roomID)
	}

	audit.Log(ctx, audit.ActionDisconnect, c.ID, "client disconnected")
	s.hub.Unregister(c)
	return nil
}
