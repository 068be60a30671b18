package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mohitjoer/freelance-chat-service/internal/config"
	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/hub"
	"github.com/mohitjoer/freelance-chat-service/internal/log"
	"github.com/mohitjoer/freelance-chat-service/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades connections and decodes tagged payloads at the
// boundary. Only validated payloads reach the relay service; a malformed
// frame produces an error for the offending connection and nothing else.
type WSHandler struct {
	hub      *hub.Hub
	relay    service.RelayService
	validate *validator.Validate
	wsCfg    config.WebSocketConfig
}

func NewWSHandler(h *hub.Hub, relay service.RelayService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:      h,
		relay:    relay,
		validate: validator.New(),
		wsCfg:    wsCfg,
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := log.Ctx(r.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), h.hub, conn, h.wsCfg)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.handleMessage, h.handleDisconnect)
}

func (h *WSHandler) handleMessage(client *hub.Client, message []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	ctx := context.Background()

	switch base.Type {
	case domain.MsgTypeJoinRoom:
		var msg domain.JoinRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid join-room message"))
			return
		}
		if err := h.validate.Struct(&msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "join-room requires roomId"))
			return
		}
		if err := h.relay.HandleJoinRoom(ctx, client, msg.RoomID); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldSessionID, client.ID).Msg("join room failed")
		}

	case domain.MsgTypeSendMessage:
		var msg domain.SendMessageWS
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid send-message payload"))
			return
		}
		if err := h.validate.Struct(&msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "send-message requires roomId, body, senderId and role"))
			return
		}
		if err := h.relay.HandleSendMessage(ctx, client, msg); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldSessionID, client.ID).Msg("send message failed")
		}

	case domain.MsgTypeLeaveRoom:
		var msg domain.LeaveRoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid leave-room message"))
			return
		}
		if err := h.validate.Struct(&msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "leave-room requires roomId"))
			return
		}
		if err := h.relay.HandleLeaveRoom(ctx, client, msg.RoomID); err != nil {
			l := log.L()
			l.Warn().Err(err).Str(log.FieldSessionID, client.ID).Msg("leave room failed")
		}

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}

func (h *WSHandler) handleDisconnect(client *hub.Client) {
	if err := h.relay.HandleDisconnect(context.Background(), client); err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldSessionID, client.ID).Msg("disconnect cleanup failed")
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/chat/ws", func(c *gin.Context) {
		h.HandleWebSocket(c.Writer, c.Request)
	})
}
