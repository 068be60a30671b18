package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/service"
	"github.com/mohitjoer/freelance-chat-service/internal/store"
)

// APIResponse is the envelope for all history endpoints.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AppendMessageRequest is the durable-append payload. Timestamp is optional;
// the store assigns one when omitted.
type AppendMessageRequest struct {
	SenderID  string `json:"senderId" binding:"required"`
	Role      string `json:"role" binding:"required"`
	Body      string `json:"body" binding:"required"`
	Timestamp int64  `json:"timestamp,omitempty"` // unix millis
}

// HTTPHandler serves the synchronous history surface clients use as a
// durability fallback next to the live broadcast.
type HTTPHandler struct {
	history service.HistoryService
}

func NewHTTPHandler(history service.HistoryService) *HTTPHandler {
	return &HTTPHandler{history: history}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/rooms/:room_id", h.GetRoom)
		api.POST("/rooms/:room_id/messages", h.AppendMessage)
	}

	r.GET("/health", h.HealthCheck)
}

// GetRoom returns the room with its full message history, creating the room
// on first touch.
func (h *HTTPHandler) GetRoom(c *gin.Context) {
	roomID := c.Param("room_id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "room_id is required",
		})
		return
	}

	room, err := h.history.GetRoomHistory(c.Request.Context(), roomID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, APIResponse{
			Success: false,
			Error:   "failed to get room history",
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    room,
	})
}

// AppendMessage durably appends one message and returns the updated room.
func (h *HTTPHandler) AppendMessage(c *gin.Context) {
	roomID := c.Param("room_id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "room_id is required",
		})
		return
	}

	var req AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "senderId, role and body are required",
		})
		return
	}

	msg := domain.ChatMessage{
		SenderID: req.SenderID,
		Role:     req.Role,
		Body:     req.Body,
	}
	if req.Timestamp > 0 {
		msg.Timestamp = time.UnixMilli(req.Timestamp).UTC()
	}

	room, err := h.history.AppendMessage(c.Request.Context(), roomID, msg)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, APIResponse{
			Success: false,
			Error:   "failed to append message",
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    room,
	})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
