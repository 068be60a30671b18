package domain

// WebSocket message types from client.
const (
	MsgTypeJoinRoom    = "join-room"
	MsgTypeSendMessage = "send-message"
	MsgTypeLeaveRoom   = "leave-room"
	MsgTypePing        = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeRoomJoined  = "room-joined"
	MsgTypeUserJoined  = "user-joined"
	MsgTypeChatMessage = "chat-message"
	MsgTypeUserLeft    = "user-left"
	MsgTypeError       = "error"
	MsgTypePong        = "pong"
)

// Error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type JoinRoomMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId" validate:"required"`
}

type SendMessageWS struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId" validate:"required"`
	Body      string `json:"body" validate:"required"`
	SenderID  string `json:"senderId" validate:"required"`
	Role      string `json:"role" validate:"required"`
	Timestamp int64  `json:"timestamp,omitempty"` // unix millis, optional
}

type LeaveRoomMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId" validate:"required"`
}

// Server -> Client messages

type RoomJoinedMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	SessionID string `json:"sessionId"`
}

// UserJoinedMessage and UserLeftMessage carry the room id so a client joined
// to several rooms can route the notification.
type UserJoinedMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	SessionID string `json:"sessionId"`
}

type UserLeftMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	SessionID string `json:"sessionId"`
}

type ChatMessageOut struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	Body      string `json:"body"`
	SenderID  string `json:"senderId"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp"` // unix millis
	SessionID string `json:"sessionId"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
