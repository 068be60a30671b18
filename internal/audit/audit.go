package audit

import (
	"context"

	"github.com/mohitjoer/freelance-chat-service/internal/log"
)

// Audit actions for the chat relay.
const (
	ActionJoinRoom      = "chat.join_room"
	ActionLeaveRoom     = "chat.leave_room"
	ActionSendMessage   = "chat.send_message"
	ActionDisconnect    = "chat.disconnect"
	ActionPersistFailed = "chat.persist_failed"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, sessionID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldSessionID, sessionID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, sessionID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldSessionID, sessionID).
		Str(FieldDetail, detail).
		Msg(msg)
}
